// exposes a Store interface that is passed to API modules
package db

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/availability/internal/model"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// availability functions
	ListAvailability(userID int) ([]model.Availability, error)
	CreateAvailability(userID int, dayOfWeek, startTime, endTime string) (model.Availability, error)
	DeleteAvailability(userID, availabilityID int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	if conn == nil {
		conn = DB
	}
	return &pgStore{db: conn}
}
