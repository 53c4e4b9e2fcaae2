package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/availability/internal/model"
)

const availabilityColumns = `
	id, user_id, day_of_week,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	created_at`

func (s *pgStore) ListAvailability(userID int) ([]model.Availability, error) {
	out := []model.Availability{}
	q := `SELECT` + availabilityColumns + `
	  FROM availabilities
	 WHERE user_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListAvailability failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateAvailability(userID int, dayOfWeek, startTime, endTime string) (model.Availability, error) {
	var a model.Availability
	q := `
	INSERT INTO availabilities (user_id, day_of_week, start_time, end_time, created_at)
	VALUES ($1, $2, $3::time, $4::time, now())
	RETURNING` + availabilityColumns + `;`
	if err := s.db.Get(&a, q, userID, dayOfWeek, startTime, endTime); err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("day_of_week", dayOfWeek).Msg("CreateAvailability failed")
		return model.Availability{}, err
	}
	return a, nil
}

// DeleteAvailability removes the row only if userID owns it.
func (s *pgStore) DeleteAvailability(userID, availabilityID int) error {
	var id int
	err := s.db.Get(&id, `DELETE FROM availabilities WHERE id = $1 AND user_id = $2 RETURNING id;`, availabilityID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("availability_id", availabilityID).Msg("DeleteAvailability failed")
	}
	return err
}
