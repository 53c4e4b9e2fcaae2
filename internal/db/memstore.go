package db

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/availability/internal/model"
)

// MemoryStore is a process-local Store used by tests and by the server when
// DATABASE_URL is "memory://".
type MemoryStore struct {
	mu             sync.Mutex
	users          map[int]*model.User
	availabilities map[int]model.Availability
	nextUserID     int
	nextAvailID    int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[int]*model.User),
		availabilities: make(map[int]model.Availability),
	}
}

func (m *MemoryStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	now := time.Now().UTC()
	m.users[m.nextUserID] = &model.User{
		ID:             m.nextUserID,
		Email:          strings.ToLower(email),
		HashedPassword: hashedPassword,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return m.nextUserID, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) UpdateUserProfile(id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Email = strings.ToLower(email)
	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListAvailability(userID int) ([]model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Availability{}
	for _, a := range m.availabilities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CreateAvailability(userID int, dayOfWeek, startTime, endTime string) (model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAvailID++
	a := model.Availability{
		ID:        m.nextAvailID,
		UserID:    userID,
		DayOfWeek: dayOfWeek,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: time.Now().UTC(),
	}
	m.availabilities[a.ID] = a
	return a, nil
}

func (m *MemoryStore) DeleteAvailability(userID, availabilityID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.availabilities[availabilityID]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(m.availabilities, availabilityID)
	return nil
}
