package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/availability/internal/db"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api/availability/packets"
	"github.com/Nixie-Tech-LLC/availability/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/availability/internal/notify"
	"github.com/Nixie-Tech-LLC/availability/internal/redis"
)

const testSecret = "test-secret"

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []notify.AvailabilityChanged
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	var ev notify.AvailabilityChanged
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	router *gin.Engine
	store  *db.MemoryStore
	events *recordingPublisher
	token  string
	userID int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, cache *redis.Cache) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	userID, err := store.CreateUser("owner@example.com", "x", nil)
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(userID, testSecret)
	require.NoError(t, err)

	events := &recordingPublisher{}
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api", Auth: true, SecretKey: testSecret, Users: store},
		AvailabilityModule(Deps{Store: store, Cache: cache, Events: events, Domain: "test.local"}),
	)
	return &fixture{router: r, store: store, events: events, token: token, userID: userID}
}

func (f *fixture) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/availability", packets.CreateAvailabilityRequest{
		DayOfWeek: "monday", StartTime: "07:00", EndTime: "09:30",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created packets.AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "MONDAY", created.DayOfWeek)
	assert.Equal(t, "07:00", created.StartTime)
	assert.Equal(t, "09:30", created.EndTime)

	w = f.do(t, http.MethodGet, "/api/availability", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []packets.AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []packets.AvailabilityResponse{created}, list)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, notify.AvailabilityTopic(f.userID), f.events.topics[0])
	assert.Equal(t, notify.ActionCreated, f.events.events[0].Action)
	assert.Equal(t, created.ID, f.events.events[0].AvailabilityID)
}

func TestCreateReplaysIdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewCache(mr.Addr(), "", "", time.Minute)
	defer cache.Close()
	f := newFixtureWithCache(t, cache)

	body := packets.CreateAvailabilityRequest{DayOfWeek: "THURSDAY", StartTime: "08:00", EndTime: "10:00"}
	post := func(key string) packets.AvailabilityResponse {
		t.Helper()
		w := f.do(t, http.MethodPost, "/api/availability", body, map[string]string{"Idempotency-Key": key})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out packets.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	first := post("key-a")
	again := post("key-a")
	assert.Equal(t, first, again)

	list, err := f.store.ListAvailability(f.userID)
	require.NoError(t, err)
	require.Len(t, list, 1, "a replayed create stores nothing new")
	assert.Len(t, f.events.events, 1)

	ttl := mr.TTL(redis.IdempotencyKey(f.userID, "key-a"))
	assert.Equal(t, 24*time.Hour, ttl)

	other := post("key-b")
	assert.NotEqual(t, first.ID, other.ID)
	list, err = f.store.ListAvailability(f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	w := f.do(t, http.MethodGet, "/api/availability", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []packets.AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 2, "create invalidates the cached list")
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  packets.CreateAvailabilityRequest
		want string
	}{
		{"unknown day", packets.CreateAvailabilityRequest{DayOfWeek: "FUNDAY", StartTime: "07:00", EndTime: "09:00"}, "day"},
		{"unpadded time", packets.CreateAvailabilityRequest{DayOfWeek: "MONDAY", StartTime: "7:00", EndTime: "09:00"}, "time"},
		{"hour out of range", packets.CreateAvailabilityRequest{DayOfWeek: "MONDAY", StartTime: "07:00", EndTime: "24:00"}, "time"},
		{"reversed", packets.CreateAvailabilityRequest{DayOfWeek: "FRIDAY", StartTime: "14:00", EndTime: "13:00"}, "range"},
		{"empty", packets.CreateAvailabilityRequest{DayOfWeek: "FRIDAY", StartTime: "13:00", EndTime: "13:00"}, "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/availability", tt.req, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, strings.ToLower(w.Body.String()), tt.want)
		})
	}

	list, err := f.store.ListAvailability(f.userID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.events.events)
}

func TestDeleteAvailability(t *testing.T) {
	f := newFixture(t)
	a, err := f.store.CreateAvailability(f.userID, "TUESDAY", "18:00", "19:30")
	require.NoError(t, err)

	otherID, err := f.store.CreateUser("other@example.com", "x", nil)
	require.NoError(t, err)
	foreign, err := f.store.CreateAvailability(otherID, "TUESDAY", "18:00", "19:30")
	require.NoError(t, err)

	w := f.do(t, http.MethodDelete, "/api/availability/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/availability/"+itoa(foreign.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "another user's row is invisible")

	w = f.do(t, http.MethodDelete, "/api/availability/"+itoa(a.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/availability/"+itoa(a.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, notify.ActionDeleted, f.events.events[0].Action)
}

func TestRequiresToken(t *testing.T) {
	f := newFixture(t)
	f.token = "garbage"
	w := f.do(t, http.MethodGet, "/api/availability", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListOccurrences(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateAvailability(f.userID, "MONDAY", "07:00", "09:00")
	require.NoError(t, err)
	_, err = f.store.CreateAvailability(f.userID, "WEDNESDAY", "11:30", "13:00")
	require.NoError(t, err)

	// 2024-01-01 is a Monday.
	w := f.do(t, http.MethodGet, "/api/availability/occurrences?from=2024-01-01T00:00:00Z&to=2024-01-15T00:00:00Z&tz=UTC", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []packets.OccurrenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "MONDAY", got[0].DayOfWeek)
	assert.Equal(t, "2024-01-01T07:00:00Z", got[0].Start)
	assert.Equal(t, "2024-01-01T09:00:00Z", got[0].End)
	assert.Equal(t, "WEDNESDAY", got[1].DayOfWeek)
	assert.Equal(t, "2024-01-03T11:30:00Z", got[1].Start)

	w = f.do(t, http.MethodGet, "/api/availability/occurrences?from=2024-01-15T00:00:00Z&to=2024-01-01T00:00:00Z", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/availability/occurrences?from=2024-01-01T00:00:00Z&to=2024-01-15T00:00:00Z&tz=Mars/Olympus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCalendar(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateAvailability(f.userID, "FRIDAY", "13:00", "14:30")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/availability/calendar.ics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	body := w.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "FREQ=WEEKLY")
	assert.Contains(t, body, "test.local")
}

func TestNewAvailabilityControllerDefaults(t *testing.T) {
	ctl := NewAvailabilityController(Deps{})
	assert.Equal(t, time.UTC, ctl.loc)
	assert.Equal(t, "localhost", ctl.domain)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
