package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/availability/internal/calendar"
	"github.com/Nixie-Tech-LLC/availability/internal/clock"
	"github.com/Nixie-Tech-LLC/availability/internal/db"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api/availability/packets"
	"github.com/Nixie-Tech-LLC/availability/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/availability/internal/model"
	"github.com/Nixie-Tech-LLC/availability/internal/notify"
	"github.com/Nixie-Tech-LLC/availability/internal/redis"
	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

const idempotencyTTL = 24 * time.Hour

// Deps are the collaborators of the availability module. Cache and Events may
// be nil.
type Deps struct {
	Store    db.Store
	Cache    *redis.Cache
	Events   notify.Publisher
	Location *time.Location
	Domain   string
}

type AvailabilityController struct {
	store  db.Store
	cache  *redis.Cache
	events notify.Publisher
	loc    *time.Location
	domain string
}

func NewAvailabilityController(d Deps) *AvailabilityController {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Domain == "" {
		d.Domain = "localhost"
	}
	return &AvailabilityController{store: d.Store, cache: d.Cache, events: d.Events, loc: d.Location, domain: d.Domain}
}

func AvailabilityModule(d Deps) api.Module {
	ctl := NewAvailabilityController(d)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/availability", ctl.listAvailability)
		c.POST("/availability", ctl.createAvailability)
		c.DELETE("/availability/:id", ctl.deleteAvailability)

		// calendar feeds
		c.GET("/availability/occurrences", ctl.listOccurrences)
		c.RAW(http.MethodGet, "/availability/calendar.ics", ctl.exportCalendar)
	})
}

func toResponse(a model.Availability) packets.AvailabilityResponse {
	return packets.AvailabilityResponse{
		ID:        a.ID,
		DayOfWeek: a.DayOfWeek,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

func (s *AvailabilityController) listAvailability(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	key := redis.AvailabilityKey(user.ID)
	var cached []packets.AvailabilityResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	list, err := s.store.ListAvailability(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list availability"}
	}

	response := make([]packets.AvailabilityResponse, 0, len(list))
	for _, it := range list {
		response = append(response, toResponse(it))
	}
	s.cache.SetJSON(ctx, key, response, 0)
	return response, nil
}

func (s *AvailabilityController) createAvailability(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateAvailabilityRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	iv, apiErr := validateRequest(request)
	if apiErr != nil {
		return nil, apiErr
	}

	idemKey := ctx.GetHeader("Idempotency-Key")
	if idemKey != "" {
		var replay packets.AvailabilityResponse
		if s.cache.GetJSON(ctx, redis.IdempotencyKey(user.ID, idemKey), &replay) {
			log.Debug().Int("user_id", user.ID).Str("idempotency_key", idemKey).Msg("replaying availability create")
			return replay, nil
		}
	}

	created, err := s.store.CreateAvailability(user.ID, iv.Day.String(), clock.FormatWire(iv.Start), clock.FormatWire(iv.End))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create availability"}
	}

	response := toResponse(created)
	if idemKey != "" {
		s.cache.SetJSON(ctx, redis.IdempotencyKey(user.ID, idemKey), response, idempotencyTTL)
	}
	s.cache.Delete(ctx, redis.AvailabilityKey(user.ID))
	notify.PublishAvailability(s.events, notify.AvailabilityChanged{
		Action:         notify.ActionCreated,
		UserID:         user.ID,
		AvailabilityID: created.ID,
		DayOfWeek:      created.DayOfWeek,
		StartTime:      created.StartTime,
		EndTime:        created.EndTime,
	})
	return response, nil
}

// validateRequest applies the same parse and range rules the client enforces
// before it ever sends a create.
func validateRequest(r packets.CreateAvailabilityRequest) (schedule.Interval, *api.APIError) {
	day, err := schedule.ParseDay(r.DayOfWeek)
	if err != nil {
		return schedule.Interval{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	start, err := clock.ParseWire(r.StartTime)
	if err != nil {
		return schedule.Interval{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	end, err := clock.ParseWire(r.EndTime)
	if err != nil {
		return schedule.Interval{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	iv, err := schedule.Validate(day, start, end)
	if err != nil {
		return schedule.Interval{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return iv, nil
}

func (s *AvailabilityController) deleteAvailability(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	if err := s.store.DeleteAvailability(user.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "availability not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete availability"}
	}

	s.cache.Delete(ctx, redis.AvailabilityKey(user.ID))
	notify.PublishAvailability(s.events, notify.AvailabilityChanged{
		Action:         notify.ActionDeleted,
		UserID:         user.ID,
		AvailabilityID: id,
	})
	return gin.H{"message": "deleted"}, nil
}

// weeklyFor loads the user's ranges in calendar form, skipping rows that no
// longer parse.
func (s *AvailabilityController) weeklyFor(userID int) ([]calendar.Weekly, error) {
	list, err := s.store.ListAvailability(userID)
	if err != nil {
		return nil, err
	}
	items := make([]calendar.Weekly, 0, len(list))
	for _, a := range list {
		w, err := calendar.FromWire(a.ID, a.DayOfWeek, a.StartTime, a.EndTime)
		if err != nil {
			log.Warn().Err(err).Int("availability_id", a.ID).Msg("skipping unreadable availability")
			continue
		}
		items = append(items, w)
	}
	return items, nil
}

func (s *AvailabilityController) location(tz string) (*time.Location, error) {
	if tz == "" {
		return s.loc, nil
	}
	return time.LoadLocation(tz)
}

func (s *AvailabilityController) listOccurrences(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ListOccurrencesQuery
	if err := ctx.ShouldBindQuery(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !request.To.After(request.From) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "to must be after from"}
	}
	loc, err := s.location(request.Timezone)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown timezone"}
	}

	items, err := s.weeklyFor(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list availability"}
	}
	occurrences, err := calendar.Occurrences(items, request.From, request.To, loc)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	response := make([]packets.OccurrenceResponse, 0, len(occurrences))
	for _, o := range occurrences {
		response = append(response, packets.OccurrenceResponse{
			AvailabilityID: o.ID,
			DayOfWeek:      o.Day.String(),
			Start:          o.Start.Format(time.RFC3339),
			End:            o.End.Format(time.RFC3339),
		})
	}
	return response, nil
}

func (s *AvailabilityController) exportCalendar(ctx *gin.Context) {
	user, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	loc, err := s.location(ctx.Query("tz"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown timezone"})
		return
	}

	items, err := s.weeklyFor(user.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list availability"})
		return
	}
	body, err := calendar.ExportICS(items, time.Now(), loc, s.domain)
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("calendar export failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not build calendar"})
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="availability.ics"`)
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
