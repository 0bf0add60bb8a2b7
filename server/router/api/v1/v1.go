// Package v1 exposes the scheduling API over HTTP.
package v1

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/timepilot/internal/profile"
	"github.com/hrygo/timepilot/plugin/ai"
	"github.com/hrygo/timepilot/plugin/nlp/extract"
	"github.com/hrygo/timepilot/server/middleware"
	"github.com/hrygo/timepilot/server/service/calendar"
	"github.com/hrygo/timepilot/server/service/resolver"
	"github.com/hrygo/timepilot/server/timezone"
	"github.com/hrygo/timepilot/store"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Calendar *calendar.Service
	Resolver *resolver.Resolver

	// resolveSemaphore caps concurrent LLM-backed resolutions.
	resolveSemaphore *semaphore.Weighted
	// resolveLimiter throttles resolve requests per client IP.
	resolveLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, st *store.Store) *APIV1Service {
	cal := calendar.NewService(st)

	loc, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		slog.Warn("invalid timezone in profile, using UTC", "timezone", profile.Timezone)
	}

	var extractor resolver.IntentExtractor = resolver.RuleExtractor{}
	if profile.IsAIEnabled() {
		aiConfig := ai.NewConfigFromProfile(profile)
		if err := aiConfig.Validate(); err != nil {
			slog.Warn("AI config invalid, falling back to rule extraction", "error", err)
		} else if provider, err := ai.NewProvider(aiConfig); err != nil {
			slog.Warn("AI provider unavailable, falling back to rule extraction", "error", err)
		} else {
			extractor = extract.NewLLMExtractor(provider)
		}
	}

	res := resolver.New(cal, extractor,
		resolver.WithBuffer(time.Duration(profile.BufferMinutes)*time.Minute),
		resolver.WithGranularity(time.Duration(profile.GranularityMinutes)*time.Minute),
		resolver.WithLocation(loc),
	)

	return &APIV1Service{
		Profile:          profile,
		Store:            st,
		Calendar:         cal,
		Resolver:         res,
		resolveSemaphore: semaphore.NewWeighted(4),
		resolveLimiter:   middleware.NewRateLimiter(time.Second, 10),
	}
}

// RegisterRoutes attaches all v1 endpoints to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/schedule/resolve", s.resolveSchedule, s.resolveLimiter.Middleware())

	g.GET("/events", s.listEvents)
	g.POST("/events", s.createEvent)
	g.PATCH("/events/:id", s.updateEvent)
	g.DELETE("/events/:id", s.deleteEvent)

	g.GET("/users/:userID/preferences", s.getUserPreference)
	g.PUT("/users/:userID/preferences", s.upsertUserPreference)
}
