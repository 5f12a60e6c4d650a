package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

// upcomingEventsKey caches the shared upcoming-events list. Scoped per-caller
// views are never cached.
const upcomingEventsKey = "events:upcoming"

type eventRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Event, error)
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	ListUpcomingForAssignments(ctx context.Context, countryIDs, sectionIDs []int64) ([]models.Event, error)
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error)
	Create(ctx context.Context, event *models.Event, sectionIDs []int64) error
	Update(ctx context.Context, event *models.Event, sectionIDs []int64) error
	End(ctx context.Context, id, actorID int64) error
}

// EventService manages events and the assignment-filtered calendar views.
type EventService struct {
	repo      eventRepository
	access    *AccessService
	cache     cacheStore
	listTTL   time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService instance.
func NewEventService(repo eventRepository, access *AccessService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, access: access, validator: validate, logger: logger}
}

// EnableListCache turns on read-through caching of the upcoming-events list.
// Event writes invalidate it.
func (s *EventService) EnableListCache(cache cacheStore, ttl time.Duration) {
	s.cache = cache
	s.listTTL = ttl
}

// List returns events for the calendar. Collaborators get only the events
// their assignments reach.
func (s *EventService) List(ctx context.Context, claims *models.JWTClaims, activeOnly bool) ([]models.Event, error) {
	scope, err := s.access.ScopeFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	if scope.Global {
		events, err := s.repo.List(ctx, activeOnly)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
		}
		return events, nil
	}
	return s.visibleUpcoming(ctx, scope)
}

// Upcoming returns future events for every global role.
func (s *EventService) Upcoming(ctx context.Context) ([]models.Event, error) {
	if s.cache != nil {
		var cached []models.Event
		if err := s.cache.Get(ctx, upcomingEventsKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("upcoming events cache lookup failed", zap.Error(err))
		}
	}

	events, err := s.repo.ListUpcoming(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list upcoming events")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, upcomingEventsKey, events, s.listTTL); err != nil {
			s.logger.Warn("upcoming events cache store failed", zap.Error(err))
		}
	}
	return events, nil
}

// UpcomingForCaller returns future events filtered through the caller's
// assignment scope.
func (s *EventService) UpcomingForCaller(ctx context.Context, claims *models.JWTClaims) ([]models.Event, error) {
	scope, err := s.access.ScopeFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	if scope.Global {
		return s.Upcoming(ctx)
	}
	return s.visibleUpcoming(ctx, scope)
}

// Get returns one event with its ordered required sections, subject to the
// caller's visibility.
func (s *EventService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	required, err := s.repo.RequiredSections(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load required sections")
	}

	scope, err := s.access.ScopeFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !s.access.CanSeeEvent(scope, event, required) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event is outside your assignments")
	}

	return &models.EventDetail{Event: *event, RequiredSections: required}, nil
}

// Create adds an event with at least one required section.
func (s *EventService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event := &models.Event{
		CountryID:       req.CountryID,
		Title:           req.Title,
		Occasion:        req.Occasion,
		DeadlineDate:    req.DeadlineDate,
		CreatedByUserID: &claims.UserID,
		Active:          true,
	}
	if err := s.repo.Create(ctx, event, req.SectionIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidateUpcoming(ctx)
	s.logger.Info("event created", zap.Int64("event_id", event.ID), zap.Int64("actor_id", claims.UserID))
	return event, nil
}

// Update edits the event and replaces its required-section set. Ended events
// are immutable.
func (s *EventService) Update(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Ended() {
		return nil, appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}

	event.CountryID = req.CountryID
	event.Title = req.Title
	event.Occasion = req.Occasion
	event.DeadlineDate = req.DeadlineDate
	if err := s.repo.Update(ctx, event, req.SectionIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidateUpcoming(ctx)
	return event, nil
}

// End closes the event permanently. Ending twice reports the conflict.
func (s *EventService) End(ctx context.Context, claims *models.JWTClaims, id int64) error {
	if err := s.repo.End(ctx, id, claims.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, findErr := s.repo.FindByID(ctx, id); errors.Is(findErr, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "event not found")
			}
			return appErrors.Clone(appErrors.ErrEventEnded, "event already ended")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end event")
	}
	s.invalidateUpcoming(ctx)
	s.logger.Info("event ended", zap.Int64("event_id", id), zap.Int64("actor_id", claims.UserID))
	return nil
}

func (s *EventService) invalidateUpcoming(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, upcomingEventsKey); err != nil {
		s.logger.Warn("upcoming events cache invalidation failed", zap.Error(err))
	}
}

func (s *EventService) visibleUpcoming(ctx context.Context, scope AccessScope) ([]models.Event, error) {
	events, err := s.repo.ListUpcomingForAssignments(ctx, scope.CountryIDs, scope.SectionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list visible events")
	}
	return events, nil
}
