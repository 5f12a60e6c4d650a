package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type contentEventRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error)
}

type contentRepository interface {
	Ensure(ctx context.Context, eventID, countryID, sectionID int64) error
	Find(ctx context.Context, eventID, countryID, sectionID int64) (*models.ContentItem, error)
	SaveBody(ctx context.Context, eventID, countryID, sectionID int64, html string, userID int64) error
	SaveBodyWithStatus(ctx context.Context, eventID, countryID, sectionID int64, html string, status models.SectionStatus, userID int64) error
	SetStatus(ctx context.Context, eventID, countryID, sectionID int64, status models.SectionStatus, comment *string, userID int64) error
	ApproveAllForEvent(ctx context.Context, eventID, countryID int64, status models.SectionStatus, userID int64) error
	GridForEvent(ctx context.Context, eventID, countryID int64) ([]dto.StatusGridRow, error)
}

type contentUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// statusGridKey and statusGridPattern must agree: invalidation deletes by the
// pattern, reads and writes go through the key.
func statusGridKey(eventID, countryID int64) string {
	return fmt.Sprintf("grid:%d:%d", eventID, countryID)
}

func statusGridPattern(eventID int64) string {
	return fmt.Sprintf("grid:%d:*", eventID)
}

// ContentService drives the per-section talking-points workflow.
type ContentService struct {
	events    contentEventRepository
	content   contentRepository
	users     contentUserRepository
	access    *AccessService
	cache     cacheStore
	gridTTL   time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs a ContentService instance.
func NewContentService(events contentEventRepository, content contentRepository, users contentUserRepository, access *AccessService, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContentService{events: events, content: content, users: users, access: access, validator: validate, logger: logger}
}

// EnableGridCache turns on read-through caching of status grids. Every
// workflow write invalidates the event's cached grids.
func (s *ContentService) EnableGridCache(cache cacheStore, ttl time.Duration) {
	s.cache = cache
	s.gridTTL = ttl
}

// EnableMetrics turns on workflow and cache instrumentation.
func (s *ContentService) EnableMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// sectionTarget is a fully resolved (event, country, section) triple with the
// caller's access already verified.
type sectionTarget struct {
	event     *models.Event
	required  []models.RequiredSection
	countryID int64
	sectionID int64
}

// resolveSection loads the event, defaults the country to the event's owning
// country and enforces the conjunctive section-access rule.
func (s *ContentService) resolveSection(ctx context.Context, claims *models.JWTClaims, eventID int64, countryID *int64, sectionID int64) (*sectionTarget, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	required, err := s.events.RequiredSections(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load required sections")
	}

	target := &sectionTarget{event: event, required: required, countryID: event.CountryID, sectionID: sectionID}
	if countryID != nil {
		target.countryID = *countryID
	}

	isRequired := false
	for _, rs := range required {
		if rs.SectionID == sectionID {
			isRequired = true
			break
		}
	}
	if !isRequired {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section is not part of this event")
	}

	scope, err := s.access.ScopeFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !s.access.CanAccessSection(scope, event, required, sectionID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "section is outside your assignments")
	}

	return target, nil
}

// Get returns the editor view of one section, creating the row on first
// touch.
func (s *ContentService) Get(ctx context.Context, claims *models.JWTClaims, eventID int64, countryID *int64, sectionID int64) (*dto.ContentView, error) {
	target, err := s.resolveSection(ctx, claims, eventID, countryID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := s.content.Ensure(ctx, eventID, target.countryID, sectionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise content")
	}
	item, err := s.content.Find(ctx, eventID, target.countryID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}

	view := &dto.ContentView{
		EventID:       eventID,
		EventTitle:    target.event.Title,
		CountryID:     target.countryID,
		CountryName:   target.event.CountryNameEN,
		SectionID:     sectionID,
		HTMLContent:   item.HTMLContent,
		Status:        item.Status,
		LastUpdatedAt: &item.LastUpdatedAt,
	}
	for _, rs := range target.required {
		if rs.SectionID == sectionID {
			view.SectionLabel = rs.Label
			break
		}
	}
	if item.StatusComment != nil {
		view.StatusComment = *item.StatusComment
	}
	if item.LastUpdatedByUserID != nil {
		if author, err := s.users.FindByID(ctx, *item.LastUpdatedByUserID); err == nil {
			view.LastUpdatedBy = author.FullName
		}
	}
	return view, nil
}

// Save writes the body. Collaborator saves always land in draft, wiping any
// earlier approval; reviewer saves keep the current status.
func (s *ContentService) Save(ctx context.Context, claims *models.JWTClaims, req dto.SaveContentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	switch claims.Role {
	case models.RoleViewer, models.RoleProtocol, models.RoleMinister:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot edit content")
	}

	target, err := s.resolveSection(ctx, claims, req.EventID, req.CountryID, req.SectionID)
	if err != nil {
		return err
	}
	if target.event.Ended() {
		return appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}

	if err := s.content.Ensure(ctx, req.EventID, target.countryID, req.SectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise content")
	}

	if claims.Role.IsCollaborator() {
		err = s.content.SaveBodyWithStatus(ctx, req.EventID, target.countryID, req.SectionID, req.HTMLContent, models.SectionDraft, claims.UserID)
	} else {
		err = s.content.SaveBody(ctx, req.EventID, target.countryID, req.SectionID, req.HTMLContent, claims.UserID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save content")
	}
	s.invalidateGrids(ctx, req.EventID)
	return nil
}

// Submit hands the section to the supervisor. Collaborator action.
func (s *ContentService) Submit(ctx context.Context, claims *models.JWTClaims, req dto.SectionActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	if !claims.Role.IsCollaborator() && claims.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only collaborators submit sections")
	}
	return s.transition(ctx, claims, req.EventID, req.CountryID, req.SectionID, models.SectionSubmitted, nil)
}

// Return sends the section back to its author. The note is mandatory so the
// author always knows what to fix.
func (s *ContentService) Return(ctx context.Context, claims *models.JWTClaims, req dto.ReturnSectionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return payload")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "return comment is required")
	}
	switch claims.Role {
	case models.RoleSupervisor, models.RoleChairman, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot return sections")
	}
	comment := req.Comment
	return s.transition(ctx, claims, req.EventID, req.CountryID, req.SectionID, models.SectionReturned, &comment)
}

// ApproveBySupervisor marks the section supervisor-approved.
func (s *ContentService) ApproveBySupervisor(ctx context.Context, claims *models.JWTClaims, req dto.SectionActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}
	switch claims.Role {
	case models.RoleSupervisor, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot approve sections")
	}
	return s.transition(ctx, claims, req.EventID, req.CountryID, req.SectionID, models.SectionApprovedBySupervisor, nil)
}

// ApproveByChairman marks the section chairman-approved. The chairman may
// approve from any state, including skipping the supervisor stage.
func (s *ContentService) ApproveByChairman(ctx context.Context, claims *models.JWTClaims, req dto.SectionActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}
	switch claims.Role {
	case models.RoleChairman, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot chairman-approve sections")
	}
	return s.transition(ctx, claims, req.EventID, req.CountryID, req.SectionID, models.SectionApprovedByChairman, nil)
}

// ApproveAll stamps every required section at once. Supervisors stamp to the
// supervisor level, the chairman and admin stamp to the chairman level.
func (s *ContentService) ApproveAll(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve-all payload")
	}

	var status models.SectionStatus
	switch claims.Role {
	case models.RoleSupervisor:
		status = models.SectionApprovedBySupervisor
	case models.RoleChairman, models.RoleAdmin:
		status = models.SectionApprovedByChairman
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot approve sections")
	}

	event, countryID, err := s.resolveEvent(ctx, req.EventID, req.CountryID)
	if err != nil {
		return err
	}
	if event.Ended() {
		return appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}

	if err := s.content.ApproveAllForEvent(ctx, req.EventID, countryID, status, claims.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve all sections")
	}
	s.invalidateGrids(ctx, req.EventID)
	s.observeTransition(string(status))
	return nil
}

// StatusGrid returns the dashboard projection for one event document.
func (s *ContentService) StatusGrid(ctx context.Context, claims *models.JWTClaims, eventID int64, countryID *int64) (*dto.StatusGrid, error) {
	event, resolvedCountry, err := s.resolveEvent(ctx, eventID, countryID)
	if err != nil {
		return nil, err
	}

	required, err := s.events.RequiredSections(ctx, eventID)
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

	cacheKey := statusGridKey(eventID, resolvedCountry)
	if s.cache != nil {
		var cached dto.StatusGrid
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.observeCacheLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("status grid cache lookup failed", zap.Error(err))
		}
		s.observeCacheLookup(false)
	}

	rows, err := s.content.GridForEvent(ctx, eventID, resolvedCountry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status grid")
	}
	grid := &dto.StatusGrid{EventID: eventID, CountryID: resolvedCountry, Sections: rows}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, grid, s.gridTTL); err != nil {
			s.logger.Warn("status grid cache store failed", zap.Error(err))
		}
	}
	return grid, nil
}

// invalidateGrids drops every cached grid projection of the event.
func (s *ContentService) invalidateGrids(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, statusGridPattern(eventID)); err != nil {
		s.logger.Warn("status grid cache invalidation failed", zap.Error(err))
	}
}

func (s *ContentService) transition(ctx context.Context, claims *models.JWTClaims, eventID int64, countryID *int64, sectionID int64, status models.SectionStatus, comment *string) error {
	target, err := s.resolveSection(ctx, claims, eventID, countryID, sectionID)
	if err != nil {
		return err
	}
	if target.event.Ended() {
		return appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}

	if err := s.content.Ensure(ctx, eventID, target.countryID, sectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise content")
	}
	if err := s.content.SetStatus(ctx, eventID, target.countryID, sectionID, status, comment, claims.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section status")
	}
	s.invalidateGrids(ctx, eventID)
	s.observeTransition(string(status))

	s.logger.Info("section status changed",
		zap.Int64("event_id", eventID),
		zap.Int64("section_id", sectionID),
		zap.String("status", string(status)),
		zap.Int64("actor_id", claims.UserID))
	return nil
}

func (s *ContentService) observeTransition(status string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition("section", status)
	}
}

func (s *ContentService) observeCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
}

func (s *ContentService) resolveEvent(ctx context.Context, eventID int64, countryID *int64) (*models.Event, int64, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	resolved := event.CountryID
	if countryID != nil {
		resolved = *countryID
	}
	return event, resolved, nil
}
