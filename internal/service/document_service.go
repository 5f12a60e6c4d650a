package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type documentEventRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Event, error)
}

type documentRepository interface {
	Ensure(ctx context.Context, eventID, countryID int64) error
	Find(ctx context.Context, eventID, countryID int64) (*models.DocumentStatus, error)
	SetStatus(ctx context.Context, eventID, countryID int64, status models.DocStatus, comment *string) error
	ApproveDocument(ctx context.Context, eventID, countryID, userID int64) error
}

type documentContentRepository interface {
	CountBelowSupervisorApproval(ctx context.Context, eventID, countryID int64) (int, error)
}

// DocumentService drives the coarse per-document workflow.
type DocumentService struct {
	events    documentEventRepository
	documents documentRepository
	content   documentContentRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(events documentEventRepository, documents documentRepository, content documentContentRepository, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{events: events, documents: documents, content: content, validator: validate, logger: logger}
}

// EnableMetrics turns on workflow instrumentation.
func (s *DocumentService) EnableMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// Status returns the aggregate state, creating the row on first touch.
func (s *DocumentService) Status(ctx context.Context, eventID int64, countryID *int64) (*models.DocumentStatus, error) {
	_, resolved, err := s.resolveEvent(ctx, eventID, countryID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Ensure(ctx, eventID, resolved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise document status")
	}
	doc, err := s.documents.Find(ctx, eventID, resolved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document status")
	}
	return doc, nil
}

// SubmitToSupervisor hands the whole document to the supervisor stage.
func (s *DocumentService) SubmitToSupervisor(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	if !claims.Role.IsCollaborator() && claims.Role != models.RoleChairman && claims.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot submit the document")
	}
	return s.transition(ctx, claims, req, models.DocSubmittedToSupervisor, nil, false)
}

// SubmitToChairman escalates the document. Every required section must have
// cleared supervisor approval first; the gate is enforced here, not left to
// the caller.
func (s *DocumentService) SubmitToChairman(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	switch claims.Role {
	case models.RoleSupervisor, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot escalate the document")
	}
	return s.transition(ctx, claims, req, models.DocSubmittedToChairman, nil, true)
}

// Approve finalises the document and cascades chairman approval onto every
// required section atomically.
func (s *DocumentService) Approve(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}
	switch claims.Role {
	case models.RoleChairman, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot approve the document")
	}

	event, resolved, err := s.resolveEvent(ctx, req.EventID, req.CountryID)
	if err != nil {
		return err
	}
	if event.Ended() {
		return appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}
	if err := s.documents.Ensure(ctx, req.EventID, resolved); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise document status")
	}
	if err := s.documents.ApproveDocument(ctx, req.EventID, resolved, claims.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve document")
	}
	s.observeTransition(string(models.DocApproved))

	s.logger.Info("document approved",
		zap.Int64("event_id", req.EventID),
		zap.Int64("country_id", resolved),
		zap.Int64("actor_id", claims.UserID))
	return nil
}

// Return sends the document back with a mandatory chairman note.
func (s *DocumentService) Return(ctx context.Context, claims *models.JWTClaims, req dto.ReturnDocumentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return payload")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "return comment is required")
	}
	switch claims.Role {
	case models.RoleChairman, models.RoleAdmin:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot return the document")
	}
	comment := req.Comment
	action := dto.DocumentActionRequest{EventID: req.EventID, CountryID: req.CountryID}
	return s.transition(ctx, claims, action, models.DocReturned, &comment, false)
}

func (s *DocumentService) transition(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest, status models.DocStatus, comment *string, gateOnSections bool) error {
	event, resolved, err := s.resolveEvent(ctx, req.EventID, req.CountryID)
	if err != nil {
		return err
	}
	if event.Ended() {
		return appErrors.Clone(appErrors.ErrEventEnded, "event has ended")
	}

	if gateOnSections {
		pending, err := s.content.CountBelowSupervisorApproval(ctx, req.EventID, resolved)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section approvals")
		}
		if pending > 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "all sections must be approved by the supervisor first")
		}
	}

	if err := s.documents.Ensure(ctx, req.EventID, resolved); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise document status")
	}
	if err := s.documents.SetStatus(ctx, req.EventID, resolved, status, comment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document status")
	}
	s.observeTransition(string(status))

	s.logger.Info("document status changed",
		zap.Int64("event_id", req.EventID),
		zap.Int64("country_id", resolved),
		zap.String("status", string(status)),
		zap.Int64("actor_id", claims.UserID))
	return nil
}

func (s *DocumentService) observeTransition(status string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition("document", status)
	}
}

func (s *DocumentService) resolveEvent(ctx context.Context, eventID int64, countryID *int64) (*models.Event, int64, error) {
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
