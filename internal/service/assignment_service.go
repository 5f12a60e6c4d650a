package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type assignmentRepository interface {
	ListSectionAssignments(ctx context.Context) ([]models.SectionAssignmentDetail, error)
	SectionIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	CountryIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	CreateSectionAssignment(ctx context.Context, userID, sectionID int64) (bool, error)
	DeleteSectionAssignment(ctx context.Context, id int64) error
	ReplaceCountryAssignments(ctx context.Context, userID int64, countryIDs []int64) error
}

type assignmentUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AssignmentService manages collaborator grants. Only the two collaborator
// roles may hold grants; everything else is rejected up front.
type AssignmentService struct {
	repo      assignmentRepository
	users     assignmentUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, users assignmentUserRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, users: users, validator: validate, logger: logger}
}

// ListSectionAssignments returns all grants for the admin screen.
func (s *AssignmentService) ListSectionAssignments(ctx context.Context) ([]models.SectionAssignmentDetail, error) {
	rows, err := s.repo.ListSectionAssignments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section assignments")
	}
	return rows, nil
}

// GrantSection assigns one section to a collaborator. Duplicate grants are a
// no-op, not an error.
func (s *AssignmentService) GrantSection(ctx context.Context, req dto.CreateSectionAssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.requireCollaborator(ctx, req.UserID); err != nil {
		return err
	}
	created, err := s.repo.CreateSectionAssignment(ctx, req.UserID, req.SectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	if !created {
		s.logger.Debug("section assignment already present",
			zap.Int64("user_id", req.UserID), zap.Int64("section_id", req.SectionID))
	}
	return nil
}

// RevokeSection removes one grant by id.
func (s *AssignmentService) RevokeSection(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSectionAssignment(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// CountryIDsForUser returns the user's country grant set for the admin
// screen.
func (s *AssignmentService) CountryIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.repo.CountryIDsForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list country assignments")
	}
	return ids, nil
}

// ReplaceCountries swaps the collaborator's full country set, mirroring the
// admin screen's bulk save. An empty list clears every grant.
func (s *AssignmentService) ReplaceCountries(ctx context.Context, req dto.ReplaceCountryAssignmentsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.requireCollaborator(ctx, req.UserID); err != nil {
		return err
	}
	if err := s.repo.ReplaceCountryAssignments(ctx, req.UserID, req.CountryIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace country assignments")
	}
	return nil
}

func (s *AssignmentService) requireCollaborator(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Role.IsCollaborator() {
		return appErrors.Clone(appErrors.ErrValidation, "assignments apply to collaborator roles only")
	}
	return nil
}
