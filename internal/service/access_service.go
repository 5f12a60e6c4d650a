package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type accessAssignmentRepository interface {
	SectionIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	CountryIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}

// AccessScope is the resolved visibility of one user. Global scope bypasses
// assignment checks entirely; scoped access carries the two grant sets.
type AccessScope struct {
	Global     bool
	CountryIDs []int64
	SectionIDs []int64
}

// ContainsCountry reports country membership for scoped access.
func (s AccessScope) ContainsCountry(countryID int64) bool {
	if s.Global {
		return true
	}
	for _, id := range s.CountryIDs {
		if id == countryID {
			return true
		}
	}
	return false
}

// ContainsSection reports section membership for scoped access.
func (s AccessScope) ContainsSection(sectionID int64) bool {
	if s.Global {
		return true
	}
	for _, id := range s.SectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}

// AccessService resolves per-user assignment scopes and answers the two
// visibility questions the workflow depends on.
type AccessService struct {
	assignments accessAssignmentRepository
	logger      *zap.Logger
}

// NewAccessService constructs an AccessService instance.
func NewAccessService(assignments accessAssignmentRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{assignments: assignments, logger: logger}
}

// ScopeFor resolves the caller's visibility. Every role except the two
// collaborator roles sees everything; collaborators see only their grants.
func (s *AccessService) ScopeFor(ctx context.Context, claims *models.JWTClaims) (AccessScope, error) {
	if !claims.Role.IsCollaborator() {
		return AccessScope{Global: true}, nil
	}

	countryIDs, err := s.assignments.CountryIDsForUser(ctx, claims.UserID)
	if err != nil {
		return AccessScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load country assignments")
	}
	sectionIDs, err := s.assignments.SectionIDsForUser(ctx, claims.UserID)
	if err != nil {
		return AccessScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section assignments")
	}

	return AccessScope{CountryIDs: countryIDs, SectionIDs: sectionIDs}, nil
}

// CanSeeEvent answers event-level visibility: the event's country must be in
// the caller's country set and at least one required section must be in the
// caller's section set. Either set being empty denies everything.
func (s *AccessService) CanSeeEvent(scope AccessScope, event *models.Event, required []models.RequiredSection) bool {
	if scope.Global {
		return true
	}
	if len(scope.CountryIDs) == 0 || len(scope.SectionIDs) == 0 {
		return false
	}
	if !scope.ContainsCountry(event.CountryID) {
		return false
	}
	for _, rs := range required {
		if scope.ContainsSection(rs.SectionID) {
			return true
		}
	}
	return false
}

// CanAccessSection answers section-level access: event visibility plus the
// specific section being both assigned to the caller and required by the
// event. Seeing an event never implies authoring every section of it.
func (s *AccessService) CanAccessSection(scope AccessScope, event *models.Event, required []models.RequiredSection, sectionID int64) bool {
	if scope.Global {
		return true
	}
	if !s.CanSeeEvent(scope, event, required) {
		return false
	}
	if !scope.ContainsSection(sectionID) {
		return false
	}
	for _, rs := range required {
		if rs.SectionID == sectionID {
			return true
		}
	}
	return false
}
