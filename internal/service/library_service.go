package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
	"github.com/gov-collab/portal-api/pkg/export"
)

type libraryDocumentRepository interface {
	Find(ctx context.Context, eventID, countryID int64) (*models.DocumentStatus, error)
	ListApprovedForCountry(ctx context.Context, countryID *int64) ([]models.DocumentStatus, error)
}

type libraryEventRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error)
}

type libraryContentRepository interface {
	Find(ctx context.Context, eventID, countryID, sectionID int64) (*models.ContentItem, error)
}

// LibraryService assembles the read-only archive of approved documents.
type LibraryService struct {
	documents libraryDocumentRepository
	events    libraryEventRepository
	content   libraryContentRepository
	exporter  *export.PDFExporter
	logger    *zap.Logger
}

// NewLibraryService constructs a LibraryService instance.
func NewLibraryService(documents libraryDocumentRepository, events libraryEventRepository, content libraryContentRepository, exporter *export.PDFExporter, logger *zap.Logger) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryService{documents: documents, events: events, content: content, exporter: exporter, logger: logger}
}

// ListApproved returns approved documents, optionally for one country.
func (s *LibraryService) ListApproved(ctx context.Context, countryID *int64) ([]dto.LibraryEntry, error) {
	docs, err := s.documents.ListApprovedForCountry(ctx, countryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved documents")
	}

	entries := make([]dto.LibraryEntry, 0, len(docs))
	for _, doc := range docs {
		event, err := s.events.FindByID(ctx, doc.EventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
		}
		entries = append(entries, dto.LibraryEntry{
			EventID:      event.ID,
			Title:        event.Title,
			DeadlineDate: event.DeadlineDate,
			LastUpdated:  doc.UpdatedAt,
		})
	}
	return entries, nil
}

// GetDocument assembles the full read-only document in required-section
// order. Untouched sections render as empty drafts, never as holes.
func (s *LibraryService) GetDocument(ctx context.Context, eventID int64, countryID *int64) (*dto.LibraryDocument, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	resolved := event.CountryID
	if countryID != nil {
		resolved = *countryID
	}

	required, err := s.events.RequiredSections(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load required sections")
	}

	doc := &dto.LibraryDocument{
		Event: dto.LibraryEventMeta{
			ID:           event.ID,
			Title:        event.Title,
			CountryName:  event.CountryNameEN,
			DeadlineDate: event.DeadlineDate,
		},
		Sections: make([]dto.LibrarySection, 0, len(required)),
	}
	if event.Occasion != nil {
		doc.Event.Occasion = *event.Occasion
	}

	if status, err := s.documents.Find(ctx, eventID, resolved); err == nil {
		doc.DocumentStatus = status
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document status")
	}

	for _, rs := range required {
		section := dto.LibrarySection{
			SectionID:    rs.SectionID,
			SectionLabel: rs.Label,
			Status:       models.SectionDraft,
		}
		item, err := s.content.Find(ctx, eventID, resolved, rs.SectionID)
		if err == nil {
			section.Status = item.Status
			section.HTMLContent = item.HTMLContent
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section content")
		}
		doc.Sections = append(doc.Sections, section)
	}

	return doc, nil
}

// ExportPDF renders the assembled document as a printable PDF.
func (s *LibraryService) ExportPDF(ctx context.Context, eventID int64, countryID *int64) ([]byte, error) {
	doc, err := s.GetDocument(ctx, eventID, countryID)
	if err != nil {
		return nil, err
	}

	printable := export.Document{
		Title:    doc.Event.Title,
		Country:  doc.Event.CountryName,
		Occasion: doc.Event.Occasion,
		Sections: make([]export.SectionBlock, 0, len(doc.Sections)),
	}
	if doc.Event.DeadlineDate != nil {
		printable.Deadline = doc.Event.DeadlineDate.Format("2 January 2006")
	}
	for _, section := range doc.Sections {
		printable.Sections = append(printable.Sections, export.SectionBlock{
			Label:  section.SectionLabel,
			Status: string(section.Status),
			Body:   section.HTMLContent,
		})
	}

	out, err := s.exporter.Render(printable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}
