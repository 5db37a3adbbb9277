package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for documents.
type Service struct {
	Repo Repo
}

// NewDocument carries the fields needed to register a document.
type NewDocument struct {
	Title          string
	Description    string
	Category       string
	Tags           []string
	ProjectID      string
	FileURL        string
	FileType       string
	SizeBytes      int64
	ManualText     string
	AIProcessed    bool
	UploadedByName string
}

// Create persists a new document record. SizeBytes is recorded here,
// once, from the measured upload size.
func (s *Service) Create(ctx context.Context, in NewDocument) (Document, error) {
	if strings.TrimSpace(in.FileURL) == "" {
		return Document{}, ErrInvalidInput
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    in.Description,
		Category:       in.Category,
		Tags:           dedupeTags(in.Tags),
		ProjectID:      in.ProjectID,
		FileURL:        in.FileURL,
		FileType:       strings.ToLower(in.FileType),
		SizeBytes:      in.SizeBytes,
		ManualText:     in.ManualText,
		AIProcessed:    in.AIProcessed,
		UploadedByName: in.UploadedByName,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// DocumentEdit carries the user-editable metadata of a document.
type DocumentEdit struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	ProjectID   *string
	ManualText  *string
}

// Update applies an edit to the mutable metadata of a document. File,
// size and AI outcome fields are never touched here.
func (s *Service) Update(ctx context.Context, id string, edit DocumentEdit) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}

	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return Document{}, ErrInvalidInput
		}
		doc.Title = title
	}
	if edit.Description != nil {
		doc.Description = *edit.Description
	}
	if edit.Category != nil {
		doc.Category = *edit.Category
	}
	if edit.Tags != nil {
		doc.Tags = dedupeTags(edit.Tags)
	}
	if edit.ProjectID != nil {
		doc.ProjectID = *edit.ProjectID
	}
	if edit.ManualText != nil {
		doc.ManualText = *edit.ManualText
	}

	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// SetAIOutcome records the result of an AI processing run on the
// document. Nothing else on the record changes.
func (s *Service) SetAIOutcome(ctx context.Context, id string, processed bool, message string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc.AIProcessed = processed
	doc.AIProcessingMessage = message
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns matching documents, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Document, error) {
	return s.Repo.List(ctx, f)
}

// Delete removes the document record. This is the authoritative
// deletion step; blob and AI-derived data cleanup are handled by
// their owning collaborators.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// dedupeTags trims tags and keeps the first occurrence of each,
// preserving input order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
