package ingestion

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/processing"
	"knowledgebase-backend/internal/quota"
)

// DocumentProcessor runs one synchronous AI processing attempt for a
// registered document.
type DocumentProcessor interface {
	Process(ctx context.Context, documentID string) (ai.Result, error)
}

// Service is the staging-area workflow: add files, edit metadata,
// commit the batch, process committed items.
type Service struct {
	Sessions  *Sessions
	Validator Validator
	Spool     *Spool
	Uploader  *Uploader
	Registrar *Registrar
}

// AddFile validates and stages one file into the session. The declared
// size is checked before any byte is staged, and the measured size is
// checked again afterwards in case the declaration lied.
func (s *Service) AddFile(ctx context.Context, sess *Session, fileName string, declaredSize int64, r io.Reader) (Item, error) {
	if err := s.Validator.Validate(fileName, declaredSize); err != nil {
		return Item{}, err
	}

	itemID := uuid.NewString()
	n, err := s.Spool.Put(sess.ID, itemID, r)
	if err != nil {
		return Item{}, err
	}
	if verr := s.Validator.Validate(fileName, n); verr != nil {
		s.Spool.Remove(sess.ID, itemID)
		return Item{}, verr
	}

	class := Classify(fileName)
	aiStatus := AINotProcessed
	if class == ClassStorageOnly {
		aiStatus = AIStorageOnly
	}
	item := sess.Add(Item{
		ID:           itemID,
		FileName:     fileName,
		SizeBytes:    n,
		FileType:     FileTypeOf(fileName),
		Class:        class,
		Title:        DeriveTitle(fileName),
		UploadStatus: UploadReady,
		AIStatus:     aiStatus,
		AddedAt:      time.Now().UTC(),
	})
	return item, nil
}

// ItemEdit carries the metadata a user can change on a staged item.
type ItemEdit struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	ProjectID   *string
	ManualText  *string
}

// UpdateItem edits a staged item's metadata. Once an item has a
// document record, edits go through the documents API instead.
func (s *Service) UpdateItem(sess *Session, itemID string, edit ItemEdit) (Item, error) {
	return sess.Apply(itemID, func(it *Item) error {
		if it.Registered() {
			return ErrItemNotEditable
		}
		if edit.Title != nil {
			it.Title = *edit.Title
		}
		if edit.Description != nil {
			it.Description = *edit.Description
		}
		if edit.Category != nil {
			it.Category = *edit.Category
		}
		if edit.Tags != nil {
			it.Tags = append([]string(nil), edit.Tags...)
		}
		if edit.ProjectID != nil {
			it.ProjectID = *edit.ProjectID
		}
		if edit.ManualText != nil {
			it.ManualText = *edit.ManualText
		}
		return nil
	})
}

// RemoveItem drops a staged item and its spooled bytes. A registered
// item cannot be removed here; its document record owns it now.
func (s *Service) RemoveItem(sess *Session, itemID string) error {
	_, err := sess.Apply(itemID, func(it *Item) error {
		if it.Registered() {
			return ErrItemNotEditable
		}
		return nil
	})
	if err != nil {
		return err
	}
	if _, err := sess.Remove(itemID); err != nil {
		return err
	}
	return s.Spool.Remove(sess.ID, itemID)
}

// CommitSummary reports what a commit accomplished.
type CommitSummary struct {
	Uploaded   int `json:"uploaded"`
	Failed     int `json:"failed"`
	Registered int `json:"registered"`
}

// Commit uploads every ready item and registers every uploaded one.
// It returns quota.ExceededError when the batch does not fit the
// storage ceiling, leaving every item ready for a retry; per-item
// upload and registration failures are recorded on the items.
func (s *Service) Commit(ctx context.Context, sess *Session) (CommitSummary, error) {
	committable := false
	for _, it := range sess.Snapshot() {
		if it.UploadStatus == UploadReady {
			committable = true
			break
		}
		if it.UploadStatus == UploadSucceeded && !it.Registered() {
			committable = true
			break
		}
	}
	if !committable {
		return CommitSummary{}, ErrNoReadyItems
	}

	if err := s.Uploader.Upload(ctx, sess); err != nil {
		return CommitSummary{}, err
	}
	registered := s.Registrar.Register(ctx, sess)

	summary := CommitSummary{Registered: registered}
	for _, it := range sess.Snapshot() {
		switch it.UploadStatus {
		case UploadSucceeded:
			summary.Uploaded++
		case UploadFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

// ProcessItem runs AI processing for a committed item and mirrors the
// run's outcome onto the item's status. Refusals (a run already in
// flight, the token ceiling, an unprocessable type) leave the item
// exactly as it was; only a run that actually started can settle it to
// processed or failed.
func (s *Service) ProcessItem(ctx context.Context, sess *Session, itemID string, proc DocumentProcessor) (Item, error) {
	var prev AIStatus
	var documentID string
	_, err := sess.Apply(itemID, func(it *Item) error {
		if !it.Registered() {
			return ErrItemNotEditable
		}
		prev = it.AIStatus
		next, terr := NextAIStatus(it.AIStatus, EventStart)
		if terr != nil {
			return terr
		}
		it.AIStatus = next
		it.StatusNote = ""
		documentID = it.DocumentID
		return nil
	})
	if err != nil {
		return Item{}, err
	}

	result, perr := proc.Process(ctx, documentID)
	if perr != nil {
		if runStarted(perr) {
			item, _ := sess.Apply(itemID, func(it *Item) error {
				it.AIStatus = AIFailed
				it.StatusNote = perr.Error()
				return nil
			})
			return item, perr
		}
		// The run never started; put the item back.
		item, _ := sess.Apply(itemID, func(it *Item) error {
			it.AIStatus = prev
			return nil
		})
		return item, perr
	}

	item, _ := sess.Apply(itemID, func(it *Item) error {
		it.AIStatus = AIProcessed
		it.StatusNote = result.Message
		return nil
	})
	return item, nil
}

// runStarted distinguishes a run that reached the collaborator from a
// refusal that changed nothing. The refusals here are exactly the
// checks the controller makes before touching any state.
func runStarted(err error) bool {
	var exceeded *quota.ExceededError
	switch {
	case errors.Is(err, processing.ErrAlreadyProcessing),
		errors.Is(err, processing.ErrNotEligible),
		errors.Is(err, documents.ErrNotFound),
		errors.As(err, &exceeded):
		return false
	}
	return true
}

// Discard drops the session and everything staged for it. Registered
// documents are untouched.
func (s *Service) Discard(sessionID, ownerID string) error {
	if _, err := s.Sessions.Remove(sessionID, ownerID); err != nil {
		return err
	}
	return s.Spool.RemoveSession(sessionID)
}
