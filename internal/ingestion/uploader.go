package ingestion

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/metrics"
	"knowledgebase-backend/internal/shared/storage/object"
	"knowledgebase-backend/internal/shared/telemetry"
	"knowledgebase-backend/internal/shared/util"
)

// QuotaChecker is the pre-flight storage check run against a whole
// batch before any byte is moved.
type QuotaChecker interface {
	CheckUpload(ctx context.Context, batchBytes int64) error
}

// Uploader moves a session's staged files into the object store with a
// bounded worker pool. The batch is checked against the storage ceiling
// as a whole up front; after that point each item succeeds or fails on
// its own.
type Uploader struct {
	Store   object.ObjectStore
	Spool   *Spool
	Quota   QuotaChecker
	Workers int
}

// Upload pushes every ready item in the session. It returns
// quota.ExceededError when the batch would cross the storage ceiling;
// per-item failures are recorded on the items, not returned.
func (u *Uploader) Upload(ctx context.Context, sess *Session) error {
	ready := readyItems(sess)
	if len(ready) == 0 {
		return nil
	}

	var batchBytes int64
	for _, it := range ready {
		batchBytes += it.SizeBytes
	}
	if err := u.Quota.CheckUpload(ctx, batchBytes); err != nil {
		return err
	}

	// Claim the whole batch before spawning workers so a concurrent
	// commit on the same session cannot pick up the same items.
	claimed := make([]Item, 0, len(ready))
	for _, it := range ready {
		claimedItem, err := sess.Apply(it.ID, func(item *Item) error {
			next, err := NextUploadStatus(item.UploadStatus, EventStart)
			if err != nil {
				return err
			}
			item.UploadStatus = next
			item.StatusNote = ""
			return nil
		})
		if err != nil {
			continue
		}
		claimed = append(claimed, claimedItem)
	}

	workers := u.Workers
	if workers <= 0 {
		workers = 1
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, it := range claimed {
		item := it
		eg.Go(func() error {
			u.uploadOne(egCtx, sess, item)
			return nil
		})
	}
	return eg.Wait()
}

func (u *Uploader) uploadOne(ctx context.Context, sess *Session, item Item) {
	metrics.IncUploadStarted()
	start := metrics.NowMillis()

	storageKey, storedBytes, err := u.push(ctx, sess, item)
	metrics.ObserveUploadDurationMs(metrics.NowMillis() - start)

	if err != nil {
		metrics.IncUploadFailed()
		telemetry.Error("upload_failed", map[string]any{
			"session_id": sess.ID,
			"item_id":    item.ID,
			"file_name":  item.FileName,
			"error":      err.Error(),
		})
		sess.Apply(item.ID, func(it *Item) error {
			next, terr := NextUploadStatus(it.UploadStatus, EventFail)
			if terr != nil {
				return terr
			}
			it.UploadStatus = next
			it.UploadProgress = 0
			it.StatusNote = err.Error()
			return nil
		})
		return
	}

	metrics.IncUploadSucceeded()
	sess.Apply(item.ID, func(it *Item) error {
		next, terr := NextUploadStatus(it.UploadStatus, EventSucceed)
		if terr != nil {
			return terr
		}
		it.UploadStatus = next
		it.UploadProgress = 100
		it.StorageKey = storageKey
		it.FileURL = u.Store.URL(storageKey)
		it.SizeBytes = storedBytes
		it.StatusNote = ""
		return nil
	})
	u.Spool.Remove(sess.ID, item.ID)
}

func (u *Uploader) push(ctx context.Context, sess *Session, item Item) (string, int64, error) {
	src, err := u.Spool.Open(sess.ID, item.ID)
	if err != nil {
		return "", 0, fmt.Errorf("staged file unavailable: %w", err)
	}
	defer src.Close()

	storageKey, n, _, err := u.Store.Save(ctx, util.HashUserKey(sess.OwnerID), item.FileName, src)
	if err != nil {
		return "", 0, err
	}
	return storageKey, n, nil
}

func readyItems(sess *Session) []Item {
	var out []Item
	for _, it := range sess.Snapshot() {
		if it.UploadStatus == UploadReady {
			out = append(out, it)
		}
	}
	return out
}

// IsQuotaExceeded reports whether the error is the batch-level storage
// rejection rather than an infrastructure failure.
func IsQuotaExceeded(err error) bool {
	var exceeded *quota.ExceededError
	return errors.As(err, &exceeded)
}
