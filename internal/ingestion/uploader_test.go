package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/storage/object"
	"knowledgebase-backend/internal/usage"
)

// fakeStore counts Save calls and can fail for chosen file names.
type fakeStore struct {
	mu        sync.Mutex
	saves     int
	failFor   map[string]bool
	maxInUse  int
	inUse     int
	sizeDelta int64
}

func (f *fakeStore) Save(ctx context.Context, ownerKey, fileName string, r io.Reader) (string, int64, string, error) {
	f.mu.Lock()
	f.saves++
	f.inUse++
	if f.inUse > f.maxInUse {
		f.maxInUse = f.inUse
	}
	fail := f.failFor[fileName]
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inUse--
		f.mu.Unlock()
	}()

	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", 0, "", err
	}
	if fail {
		return "", 0, "", errors.New("store unavailable")
	}
	return "blob/" + fileName, n + f.sizeDelta, "application/octet-stream", nil
}

func (f *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeStore) URL(storageKey string) string { return "/files/" + storageKey }

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

var _ object.ObjectStore = (*fakeStore)(nil)

func newTestGate(t *testing.T, storedBytes int64, maxStorage int64) *quota.Gate {
	t.Helper()
	repo := documents.NewMemoryRepo()
	if storedBytes > 0 {
		svc := documents.Service{Repo: repo}
		if _, err := svc.Create(context.Background(), documents.NewDocument{
			Title: "existing", FileURL: "/files/existing", SizeBytes: storedBytes,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return &quota.Gate{
		Docs:   repo,
		Usage:  usage.NewMemoryStore(),
		Limits: quota.Limits{MaxStorageBytes: maxStorage, MaxMonthlyTokens: 20000},
	}
}

func stageSession(t *testing.T, spool *Spool, names ...string) *Session {
	t.Helper()
	sessions := NewSessions()
	sess := sessions.Create("u1", "User One")
	svc := &Service{
		Sessions:  sessions,
		Validator: Validator{MaxFileSizeBytes: 48 << 20},
		Spool:     spool,
	}
	for _, name := range names {
		content := strings.Repeat("x", 100)
		if _, err := svc.AddFile(context.Background(), sess, name, int64(len(content)), strings.NewReader(content)); err != nil {
			t.Fatalf("stage %s: %v", name, err)
		}
	}
	return sess
}

func newSpool(t *testing.T) *Spool {
	t.Helper()
	spool, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}
	return spool
}

func TestUploadMovesReadyItems(t *testing.T) {
	spool := newSpool(t)
	sess := stageSession(t, spool, "a.pdf", "b.png", "c.txt")
	store := &fakeStore{}
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 0, 1<<30), Workers: 2}

	if err := up.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if store.saveCount() != 3 {
		t.Fatalf("saves = %d, want 3", store.saveCount())
	}
	for _, it := range sess.Snapshot() {
		if it.UploadStatus != UploadSucceeded {
			t.Errorf("%s status = %s, want uploaded", it.FileName, it.UploadStatus)
		}
		if it.FileURL == "" || it.StorageKey == "" {
			t.Errorf("%s missing storage key or URL", it.FileName)
		}
		if it.UploadProgress != 100 {
			t.Errorf("%s progress = %d, want 100", it.FileName, it.UploadProgress)
		}
		if it.SizeBytes != 100 {
			t.Errorf("%s size = %d, want the stored byte count 100", it.FileName, it.SizeBytes)
		}
	}
}

func TestUploadRecordsStoreReportedSize(t *testing.T) {
	spool := newSpool(t)
	sess := stageSession(t, spool, "a.pdf")
	store := &fakeStore{sizeDelta: 7}
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 0, 1<<30), Workers: 1}

	if err := up.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	it := sess.Snapshot()[0]
	if it.SizeBytes != 107 {
		t.Fatalf("size = %d, want the store-reported 107", it.SizeBytes)
	}
}

func TestUploadQuotaRejectionTouchesNothing(t *testing.T) {
	spool := newSpool(t)
	sess := stageSession(t, spool, "a.pdf", "b.pdf")
	store := &fakeStore{}
	// 300 bytes stored, 350 byte ceiling, batch of 200 does not fit.
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 300, 350), Workers: 2}

	err := up.Upload(context.Background(), sess)
	var exceeded *quota.ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("Upload = %v, want ExceededError", err)
	}
	if store.saveCount() != 0 {
		t.Fatalf("saves = %d, want 0 after batch rejection", store.saveCount())
	}
	for _, it := range sess.Snapshot() {
		if it.UploadStatus != UploadReady {
			t.Errorf("%s status = %s, want ready", it.FileName, it.UploadStatus)
		}
	}
}

func TestUploadPartialFailureIsolated(t *testing.T) {
	spool := newSpool(t)
	sess := stageSession(t, spool, "good.pdf", "bad.pdf", "fine.txt")
	store := &fakeStore{failFor: map[string]bool{"bad.pdf": true}}
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 0, 1<<30), Workers: 2}

	if err := up.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload = %v, per-item failures must not fail the batch", err)
	}
	byName := map[string]Item{}
	for _, it := range sess.Snapshot() {
		byName[it.FileName] = it
	}
	if byName["good.pdf"].UploadStatus != UploadSucceeded || byName["fine.txt"].UploadStatus != UploadSucceeded {
		t.Error("healthy items did not finish")
	}
	bad := byName["bad.pdf"]
	if bad.UploadStatus != UploadFailed {
		t.Fatalf("bad.pdf status = %s, want error", bad.UploadStatus)
	}
	if bad.StatusNote == "" {
		t.Error("failed item has no status note")
	}
	if bad.UploadProgress != 0 {
		t.Errorf("bad.pdf progress = %d, want 0", bad.UploadProgress)
	}
}

func TestUploadRespectsWorkerLimit(t *testing.T) {
	spool := newSpool(t)
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("f%d.txt", i)
	}
	sess := stageSession(t, spool, names...)
	store := &fakeStore{}
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 0, 1<<30), Workers: 3}

	if err := up.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if store.maxInUse > 3 {
		t.Fatalf("max concurrent saves = %d, want <= 3", store.maxInUse)
	}
}

func TestUploadSkipsSettledItems(t *testing.T) {
	spool := newSpool(t)
	sess := stageSession(t, spool, "done.pdf", "new.pdf")
	sess.Apply(sess.Snapshot()[0].ID, func(it *Item) error {
		it.UploadStatus = UploadSucceeded
		return nil
	})
	store := &fakeStore{}
	up := &Uploader{Store: store, Spool: spool, Quota: newTestGate(t, 0, 1<<30), Workers: 2}

	if err := up.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if store.saveCount() != 1 {
		t.Fatalf("saves = %d, want 1", store.saveCount())
	}
}
