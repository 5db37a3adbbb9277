package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/processing"
)

func newTestService(t *testing.T) (*Service, *documents.Service) {
	t.Helper()
	spool := newSpool(t)
	docs := &documents.Service{Repo: documents.NewMemoryRepo()}
	svc := &Service{
		Sessions:  NewSessions(),
		Validator: Validator{MaxFileSizeBytes: 48 << 20},
		Spool:     spool,
		Uploader: &Uploader{
			Store:   &fakeStore{},
			Spool:   spool,
			Quota:   newTestGate(t, 0, 1<<30),
			Workers: 2,
		},
	}
	svc.Registrar = &Registrar{Docs: docs}
	return svc, docs
}

func addFile(t *testing.T, svc *Service, sess *Session, name string) Item {
	t.Helper()
	content := strings.Repeat("x", 64)
	item, err := svc.AddFile(context.Background(), sess, name, int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("AddFile %s: %v", name, err)
	}
	return item
}

func TestAddFileDerivesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")

	item := addFile(t, svc, sess, "q3-sales_report.pdf")
	if item.Title != "Q3 Sales Report" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.Class != ClassAIEligible || item.AIStatus != AINotProcessed {
		t.Errorf("class/status = %s/%s", item.Class, item.AIStatus)
	}

	blob := addFile(t, svc, sess, "team-photo.png")
	if blob.Class != ClassStorageOnly || blob.AIStatus != AIStorageOnly {
		t.Errorf("storage-only class/status = %s/%s", blob.Class, blob.AIStatus)
	}

	noExt := addFile(t, svc, sess, "Makefile")
	if noExt.FileType != "" || noExt.Class != ClassStorageOnly {
		t.Errorf("extension-less file type/class = %q/%s", noExt.FileType, noExt.Class)
	}
}

func TestAddFileChecksMeasuredSize(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Validator = Validator{MaxFileSizeBytes: 10}
	sess := svc.Sessions.Create("u1", "User One")

	// Declared size fits, actual bytes do not.
	_, err := svc.AddFile(context.Background(), sess, "liar.txt", 5, strings.NewReader(strings.Repeat("x", 20)))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("AddFile = %v, want ValidationError", err)
	}
	if len(sess.Snapshot()) != 0 {
		t.Error("rejected file left an item behind")
	}
}

func TestCommitRegistersEverythingUploaded(t *testing.T) {
	svc, docs := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	addFile(t, svc, sess, "a.pdf")
	addFile(t, svc, sess, "b.png")

	summary, err := svc.Commit(context.Background(), sess)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Uploaded != 2 || summary.Registered != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	list, _ := docs.List(context.Background(), documents.Filter{})
	if len(list) != 2 {
		t.Fatalf("documents = %d, want 2", len(list))
	}
}

func TestCommitEmptySession(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")

	if _, err := svc.Commit(context.Background(), sess); !errors.Is(err, ErrNoReadyItems) {
		t.Fatalf("Commit = %v, want ErrNoReadyItems", err)
	}
}

func TestCommitTwiceIsNotDoubleRegistration(t *testing.T) {
	svc, docs := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	addFile(t, svc, sess, "a.pdf")

	if _, err := svc.Commit(context.Background(), sess); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if _, err := svc.Commit(context.Background(), sess); !errors.Is(err, ErrNoReadyItems) {
		t.Fatalf("second Commit = %v, want ErrNoReadyItems", err)
	}
	list, _ := docs.List(context.Background(), documents.Filter{})
	if len(list) != 1 {
		t.Fatalf("documents = %d, want 1", len(list))
	}
}

func TestManualTextCarriedToDocument(t *testing.T) {
	svc, docs := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	item := addFile(t, svc, sess, "scan.pdf")

	text := "pasted document text"
	updated, err := svc.UpdateItem(sess, item.ID, ItemEdit{ManualText: &text})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.ManualText != text {
		t.Fatalf("item ManualText = %q, want %q", updated.ManualText, text)
	}

	if _, err := svc.Commit(context.Background(), sess); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	list, _ := docs.List(context.Background(), documents.Filter{})
	if len(list) != 1 {
		t.Fatalf("documents = %d, want 1", len(list))
	}
	if list[0].ManualText != text {
		t.Fatalf("document ManualText = %q, want %q", list[0].ManualText, text)
	}
}

func TestUpdateItemLockedAfterRegistration(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	item := addFile(t, svc, sess, "a.pdf")

	title := "Better Title"
	if _, err := svc.UpdateItem(sess, item.ID, ItemEdit{Title: &title}); err != nil {
		t.Fatalf("UpdateItem before commit: %v", err)
	}

	if _, err := svc.Commit(context.Background(), sess); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := svc.UpdateItem(sess, item.ID, ItemEdit{Title: &title}); !errors.Is(err, ErrItemNotEditable) {
		t.Fatalf("UpdateItem after commit = %v, want ErrItemNotEditable", err)
	}
	if err := svc.RemoveItem(sess, item.ID); !errors.Is(err, ErrItemNotEditable) {
		t.Fatalf("RemoveItem after commit = %v, want ErrItemNotEditable", err)
	}
}

type scriptedProcessor struct {
	result ai.Result
	err    error
	calls  int
}

func (p *scriptedProcessor) Process(ctx context.Context, documentID string) (ai.Result, error) {
	p.calls++
	return p.result, p.err
}

func commitOne(t *testing.T, svc *Service, name string) (*Session, Item) {
	t.Helper()
	sess := svc.Sessions.Create("u1", "User One")
	item := addFile(t, svc, sess, name)
	if _, err := svc.Commit(context.Background(), sess); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := sess.Get(item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return sess, got
}

func TestProcessItemMirrorsSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	sess, item := commitOne(t, svc, "doc.pdf")

	proc := &scriptedProcessor{result: ai.Result{Message: "Indexed"}}
	got, err := svc.ProcessItem(context.Background(), sess, item.ID, proc)
	if err != nil {
		t.Fatalf("ProcessItem: %v", err)
	}
	if got.AIStatus != AIProcessed || got.StatusNote != "Indexed" {
		t.Fatalf("item = %s %q", got.AIStatus, got.StatusNote)
	}
}

func TestProcessItemMirrorsFailure(t *testing.T) {
	svc, _ := newTestService(t)
	sess, item := commitOne(t, svc, "doc.pdf")

	proc := &scriptedProcessor{err: &ai.CollaboratorError{Operation: "process", StatusCode: 500, Message: "boom"}}
	_, err := svc.ProcessItem(context.Background(), sess, item.ID, proc)
	if err == nil {
		t.Fatal("ProcessItem = nil, want error")
	}
	got, _ := sess.Get(item.ID)
	if got.AIStatus != AIFailed {
		t.Fatalf("AIStatus = %s, want failed", got.AIStatus)
	}
	if got.StatusNote == "" {
		t.Error("failed item has no status note")
	}

	// Failed items accept another explicit attempt.
	proc.err = nil
	proc.result = ai.Result{Message: "ok"}
	if _, err := svc.ProcessItem(context.Background(), sess, item.ID, proc); err != nil {
		t.Fatalf("re-process: %v", err)
	}
}

func TestProcessItemRefusalRestoresStatus(t *testing.T) {
	svc, _ := newTestService(t)
	sess, item := commitOne(t, svc, "doc.pdf")

	proc := &scriptedProcessor{err: processing.ErrAlreadyProcessing}
	_, err := svc.ProcessItem(context.Background(), sess, item.ID, proc)
	if !errors.Is(err, processing.ErrAlreadyProcessing) {
		t.Fatalf("ProcessItem = %v", err)
	}
	got, _ := sess.Get(item.ID)
	if got.AIStatus != AINotProcessed {
		t.Fatalf("AIStatus = %s, want not_processed after refusal", got.AIStatus)
	}
}

func TestProcessItemRequiresRegistration(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	item := addFile(t, svc, sess, "doc.pdf")

	proc := &scriptedProcessor{}
	if _, err := svc.ProcessItem(context.Background(), sess, item.ID, proc); !errors.Is(err, ErrItemNotEditable) {
		t.Fatalf("ProcessItem = %v, want ErrItemNotEditable", err)
	}
	if proc.calls != 0 {
		t.Error("collaborator called for an uncommitted item")
	}
}

func TestDiscardDropsSession(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")
	addFile(t, svc, sess, "doc.pdf")

	if err := svc.Discard(sess.ID, "u1"); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := svc.Sessions.Get(sess.ID, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("session still present after discard")
	}
}

func TestSessionsAreOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.Sessions.Create("u1", "User One")

	if _, err := svc.Sessions.Get(sess.ID, "u2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("another user could see the session")
	}
}
