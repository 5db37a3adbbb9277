package deletion

import (
	"context"
	"errors"
	"testing"

	"knowledgebase-backend/internal/documents"
)

type fakeCleaner struct {
	calls []string
	err   error
}

func (f *fakeCleaner) Cleanup(ctx context.Context, documentID string) error {
	f.calls = append(f.calls, documentID)
	return f.err
}

func seedDoc(t *testing.T, svc *documents.Service, title string) documents.Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), documents.NewDocument{
		Title:   title,
		FileURL: "/files/" + title,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return doc
}

func TestDeleteRemovesRecordAndCleansAIData(t *testing.T) {
	svc := &documents.Service{Repo: documents.NewMemoryRepo()}
	doc := seedDoc(t, svc, "handbook")
	cleaner := &fakeCleaner{}
	coord := &Coordinator{Docs: svc, Cleaner: cleaner}

	if err := coord.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cleaner.calls) != 1 || cleaner.calls[0] != doc.ID {
		t.Fatalf("cleaner calls = %v", cleaner.calls)
	}
	if _, err := svc.Get(context.Background(), doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}
}

func TestDeleteSurvivesCleanupFailure(t *testing.T) {
	svc := &documents.Service{Repo: documents.NewMemoryRepo()}
	doc := seedDoc(t, svc, "handbook")
	coord := &Coordinator{Docs: svc, Cleaner: &fakeCleaner{err: errors.New("collaborator down")}}

	if err := coord.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete = %v, want nil despite cleanup failure", err)
	}
	if _, err := svc.Get(context.Background(), doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatal("record survived the authoritative delete")
	}
}

func TestDeleteMissingDocument(t *testing.T) {
	svc := &documents.Service{Repo: documents.NewMemoryRepo()}
	cleaner := &fakeCleaner{}
	coord := &Coordinator{Docs: svc, Cleaner: cleaner}

	if err := coord.Delete(context.Background(), "nope"); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("Delete = %v, want ErrNotFound", err)
	}
	if len(cleaner.calls) != 0 {
		t.Fatal("cleanup ran for a missing document")
	}
}

func TestDeleteBatchContinuesPastFailures(t *testing.T) {
	svc := &documents.Service{Repo: documents.NewMemoryRepo()}
	a := seedDoc(t, svc, "a")
	b := seedDoc(t, svc, "b")
	coord := &Coordinator{Docs: svc, Cleaner: &fakeCleaner{}}

	results := coord.DeleteBatch(context.Background(), []string{a.ID, "missing", b.ID})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].Deleted || results[1].Deleted || !results[2].Deleted {
		t.Fatalf("unexpected outcomes: %+v", results)
	}
	if results[1].Error == "" {
		t.Error("missing document produced no error message")
	}
	for _, id := range []string{a.ID, b.ID} {
		if _, err := svc.Get(context.Background(), id); !errors.Is(err, documents.ErrNotFound) {
			t.Errorf("document %s survived batch delete", id)
		}
	}
}
