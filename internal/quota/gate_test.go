package quota

import (
	"context"
	"errors"
	"testing"

	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/usage"
)

func seedDocs(t *testing.T, repo *documents.MemoryRepo, sizes ...int64) {
	t.Helper()
	svc := documents.Service{Repo: repo}
	for _, size := range sizes {
		_, err := svc.Create(context.Background(), documents.NewDocument{
			Title:     "doc",
			FileURL:   "/files/doc",
			SizeBytes: size,
		})
		if err != nil {
			t.Fatalf("seed doc: %v", err)
		}
	}
}

func TestCheckUploadRejectsWholeBatch(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedDocs(t, repo, 1000<<20)

	gate := &Gate{
		Docs:   repo,
		Usage:  usage.NewMemoryStore(),
		Limits: Limits{MaxStorageBytes: 1 << 30, MaxMonthlyTokens: 20000},
	}

	// 10+20+50 MiB on top of 1000 MiB crosses the 1024 MiB ceiling.
	var batch int64 = (10 + 20 + 50) << 20
	err := gate.CheckUpload(context.Background(), batch)
	var exceeded *ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("CheckUpload = %v, want ExceededError", err)
	}
	if exceeded.Resource != "storage" {
		t.Fatalf("resource = %q, want storage", exceeded.Resource)
	}
	if exceeded.Requested != batch {
		t.Fatalf("requested = %d, want %d", exceeded.Requested, batch)
	}
}

func TestCheckUploadAllowsExactFit(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedDocs(t, repo, 1000<<20)

	gate := &Gate{
		Docs:   repo,
		Usage:  usage.NewMemoryStore(),
		Limits: Limits{MaxStorageBytes: 1 << 30, MaxMonthlyTokens: 20000},
	}

	if err := gate.CheckUpload(context.Background(), 24<<20); err != nil {
		t.Fatalf("CheckUpload = %v, want nil for exact fit", err)
	}
}

func TestCheckTokensInclusiveBoundary(t *testing.T) {
	cases := []struct {
		name     string
		used     int
		wantFail bool
	}{
		{"just under", 19999, false},
		{"at limit", 20000, true},
		{"over limit", 20001, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := usage.NewMemoryStore()
			store.Add(tc.used)
			gate := &Gate{
				Docs:   documents.NewMemoryRepo(),
				Usage:  store,
				Limits: Limits{MaxStorageBytes: 1 << 30, MaxMonthlyTokens: 20000},
			}
			err := gate.CheckTokens(context.Background())
			if tc.wantFail && err == nil {
				t.Fatal("CheckTokens = nil, want error")
			}
			if !tc.wantFail && err != nil {
				t.Fatalf("CheckTokens = %v, want nil", err)
			}
		})
	}
}

func TestSnapshotFlags(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedDocs(t, repo, 1<<30)
	store := usage.NewMemoryStore()
	store.Add(500)

	gate := &Gate{
		Docs:   repo,
		Usage:  store,
		Limits: Limits{MaxStorageBytes: 1 << 30, MaxMonthlyTokens: 20000},
	}
	snap, err := gate.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !snap.StorageAtLimit {
		t.Error("StorageAtLimit = false, want true at exactly the ceiling")
	}
	if snap.TokensAtLimit {
		t.Error("TokensAtLimit = true, want false")
	}
	if snap.TokensUsed != 500 {
		t.Errorf("TokensUsed = %d, want 500", snap.TokensUsed)
	}
}
