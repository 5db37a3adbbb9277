package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = cloneDocument(doc)
	return nil
}

// Update replaces the stored document with the same ID.
func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[doc.ID]; !ok {
		return ErrNotFound
	}
	r.data[doc.ID] = cloneDocument(doc)
	return nil
}

// Delete removes a document by ID.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

// List returns matching documents, newest first.
func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if matchesFilter(doc, f) {
			out = append(out, cloneDocument(doc))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesFilter(doc Document, f Filter) bool {
	if len(f.UploadedBy) > 0 && !containsString(f.UploadedBy, doc.UploadedByName) {
		return false
	}
	if len(f.ProjectIDs) > 0 || f.IncludeUnassigned {
		matched := false
		if doc.ProjectID == "" {
			matched = f.IncludeUnassigned
		} else {
			matched = containsString(f.ProjectIDs, doc.ProjectID)
		}
		if !matched {
			return false
		}
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, doc.Category) {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, tag := range doc.Tags {
			if containsString(f.Tags, tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(doc.Title), term) &&
			!strings.Contains(strings.ToLower(doc.Description), term) &&
			!anyTagContains(doc.Tags, term) {
			return false
		}
	}
	return true
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cloneDocument(doc Document) Document {
	out := doc
	out.Tags = append([]string(nil), doc.Tags...)
	return out
}
