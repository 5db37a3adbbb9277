package documents

import "context"

// Filter narrows List results. Zero value matches everything.
type Filter struct {
	// Search matches case-insensitively against title, description and tags.
	Search string
	// Categories keeps documents whose category is in the set.
	Categories []string
	// Tags keeps documents carrying at least one of the given tags.
	Tags []string
	// ProjectIDs keeps documents assigned to one of the given projects.
	ProjectIDs []string
	// IncludeUnassigned additionally keeps documents without a project
	// when a project filter is active.
	IncludeUnassigned bool
	// UploadedBy keeps documents uploaded by one of the given display names.
	UploadedBy []string
}

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Document, error)
	// List returns matching documents, newest first.
	List(ctx context.Context, f Filter) ([]Document, error)
}
