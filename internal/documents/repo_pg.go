package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    title,
    description,
    category,
    tags,
    project_id,
    file_url,
    file_type,
    size_bytes,
    manual_text,
    ai_processed,
    ai_processing_message,
    uploaded_by_name,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		tags,
		nullString(doc.ProjectID),
		doc.FileURL,
		doc.FileType,
		doc.SizeBytes,
		doc.ManualText,
		doc.AIProcessed,
		nullString(doc.AIProcessingMessage),
		doc.UploadedByName,
		doc.CreatedAt,
	)
	return err
}

// Update rewrites the mutable columns of a document. Size and file
// columns are set once at creation and never updated.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents SET
    title = $2,
    description = $3,
    category = $4,
    tags = $5,
    project_id = $6,
    manual_text = $7,
    ai_processed = $8,
    ai_processing_message = $9
WHERE id = $1`

	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		tags,
		nullString(doc.ProjectID),
		doc.ManualText,
		doc.AIProcessed,
		nullString(doc.AIProcessingMessage),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a document by ID.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = selectColumns + ` WHERE id = $1`

	row := r.DB.QueryRowContext(ctx, query, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// List returns matching documents, newest first. Tag matching happens
// in memory after the row scan; the remaining filters run in SQL.
func (r *PGRepo) List(ctx context.Context, f Filter) ([]Document, error) {
	query, args := buildListQuery(f)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if len(f.Tags) > 0 && !hasAnyTag(doc.Tags, f.Tags) {
			continue
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

const selectColumns = `
SELECT id, title, description, category, tags, project_id, file_url, file_type, size_bytes, manual_text, ai_processed, ai_processing_message, uploaded_by_name, created_at
FROM documents`

func buildListQuery(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		p := arg("%" + term + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR tags::text ILIKE %s)", p, p, p))
	}
	if len(f.Categories) > 0 {
		conds = append(conds, "category IN ("+placeholders(f.Categories, arg)+")")
	}
	if len(f.UploadedBy) > 0 {
		conds = append(conds, "uploaded_by_name IN ("+placeholders(f.UploadedBy, arg)+")")
	}
	if len(f.ProjectIDs) > 0 || f.IncludeUnassigned {
		var parts []string
		if len(f.ProjectIDs) > 0 {
			parts = append(parts, "project_id IN ("+placeholders(f.ProjectIDs, arg)+")")
		}
		if f.IncludeUnassigned {
			parts = append(parts, "project_id IS NULL")
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	query := selectColumns
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY created_at DESC"
	return query, args
}

func placeholders(values []string, arg func(any) string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, arg(v))
	}
	return strings.Join(parts, ", ")
}

func hasAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc       Document
		tags      []byte
		projectID sql.NullString
		aiMessage sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.Category,
		&tags,
		&projectID,
		&doc.FileURL,
		&doc.FileType,
		&doc.SizeBytes,
		&doc.ManualText,
		&doc.AIProcessed,
		&aiMessage,
		&doc.UploadedByName,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &doc.Tags); err != nil {
			return Document{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	doc.ProjectID = projectID.String
	doc.AIProcessingMessage = aiMessage.String
	return doc, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	out, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
