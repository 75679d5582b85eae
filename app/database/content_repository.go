package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// contentRepository handles database operations for content items
type contentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) ContentRepository {
	return &contentRepository{db: db}
}

const itemColumns = `id, title, slug, body, excerpt, status, content_type,
	author_name, author_url, language, published_at, modified_at,
	categories, tags, taxonomies, media, meta, created_at`

// GetItem returns a single content item by id, or nil when absent.
func (r *contentRepository) GetItem(id int64) (*ContentItem, error) {
	row := r.db.QueryRow(`SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	return item, nil
}

// GetItemsByIDs returns the items matching the given ids, preserving
// the input order. Missing ids are silently dropped.
func (r *contentRepository) GetItemsByIDs(ids []int64) ([]ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(`SELECT `+itemColumns+` FROM content_items WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get content items by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]ContentItem, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item row: %w", err)
		}
		byID[item.ID] = *item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content item rows: %w", err)
	}

	items := make([]ContentItem, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}

	return items, nil
}

// ListItems returns a page of items ordered by modification time
// descending, plus the total count for the same filter.
func (r *contentRepository) ListItems(q ItemQuery) ([]ContentItem, int, error) {
	where, args := buildFilter(q)

	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM content_items `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count content items: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 10
	}

	listArgs := append(append([]interface{}{}, args...), perPage, (page-1)*perPage)
	rows, err := r.db.Query(`SELECT `+itemColumns+` FROM content_items `+where+`
		ORDER BY modified_at DESC, id DESC
		LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan content item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating content item rows: %w", err)
	}

	return items, total, nil
}

// GetLatestModified returns the newest modification timestamp across
// published items, or nil when the repository is empty.
func (r *contentRepository) GetLatestModified() (*time.Time, error) {
	var raw sql.NullString
	err := r.db.QueryRow(`SELECT MAX(modified_at) FROM content_items WHERE status = ?`, StatusPublished).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest modification time: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	ts, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// GetItemCount returns the number of published items
func (r *contentRepository) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM content_items WHERE status = ?`, StatusPublished).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// GetPublishedTypes returns the distinct content types with at least
// one published item.
func (r *contentRepository) GetPublishedTypes() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT content_type FROM content_items WHERE status = ? ORDER BY content_type`, StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to get published types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan content type row: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content type rows: %w", err)
	}

	return types, nil
}

func buildFilter(q ItemQuery) (string, []interface{}) {
	status := q.Status
	if status == "" {
		status = StatusPublished
	}

	clauses := []string{"status = ?"}
	args := []interface{}{status}

	if q.Type != "" {
		clauses = append(clauses, "content_type = ?")
		args = append(args, q.Type)
	}
	if q.ChangedSince != nil {
		clauses = append(clauses, "modified_at > ?")
		args = append(args, formatTime(*q.ChangedSince))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*ContentItem, error) {
	var item ContentItem
	var publishedAt sql.NullString
	var modifiedAt, createdAt string
	var categories, tags, taxonomies, media, meta string

	err := row.Scan(
		&item.ID, &item.Title, &item.Slug, &item.Body, &item.Excerpt, &item.Status,
		&item.Type, &item.AuthorName, &item.AuthorURL, &item.Language,
		&publishedAt, &modifiedAt,
		&categories, &tags, &taxonomies, &media, &meta,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid && publishedAt.String != "" {
		ts, err := parseTime(publishedAt.String)
		if err != nil {
			return nil, err
		}
		item.PublishedAt = &ts
	}
	if item.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	// List and map fields are stored as JSON columns.
	if err := unmarshalColumn(categories, &item.Categories); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(tags, &item.Tags); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(taxonomies, &item.Taxonomies); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(media, &item.Media); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(meta, &item.Meta); err != nil {
		return nil, err
	}

	return &item, nil
}

func unmarshalColumn(raw string, dest interface{}) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("failed to decode JSON column: %w", err)
	}
	return nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", raw)
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
