package store

import (
	"context"

	"gorm.io/gorm"
)

// Keyed is implemented by every stored document.
type Keyed interface {
	Key() string
}

// Collection provides document operations over one entity table.
type Collection[T Keyed] struct {
	db *gorm.DB
}

// Find returns every document matching the optional gorm conditions,
// oldest first.
func (c Collection[T]) Find(ctx context.Context, conds ...any) ([]T, error) {
	var docs []T
	if err := c.db.WithContext(ctx).Order("created_at").Find(&docs, conds...).Error; err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

// FindByID returns the document with the given id or ErrNotFound.
func (c Collection[T]) FindByID(ctx context.Context, id string) (T, error) {
	var doc T
	if err := c.db.WithContext(ctx).Take(&doc, "id = ?", id).Error; err != nil {
		return doc, translate(err)
	}
	return doc, nil
}

// FindByIDs resolves ids in the given order. Ids with no document are
// skipped, so dangling references read as absent.
func (c Collection[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	var docs []T
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, translate(err)
	}

	byID := make(map[string]T, len(docs))
	for _, doc := range docs {
		byID[doc.Key()] = doc
	}

	out := make([]T, 0, len(docs))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, doc)
	}
	return out, nil
}

// Create inserts doc, assigning its id when unset.
func (c Collection[T]) Create(ctx context.Context, doc *T) error {
	return translate(c.db.WithContext(ctx).Create(doc).Error)
}

// UpdateFields applies a partial update to the document with the given id.
func (c Collection[T]) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document with the given id.
func (c Collection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Page returns one page of documents, oldest first, plus the total count.
func (c Collection[T]) Page(ctx context.Context, page, limit int) ([]T, int64, error) {
	db := c.db.WithContext(ctx)

	var totalItems int64
	if err := db.Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, 0, translate(err)
	}

	var docs []T
	offset := (page - 1) * limit
	if err := db.Order("created_at").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return nil, 0, translate(err)
	}
	return docs, totalItems, nil
}
