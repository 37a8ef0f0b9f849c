// Package store persists entities as documents with id-array fields.
//
// Collections expose find/create/update/delete per entity type. The id-array
// fields that carry relations are read and written through Store.IDs and
// Store.SetIDs so the relation maintainer can treat every relation the same
// way regardless of which collection holds it.
package store

import (
	"context"
	"errors"
	"fmt"

	"gamehub/backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a write violated a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// refFields lists the id-array columns of each collection.
var refFields = map[models.Kind][]string{
	models.KindUser:    {"games", "reviews"},
	models.KindGame:    {"articles", "users", "reviews"},
	models.KindArticle: {"games"},
}

// Store groups the entity collections over one database handle.
type Store struct {
	db *gorm.DB

	Users    Collection[models.User]
	Games    Collection[models.Game]
	Articles Collection[models.Article]
	Reviews  Collection[models.Review]
}

// New creates a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    Collection[models.User]{db: db},
		Games:    Collection[models.Game]{db: db},
		Articles: Collection[models.Article]{db: db},
		Reviews:  Collection[models.Review]{db: db},
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Exists reports whether a document of the given kind exists.
func (s *Store) Exists(ctx context.Context, kind models.Kind, id string) (bool, error) {
	model, err := modelOf(kind)
	if err != nil {
		return false, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// ExistingIDs returns the subset of ids that exist for kind.
func (s *Store) ExistingIDs(ctx context.Context, kind models.Kind, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	model, err := modelOf(kind)
	if err != nil {
		return nil, err
	}
	var present []string
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &present).Error; err != nil {
		return nil, translate(err)
	}
	for _, id := range present {
		found[id] = true
	}
	return found, nil
}

type refsRow struct {
	Refs datatypes.JSONSlice[string]
}

// IDs reads one id-array field of a document.
func (s *Store) IDs(ctx context.Context, kind models.Kind, id, field string) ([]string, error) {
	model, err := refModel(kind, field)
	if err != nil {
		return nil, err
	}

	var row refsRow
	res := s.db.WithContext(ctx).Model(model).
		Select(field+" AS refs").
		Where("id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return []string(row.Refs), nil
}

// SetIDs replaces one id-array field of a document.
func (s *Store) SetIDs(ctx context.Context, kind models.Kind, id, field string, ids []string) error {
	model, err := refModel(kind, field)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}

	res := s.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Update(field, datatypes.JSONSlice[string](ids))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one document of any kind.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	switch kind {
	case models.KindUser:
		return s.Users.Delete(ctx, id)
	case models.KindGame:
		return s.Games.Delete(ctx, id)
	case models.KindArticle:
		return s.Articles.Delete(ctx, id)
	case models.KindReview:
		return s.Reviews.Delete(ctx, id)
	}
	return fmt.Errorf("unknown kind %q", kind)
}

func modelOf(kind models.Kind) (any, error) {
	switch kind {
	case models.KindUser:
		return &models.User{}, nil
	case models.KindGame:
		return &models.Game{}, nil
	case models.KindArticle:
		return &models.Article{}, nil
	case models.KindReview:
		return &models.Review{}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

func refModel(kind models.Kind, field string) (any, error) {
	for _, f := range refFields[kind] {
		if f == field {
			return modelOf(kind)
		}
	}
	return nil, fmt.Errorf("%s has no id-array field %q", kind, field)
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
