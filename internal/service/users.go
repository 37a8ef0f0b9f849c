package service

import (
	"context"
	"errors"
	"fmt"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/metrics"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
)

// UserInput carries the scalar fields of a user.
type UserInput struct {
	Name  string
	Email string
}

// UserUpdate replaces a user's fields. A nil Games leaves subscriptions
// untouched; a non-nil one replaces them wholesale.
type UserUpdate struct {
	UserInput
	Games []string
}

// ListUsers returns one page of users and the total count.
func (s *Service) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	users, total, err := s.store.Users.Page(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return user, notFound(err, models.KindUser, id)
	}
	return user, nil
}

// UserGames returns the games a user is subscribed to.
func (s *Service) UserGames(ctx context.Context, id string) ([]models.Game, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Games.FindByIDs(ctx, user.Games)
}

// UserArticles returns the articles of every game the user is subscribed
// to, each article once.
func (s *Service) UserArticles(ctx context.Context, id string) ([]models.Article, error) {
	games, err := s.UserGames(ctx, id)
	if err != nil {
		return nil, err
	}
	var articleIDs []string
	for _, g := range games {
		articleIDs = append(articleIDs, g.Articles...)
	}
	return s.store.Articles.FindByIDs(ctx, relation.Dedupe(articleIDs))
}

// UserReviews returns the reviews a user has written.
func (s *Service) UserReviews(ctx context.Context, id string) ([]models.Review, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Reviews.FindByIDs(ctx, user.Reviews)
}

// CreateUser stores a new user with no subscriptions or reviews.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	user := models.User{Name: in.Name, Email: in.Email}
	err := s.mutate(ctx, func(tx *store.Store, _ *relation.Maintainer) error {
		if err := emailFree(ctx, tx, in.Email, ""); err != nil {
			return err
		}
		return createUser(ctx, tx, &user)
	})
	if err != nil {
		return models.User{}, err
	}
	s.publish(models.KindUser, "created", idPayload(user.ID))
	return user, nil
}

// UpdateUser replaces a user's name and email and, when given, reconciles
// its subscriptions.
func (s *Service) UpdateUser(ctx context.Context, id string, in UserUpdate) (models.User, error) {
	var user models.User
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		current, err := tx.Users.FindByID(ctx, id)
		if err != nil {
			return notFound(err, models.KindUser, id)
		}
		if in.Games != nil {
			if err := m.RequireAll(ctx, models.KindGame, relation.Dedupe(in.Games)); err != nil {
				return err
			}
		}
		if in.Email != current.Email {
			if err := emailFree(ctx, tx, in.Email, id); err != nil {
				return err
			}
		}

		err = tx.Users.UpdateFields(ctx, id, map[string]any{"name": in.Name, "email": in.Email})
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("update user %s: %w", id, err)
		}

		if in.Games != nil {
			if _, err := m.ReconcileOnUpdate(ctx, relation.Subscriptions, id, current.Games, in.Games); err != nil {
				return err
			}
		}

		user, err = tx.Users.FindByID(ctx, id)
		return notFound(err, models.KindUser, id)
	})
	if err != nil {
		return models.User{}, err
	}
	s.publish(models.KindUser, "updated", idPayload(user.ID))
	return user, nil
}

// DeleteUser removes a user, unsubscribing it from every game and deleting
// its reviews.
func (s *Service) DeleteUser(ctx context.Context, id string) (DeleteResult, error) {
	var cascade relation.Cascade
	err := s.mutate(ctx, func(_ *store.Store, m *relation.Maintainer) error {
		var err error
		cascade, err = m.CascadeOnDelete(ctx, models.KindUser, id)
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.recordCascade(cascade)
	result := newDeleteResult(cascade)
	s.publish(models.KindUser, "deleted", result)
	return result, nil
}

// Subscribe links a user and a game. It fails with
// apperr.ErrAlreadyInRelation when they are already linked.
func (s *Service) Subscribe(ctx context.Context, userID, gameID string) (models.User, error) {
	var user models.User
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		if err := m.Attach(ctx, relation.Subscriptions, userID, gameID); err != nil {
			return err
		}
		var err error
		user, err = tx.Users.FindByID(ctx, userID)
		return notFound(err, models.KindUser, userID)
	})
	if err != nil {
		return models.User{}, err
	}
	metrics.RecordRelationChange(relation.Subscriptions.Name, "attach")
	s.publish(models.KindUser, "subscribed", map[string]string{"user": userID, "game": gameID})
	return user, nil
}

// Unsubscribe unlinks a user and a game. It fails with
// apperr.ErrNotInRelation when they were not linked.
func (s *Service) Unsubscribe(ctx context.Context, userID, gameID string) (models.User, error) {
	var user models.User
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		if err := m.RequireAll(ctx, models.KindUser, []string{userID}); err != nil {
			return err
		}
		if err := m.RequireAll(ctx, models.KindGame, []string{gameID}); err != nil {
			return err
		}
		d, err := m.Detach(ctx, relation.Subscriptions, userID, gameID)
		if err != nil {
			return err
		}
		if !d.Linked {
			return apperr.ErrNotInRelation
		}
		user, err = tx.Users.FindByID(ctx, userID)
		return notFound(err, models.KindUser, userID)
	})
	if err != nil {
		return models.User{}, err
	}
	metrics.RecordRelationChange(relation.Subscriptions.Name, "detach")
	s.publish(models.KindUser, "unsubscribed", map[string]string{"user": userID, "game": gameID})
	return user, nil
}

// emailFree fails with apperr.ErrEmailTaken when another user owns email.
func emailFree(ctx context.Context, tx *store.Store, email, exceptID string) error {
	existing, err := tx.Users.Find(ctx, "email = ?", email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	for _, u := range existing {
		if u.ID != exceptID {
			return apperr.ErrEmailTaken
		}
	}
	return nil
}

func createUser(ctx context.Context, tx *store.Store, user *models.User) error {
	err := tx.Users.Create(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
