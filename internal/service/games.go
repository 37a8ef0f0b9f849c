package service

import (
	"context"
	"errors"
	"fmt"

	"gamehub/backend/internal/metrics"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
)

// GameInput carries the scalar fields of a game.
type GameInput struct {
	Title       string
	Description string
}

// GameUpdate replaces a game's fields. Nil Users or Articles leave that
// relation untouched; non-nil slices replace it wholesale.
type GameUpdate struct {
	GameInput
	Users    []string
	Articles []string
}

// ListGames returns one page of games and the total count.
func (s *Service) ListGames(ctx context.Context, page, limit int) ([]models.Game, int64, error) {
	games, total, err := s.store.Games.Page(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return games, total, nil
}

// GetGame returns one game.
func (s *Service) GetGame(ctx context.Context, id string) (models.Game, error) {
	game, err := s.store.Games.FindByID(ctx, id)
	if err != nil {
		return game, notFound(err, models.KindGame, id)
	}
	return game, nil
}

// GameArticles returns the articles covering a game.
func (s *Service) GameArticles(ctx context.Context, id string) ([]models.Article, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Articles.FindByIDs(ctx, game.Articles)
}

// GameReviews returns the reviews of a game.
func (s *Service) GameReviews(ctx context.Context, id string) ([]models.Review, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Reviews.FindByIDs(ctx, game.Reviews)
}

// GameUsers returns the users subscribed to a game.
func (s *Service) GameUsers(ctx context.Context, id string) ([]models.User, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Users.FindByIDs(ctx, game.Users)
}

// CreateGame stores a new game with no relations.
func (s *Service) CreateGame(ctx context.Context, in GameInput) (models.Game, error) {
	game := models.Game{Title: in.Title, Description: in.Description}
	err := s.mutate(ctx, func(tx *store.Store, _ *relation.Maintainer) error {
		if err := tx.Games.Create(ctx, &game); err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Game{}, err
	}
	s.publish(models.KindGame, "created", idPayload(game.ID))
	return game, nil
}

// UpdateGame replaces a game's fields and reconciles any given relations.
// Every referenced user and article must exist before anything is written.
// Articles left without a game are deleted.
func (s *Service) UpdateGame(ctx context.Context, id string, in GameUpdate) (models.Game, DeleteResult, error) {
	var (
		game    models.Game
		cascade relation.Cascade
	)
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		current, err := tx.Games.FindByID(ctx, id)
		if err != nil {
			return notFound(err, models.KindGame, id)
		}
		if in.Users != nil {
			if err := m.RequireAll(ctx, models.KindUser, relation.Dedupe(in.Users)); err != nil {
				return err
			}
		}
		if in.Articles != nil {
			if err := m.RequireAll(ctx, models.KindArticle, relation.Dedupe(in.Articles)); err != nil {
				return err
			}
		}

		err = tx.Games.UpdateFields(ctx, id, map[string]any{"title": in.Title, "description": in.Description})
		if err != nil {
			return notFound(err, models.KindGame, id)
		}

		if in.Users != nil {
			if _, err := m.ReconcileOnUpdate(ctx, relation.Subscriptions.Inverse(), id, current.Users, in.Users); err != nil {
				return err
			}
		}
		if in.Articles != nil {
			c, err := m.ReconcileOnUpdate(ctx, relation.Coverage.Inverse(), id, current.Articles, in.Articles)
			if err != nil {
				return err
			}
			cascade = c
		}

		game, err = tx.Games.FindByID(ctx, id)
		return notFound(err, models.KindGame, id)
	})
	if err != nil {
		return models.Game{}, DeleteResult{}, err
	}
	s.recordCascade(cascade)
	result := newDeleteResult(cascade)
	s.publish(models.KindGame, "updated", map[string]any{"id": game.ID, "deleted": result.Deleted})
	return game, result, nil
}

// DeleteGame removes a game, unlinking its users, deleting its reviews and
// deleting every article it was the last game of.
func (s *Service) DeleteGame(ctx context.Context, id string) (DeleteResult, error) {
	var cascade relation.Cascade
	err := s.mutate(ctx, func(_ *store.Store, m *relation.Maintainer) error {
		var err error
		cascade, err = m.CascadeOnDelete(ctx, models.KindGame, id)
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.recordCascade(cascade)
	result := newDeleteResult(cascade)
	s.publish(models.KindGame, "deleted", result)
	return result, nil
}

// ImportRandomGame fetches a random game from the game source and stores
// it. It fails with ErrImportUnavailable when no source is configured.
func (s *Service) ImportRandomGame(ctx context.Context) (models.Game, error) {
	if s.source == nil || !s.source.Configured() {
		metrics.RecordImport("unavailable")
		return models.Game{}, ErrImportUnavailable
	}

	picked, err := s.source.RandomGame(ctx)
	if err != nil {
		metrics.RecordImport("error")
		return models.Game{}, fmt.Errorf("fetch random game: %w", err)
	}
	if picked.Name == "" {
		metrics.RecordImport("error")
		return models.Game{}, errors.New("fetch random game: game has no name")
	}

	game, err := s.CreateGame(ctx, GameInput{Title: picked.Name, Description: picked.Deck})
	if err != nil {
		metrics.RecordImport("error")
		return models.Game{}, err
	}
	metrics.RecordImport("ok")
	s.logger.Info("imported game", "id", game.ID, "title", game.Title)
	return game, nil
}
