package service

import (
	"context"
	"fmt"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
)

// ArticleInput carries a new article. Games must name at least one
// existing game.
type ArticleInput struct {
	Title  string
	Text   string
	Author string
	Games  []string
}

// ArticleUpdate replaces an article's scalar fields. A non-nil Games is
// refused: an article's games are fixed at creation.
type ArticleUpdate struct {
	Title  string
	Text   string
	Author string
	Games  []string
}

// ListArticles returns one page of articles and the total count.
func (s *Service) ListArticles(ctx context.Context, page, limit int) ([]models.Article, int64, error) {
	articles, total, err := s.store.Articles.Page(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}

// GetArticle returns one article.
func (s *Service) GetArticle(ctx context.Context, id string) (models.Article, error) {
	article, err := s.store.Articles.FindByID(ctx, id)
	if err != nil {
		return article, notFound(err, models.KindArticle, id)
	}
	return article, nil
}

// ArticleGames returns the games an article covers.
func (s *Service) ArticleGames(ctx context.Context, id string) ([]models.Game, error) {
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Games.FindByIDs(ctx, article.Games)
}

// CreateArticle stores an article and links it to each of its games. No
// article is created when any game is missing.
func (s *Service) CreateArticle(ctx context.Context, in ArticleInput) (models.Article, error) {
	games := relation.Dedupe(in.Games)
	if len(games) == 0 {
		return models.Article{}, &apperr.ValidationFailed{Field: "games", Reason: "must reference at least one game"}
	}

	article := models.Article{Title: in.Title, Text: in.Text, Author: in.Author, Games: games}
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		if err := m.RequireAll(ctx, models.KindGame, games); err != nil {
			return err
		}
		if err := tx.Articles.Create(ctx, &article); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		for _, gameID := range games {
			if err := m.Attach(ctx, relation.Coverage, article.ID, gameID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Article{}, err
	}
	s.publish(models.KindArticle, "created", map[string]any{"id": article.ID, "games": games})
	return article, nil
}

// UpdateArticle replaces an article's title, text and author.
func (s *Service) UpdateArticle(ctx context.Context, id string, in ArticleUpdate) (models.Article, error) {
	if in.Games != nil {
		return models.Article{}, &apperr.OperationNotAllowed{Reason: apperr.MsgArticleGamesChangeNotAllowed}
	}

	var article models.Article
	err := s.mutate(ctx, func(tx *store.Store, _ *relation.Maintainer) error {
		err := tx.Articles.UpdateFields(ctx, id, map[string]any{
			"title":  in.Title,
			"text":   in.Text,
			"author": in.Author,
		})
		if err != nil {
			return notFound(err, models.KindArticle, id)
		}
		article, err = tx.Articles.FindByID(ctx, id)
		return notFound(err, models.KindArticle, id)
	})
	if err != nil {
		return models.Article{}, err
	}
	s.publish(models.KindArticle, "updated", idPayload(article.ID))
	return article, nil
}

// DeleteArticle removes an article and unlinks it from its games.
func (s *Service) DeleteArticle(ctx context.Context, id string) (DeleteResult, error) {
	var cascade relation.Cascade
	err := s.mutate(ctx, func(_ *store.Store, m *relation.Maintainer) error {
		var err error
		cascade, err = m.CascadeOnDelete(ctx, models.KindArticle, id)
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.recordCascade(cascade)
	result := newDeleteResult(cascade)
	s.publish(models.KindArticle, "deleted", result)
	return result, nil
}
