package service

import (
	"context"
	"fmt"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
)

// ReviewInput carries a new review. GameID is fixed once created.
type ReviewInput struct {
	Text              string
	IsGameRecommended bool
	GameID            string
}

// ReviewUpdate changes a review's verdict. GameID is optional; when set it
// must match the review's game.
type ReviewUpdate struct {
	Text              string
	IsGameRecommended bool
	GameID            string
}

// CreateReview stores a review by userID and links it to its user and game.
func (s *Service) CreateReview(ctx context.Context, userID string, in ReviewInput) (models.Review, error) {
	review := models.Review{
		Text:              in.Text,
		IsGameRecommended: in.IsGameRecommended,
		UserID:            userID,
		GameID:            in.GameID,
	}
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		if err := m.RequireAll(ctx, models.KindUser, []string{userID}); err != nil {
			return err
		}
		if err := m.RequireAll(ctx, models.KindGame, []string{in.GameID}); err != nil {
			return err
		}
		if err := tx.Reviews.Create(ctx, &review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		if err := m.Attach(ctx, relation.Authorship, userID, review.ID); err != nil {
			return err
		}
		return m.Attach(ctx, relation.Critique, in.GameID, review.ID)
	})
	if err != nil {
		return models.Review{}, err
	}
	s.publish(models.KindReview, "created", map[string]string{"id": review.ID, "user": userID, "game": in.GameID})
	return review, nil
}

// UpdateReview changes the text and verdict of a review written by userID.
func (s *Service) UpdateReview(ctx context.Context, userID, reviewID string, in ReviewUpdate) (models.Review, error) {
	var review models.Review
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		current, err := ownedReview(ctx, tx, m, userID, reviewID)
		if err != nil {
			return err
		}
		if in.GameID != "" && in.GameID != current.GameID {
			return &apperr.OperationNotAllowed{Reason: apperr.MsgReviewGameChangeNotAllowed}
		}

		err = tx.Reviews.UpdateFields(ctx, reviewID, map[string]any{
			"text":                in.Text,
			"is_game_recommended": in.IsGameRecommended,
		})
		if err != nil {
			return notFound(err, models.KindReview, reviewID)
		}
		review, err = tx.Reviews.FindByID(ctx, reviewID)
		return notFound(err, models.KindReview, reviewID)
	})
	if err != nil {
		return models.Review{}, err
	}
	s.publish(models.KindReview, "updated", idPayload(review.ID))
	return review, nil
}

// DeleteReview removes a review written by userID and unlinks it from its
// user and game.
func (s *Service) DeleteReview(ctx context.Context, userID, reviewID string) (DeleteResult, error) {
	var cascade relation.Cascade
	err := s.mutate(ctx, func(tx *store.Store, m *relation.Maintainer) error {
		if _, err := ownedReview(ctx, tx, m, userID, reviewID); err != nil {
			return err
		}
		var err error
		cascade, err = m.CascadeOnDelete(ctx, models.KindReview, reviewID)
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.recordCascade(cascade)
	result := newDeleteResult(cascade)
	s.publish(models.KindReview, "deleted", result)
	return result, nil
}

// ownedReview loads a review through its author. A review of another user
// reads as missing.
func ownedReview(ctx context.Context, tx *store.Store, m *relation.Maintainer, userID, reviewID string) (models.Review, error) {
	if err := m.RequireAll(ctx, models.KindUser, []string{userID}); err != nil {
		return models.Review{}, err
	}
	review, err := tx.Reviews.FindByID(ctx, reviewID)
	if err != nil {
		return review, notFound(err, models.KindReview, reviewID)
	}
	if review.UserID != userID {
		return models.Review{}, apperr.NewNotFound(models.KindReview, reviewID)
	}
	return review, nil
}
