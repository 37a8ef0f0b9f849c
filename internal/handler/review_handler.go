package handler

import (
	"net/http"
	"time"

	"gamehub/backend/internal/models"
	"gamehub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type ReviewInput struct {
	Text              string `json:"text" binding:"required,min=3"`
	IsGameRecommended *bool  `json:"isGameRecommended" binding:"required"`
	Game              string `json:"game" binding:"required,len=24,hexadecimal"`
}

// ReviewUpdateInput changes a review. game may be repeated but not changed.
type ReviewUpdateInput struct {
	Text              string `json:"text" binding:"required,min=3"`
	IsGameRecommended *bool  `json:"isGameRecommended" binding:"required"`
	Game              string `json:"game" binding:"omitempty,len=24,hexadecimal"`
}

type ReviewResponse struct {
	ID                string    `json:"id"`
	Text              string    `json:"text"`
	IsGameRecommended bool      `json:"isGameRecommended"`
	User              string    `json:"user"`
	Game              string    `json:"game"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func newReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:                review.ID,
		Text:              review.Text,
		IsGameRecommended: review.IsGameRecommended,
		User:              review.UserID,
		Game:              review.GameID,
		CreatedAt:         review.CreatedAt,
		UpdatedAt:         review.UpdatedAt,
	}
}

// endregion

// GetUserReviews godoc
// @Summary      List a user's reviews
// @Tags         reviews
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {array}  ReviewResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{id}/reviews [get]
func (h *Handler) GetUserReviews(c *gin.Context) {
	reviews, err := h.svc.UserReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(reviews, newReviewResponse))
}

// CreateReview godoc
// @Summary      Review a game
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id    path string      true "User ID"
// @Param        input body ReviewInput true "Review"
// @Success      201 {object} ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "User or game not found"
// @Router       /users/{id}/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var input ReviewInput
	if !h.bindJSON(c, &input) {
		return
	}

	review, err := h.svc.CreateReview(c.Request.Context(), c.Param("id"), service.ReviewInput{
		Text:              input.Text,
		IsGameRecommended: *input.IsGameRecommended,
		GameID:            input.Game,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(review))
}

// UpdateReview godoc
// @Summary      Update a review
// @Description  Changes the text and verdict of a review. Moving a review to another game is refused.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id       path string            true "User ID"
// @Param        reviewId path string            true "Review ID"
// @Param        input    body ReviewUpdateInput true "Review"
// @Success      200 {object} ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "User or review not found"
// @Failure      405 {object} ErrorResponse "Game change in a review is not allowed"
// @Router       /users/{id}/reviews/{reviewId} [put]
func (h *Handler) UpdateReview(c *gin.Context) {
	var input ReviewUpdateInput
	if !h.bindJSON(c, &input) {
		return
	}

	review, err := h.svc.UpdateReview(c.Request.Context(), c.Param("id"), c.Param("reviewId"), service.ReviewUpdate{
		Text:              input.Text,
		IsGameRecommended: *input.IsGameRecommended,
		GameID:            input.Game,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// DeleteReview godoc
// @Summary      Delete a review
// @Tags         reviews
// @Produce      json
// @Param        id       path string true "User ID"
// @Param        reviewId path string true "Review ID"
// @Success      200 {object} DeleteResponse
// @Failure      404 {object} ErrorResponse "User or review not found"
// @Router       /users/{id}/reviews/{reviewId} [delete]
func (h *Handler) DeleteReview(c *gin.Context) {
	res, err := h.svc.DeleteReview(c.Request.Context(), c.Param("id"), c.Param("reviewId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeleteResponse(res))
}
