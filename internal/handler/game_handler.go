package handler

import (
	"net/http"
	"time"

	"gamehub/backend/internal/models"
	"gamehub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type GameInput struct {
	Title       string `json:"title" binding:"required,min=3" example:"Halo"`
	Description string `json:"description" binding:"required,min=3" example:"fps"`
}

// GameUpdateInput replaces a game. users and articles, when present,
// replace that relation wholesale.
type GameUpdateInput struct {
	Title       string    `json:"title" binding:"required,min=3"`
	Description string    `json:"description" binding:"required,min=3"`
	Users       *[]string `json:"users" binding:"omitempty,dive,len=24,hexadecimal"`
	Articles    *[]string `json:"articles" binding:"omitempty,dive,len=24,hexadecimal"`
}

type GameResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Articles    []string  `json:"articles"`
	Users       []string  `json:"users"`
	Reviews     []string  `json:"reviews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newGameResponse(game models.Game) GameResponse {
	return GameResponse{
		ID:          game.ID,
		Title:       game.Title,
		Description: game.Description,
		Articles:    idList(game.Articles),
		Users:       idList(game.Users),
		Reviews:     idList(game.Reviews),
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
	}
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// GameUpdateResponse is the updated game plus any articles deleted because
// the game was their last.
type GameUpdateResponse struct {
	GameResponse
	Deleted map[string][]string `json:"deleted"`
}

// endregion

// region --- Game Handlers ---

// ListGames godoc
// @Summary      List games
// @Description  Retrieves a paginated list of games, oldest first.
// @Tags         games
// @Produce      json
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedGameResponse
// @Failure      500 {object} ErrorResponse
// @Router       /games [get]
func (h *Handler) ListGames(c *gin.Context) {
	page, limit := pageParams(c)
	games, total, err := h.svc.ListGames(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(mapSlice(games, newGameResponse), total, page, limit))
}

// GetGame godoc
// @Summary      Get a game
// @Tags         games
// @Produce      json
// @Param        id path string true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func (h *Handler) GetGame(c *gin.Context) {
	game, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameResponse(game))
}

// GetGameArticles godoc
// @Summary      List a game's articles
// @Tags         games
// @Produce      json
// @Param        id path string true "Game ID"
// @Success      200 {array}  ArticleResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/articles [get]
func (h *Handler) GetGameArticles(c *gin.Context) {
	articles, err := h.svc.GameArticles(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(articles, newArticleResponse))
}

// GetGameReviews godoc
// @Summary      List a game's reviews
// @Tags         games
// @Produce      json
// @Param        id path string true "Game ID"
// @Success      200 {array}  ReviewResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/reviews [get]
func (h *Handler) GetGameReviews(c *gin.Context) {
	reviews, err := h.svc.GameReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(reviews, newReviewResponse))
}

// GetGameUsers godoc
// @Summary      List a game's subscribers
// @Tags         games
// @Produce      json
// @Param        id path string true "Game ID"
// @Success      200 {array}  UserResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/users [get]
func (h *Handler) GetGameUsers(c *gin.Context) {
	users, err := h.svc.GameUsers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(users, newUserResponse))
}

// CreateGame godoc
// @Summary      Create a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /games [post]
func (h *Handler) CreateGame(c *gin.Context) {
	var input GameInput
	if !h.bindJSON(c, &input) {
		return
	}

	game, err := h.svc.CreateGame(c.Request.Context(), service.GameInput{Title: input.Title, Description: input.Description})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGameResponse(game))
}

// ImportRandomGame godoc
// @Summary      Import a random game
// @Description  Fetches a random game released in 2021 from GiantBomb and stores it.
// @Tags         games
// @Produce      json
// @Success      201 {object} GameResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "GiantBomb API key not configured"
// @Router       /games/add-rand [post]
func (h *Handler) ImportRandomGame(c *gin.Context) {
	game, err := h.svc.ImportRandomGame(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Replaces a game's details. users and articles, when given, replace that relation; every id must exist. Articles left without a game are deleted.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Game ID"
// @Param        input body      GameUpdateInput true  "New Game Info"
// @Success      200   {object}  GameUpdateResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Game, user or article not found"
// @Router       /games/{id} [put]
func (h *Handler) UpdateGame(c *gin.Context) {
	var input GameUpdateInput
	if !h.bindJSON(c, &input) {
		return
	}

	update := service.GameUpdate{GameInput: service.GameInput{Title: input.Title, Description: input.Description}}
	if input.Users != nil {
		update.Users = idList(*input.Users)
	}
	if input.Articles != nil {
		update.Articles = idList(*input.Articles)
	}

	game, res, err := h.svc.UpdateGame(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GameUpdateResponse{
		GameResponse: newGameResponse(game),
		Deleted:      newDeleteResponse(res).Deleted,
	})
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes a game and its reviews, unsubscribes its users and deletes articles that covered only this game.
// @Tags         games
// @Produce      json
// @Param        id path string true "Game ID"
// @Success      200 {object} DeleteResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [delete]
func (h *Handler) DeleteGame(c *gin.Context) {
	res, err := h.svc.DeleteGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeleteResponse(res))
}

// endregion
