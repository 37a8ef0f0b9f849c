package handler

import (
	"net/http"
	"time"

	"gamehub/backend/internal/models"
	"gamehub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type UserInput struct {
	Name  string `json:"name" binding:"required,min=3" example:"Ann"`
	Email string `json:"email" binding:"required,email,min=8,max=32" example:"ann@x.com"`
}

// UserUpdateInput replaces a user. When games is present the subscriptions
// are replaced with it.
type UserUpdateInput struct {
	Name  string    `json:"name" binding:"required,min=3"`
	Email string    `json:"email" binding:"required,email,min=8,max=32"`
	Games *[]string `json:"games" binding:"omitempty,dive,len=24,hexadecimal"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Games     []string  `json:"games"`
	Reviews   []string  `json:"reviews"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Games:     idList(user.Games),
		Reviews:   idList(user.Reviews),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []UserResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// DeleteResponse lists every document removed by a delete, by kind.
type DeleteResponse struct {
	Deleted map[string][]string `json:"deleted"`
}

func newDeleteResponse(res service.DeleteResult) DeleteResponse {
	deleted := make(map[string][]string, len(res.Deleted))
	for kind, ids := range res.Deleted {
		deleted[string(kind)] = ids
	}
	return DeleteResponse{Deleted: deleted}
}

// idList returns ids as a non-nil slice so it encodes as [].
func idList(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// endregion

// region --- Users ---

// ListUsers godoc
// @Summary      List users
// @Description  Retrieves a paginated list of users, oldest first.
// @Tags         users
// @Produce      json
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedUserResponse
// @Failure      500 {object} ErrorResponse
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	users, total, err := h.svc.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(mapSlice(users, newUserResponse), total, page, limit))
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} UserResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetUserGames godoc
// @Summary      List a user's games
// @Description  Returns the games the user is subscribed to. Games that no longer exist are skipped.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {array}  GameResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{id}/games [get]
func (h *Handler) GetUserGames(c *gin.Context) {
	games, err := h.svc.UserGames(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(games, newGameResponse))
}

// GetUserArticles godoc
// @Summary      List articles for a user
// @Description  Returns the articles of every game the user is subscribed to, each once.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {array}  ArticleResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{id}/articles [get]
func (h *Handler) GetUserArticles(c *gin.Context) {
	articles, err := h.svc.UserArticles(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(articles, newArticleResponse))
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body UserInput true "User Info"
// @Success      201  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Email already taken"
// @Router       /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var input UserInput
	if !h.bindJSON(c, &input) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), service.UserInput{Name: input.Name, Email: input.Email})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Replaces a user's name and email. When games is given, subscriptions are replaced with it; every game must exist.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User ID"
// @Param        input body      UserUpdateInput true  "New User Info"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "User or game not found"
// @Failure      409   {object}  ErrorResponse "Email already taken"
// @Router       /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	var input UserUpdateInput
	if !h.bindJSON(c, &input) {
		return
	}

	update := service.UserUpdate{UserInput: service.UserInput{Name: input.Name, Email: input.Email}}
	if input.Games != nil {
		update.Games = idList(*input.Games)
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Deletes a user, unsubscribes it from every game and deletes its reviews.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} DeleteResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	res, err := h.svc.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeleteResponse(res))
}

// endregion

// region --- Subscriptions ---

// Subscribe godoc
// @Summary      Subscribe a user to a game
// @Tags         users
// @Produce      json
// @Param        id     path string true "User ID"
// @Param        gameId path string true "Game ID"
// @Success      200 {object} UserResponse
// @Failure      404 {object} ErrorResponse "User or game not found"
// @Failure      409 {object} ErrorResponse "User already subscribed"
// @Router       /users/{id}/subscribe/{gameId} [post]
func (h *Handler) Subscribe(c *gin.Context) {
	user, err := h.svc.Subscribe(c.Request.Context(), c.Param("id"), c.Param("gameId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Unsubscribe godoc
// @Summary      Unsubscribe a user from a game
// @Tags         users
// @Produce      json
// @Param        id     path string true "User ID"
// @Param        gameId path string true "Game ID"
// @Success      200 {object} UserResponse
// @Failure      404 {object} ErrorResponse "User or game not found"
// @Failure      409 {object} ErrorResponse "User is not subscribed"
// @Router       /users/{id}/unsubscribe/{gameId} [post]
func (h *Handler) Unsubscribe(c *gin.Context) {
	user, err := h.svc.Unsubscribe(c.Request.Context(), c.Param("id"), c.Param("gameId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// endregion
