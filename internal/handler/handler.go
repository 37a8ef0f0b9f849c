// Package handler exposes the service over HTTP with gin.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"unicode"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/hub"
	"gamehub/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler holds the dependencies shared by every route.
type Handler struct {
	svc    *service.Service
	hub    *hub.Hub
	logger *slog.Logger
}

// New creates a Handler.
func New(svc *service.Service, h *hub.Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, hub: h, logger: logger}
}

// Register mounts every API route on r.
func (h *Handler) Register(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.GET("/:id/games", h.GetUserGames)
		users.GET("/:id/articles", h.GetUserArticles)
		users.GET("/:id/reviews", h.GetUserReviews)
		users.POST("/:id/reviews", h.CreateReview)
		users.PUT("/:id/reviews/:reviewId", h.UpdateReview)
		users.DELETE("/:id/reviews/:reviewId", h.DeleteReview)
		users.POST("/:id/subscribe/:gameId", h.Subscribe)
		users.POST("/:id/unsubscribe/:gameId", h.Unsubscribe)
	}

	games := r.Group("/games")
	{
		games.GET("", h.ListGames)
		games.POST("", h.CreateGame)
		games.POST("/add-rand", h.ImportRandomGame)
		games.GET("/:id", h.GetGame)
		games.PUT("/:id", h.UpdateGame)
		games.DELETE("/:id", h.DeleteGame)
		games.GET("/:id/articles", h.GetGameArticles)
		games.GET("/:id/reviews", h.GetGameReviews)
		games.GET("/:id/users", h.GetGameUsers)
	}

	articles := r.Group("/articles")
	{
		articles.GET("", h.ListArticles)
		articles.POST("", h.CreateArticle)
		articles.GET("/:id", h.GetArticle)
		articles.PUT("/:id", h.UpdateArticle)
		articles.DELETE("/:id", h.DeleteArticle)
		articles.GET("/:id/games", h.GetArticleGames)
	}

	r.GET("/events", h.Events)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"A user with specified id is not found"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field,omitempty"`
}

const msgInternal = "Internal server error"

// respondError writes the status and body matching err.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		notFound   *apperr.NotFound
		invalid    *apperr.ValidationFailed
		notAllowed *apperr.OperationNotAllowed
		conflict   *apperr.Conflict
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: apperr.NotFoundMessage(notFound.Kind), ID: notFound.ID})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalid.Reason, Field: invalid.Field})
	case errors.As(err, &notAllowed):
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: notAllowed.Reason})
	case errors.Is(err, apperr.ErrAlreadyInRelation):
		c.JSON(http.StatusConflict, ErrorResponse{Error: apperr.MsgUserSubscribed})
	case errors.Is(err, apperr.ErrNotInRelation):
		c.JSON(http.StatusConflict, ErrorResponse{Error: apperr.MsgUserNotSubscribed})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflict.Reason})
	case errors.Is(err, service.ErrImportUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Game import is not configured"})
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}

// bindJSON decodes and validates the body into dst. On failure it writes a
// 400 response and returns false.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := jsonName(fe.Field())
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(field, fe), Field: field})
		return false
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	return false
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "len", "hexadecimal":
		return fmt.Sprintf("%q must be a 24 character hex id", field)
	}
	return fmt.Sprintf("%q is invalid", field)
}

// jsonName maps a struct field name to its camelCase JSON key. Dive errors
// arrive as Games[0] and keep their index.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
