package handler

import (
	"net/http"
	"time"

	"gamehub/backend/internal/models"
	"gamehub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type ArticleInput struct {
	Title  string   `json:"title" binding:"required,min=3"`
	Text   string   `json:"text" binding:"required,min=3"`
	Author string   `json:"author" binding:"required,min=3"`
	Games  []string `json:"games" binding:"required,min=1,dive,len=24,hexadecimal"`
}

// ArticleUpdateInput replaces an article's text fields. Sending games is
// refused with 405.
type ArticleUpdateInput struct {
	Title  string    `json:"title" binding:"required,min=3"`
	Text   string    `json:"text" binding:"required,min=3"`
	Author string    `json:"author" binding:"required,min=3"`
	Games  *[]string `json:"games"`
}

type ArticleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Games     []string  `json:"games"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newArticleResponse(article models.Article) ArticleResponse {
	return ArticleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Text:      article.Text,
		Author:    article.Author,
		Games:     idList(article.Games),
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

// PaginatedArticleResponse defines the structure for a paginated list of articles.
type PaginatedArticleResponse struct {
	Data []ArticleResponse `json:"data"`
	Meta PaginationMeta    `json:"meta"`
}

// endregion

// region --- Article Handlers ---

// ListArticles godoc
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedArticleResponse
// @Failure      500 {object} ErrorResponse
// @Router       /articles [get]
func (h *Handler) ListArticles(c *gin.Context) {
	page, limit := pageParams(c)
	articles, total, err := h.svc.ListArticles(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(mapSlice(articles, newArticleResponse), total, page, limit))
}

// GetArticle godoc
// @Summary      Get an article
// @Tags         articles
// @Produce      json
// @Param        id path string true "Article ID"
// @Success      200 {object} ArticleResponse
// @Failure      404 {object} ErrorResponse "Article not found"
// @Router       /articles/{id} [get]
func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.svc.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newArticleResponse(article))
}

// GetArticleGames godoc
// @Summary      List an article's games
// @Tags         articles
// @Produce      json
// @Param        id path string true "Article ID"
// @Success      200 {array}  GameResponse
// @Failure      404 {object} ErrorResponse "Article not found"
// @Router       /articles/{id}/games [get]
func (h *Handler) GetArticleGames(c *gin.Context) {
	games, err := h.svc.ArticleGames(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(games, newGameResponse))
}

// CreateArticle godoc
// @Summary      Create an article
// @Description  Creates an article covering the given games. Every game must exist.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        input body ArticleInput true "Article"
// @Success      201  {object}  ArticleResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /articles [post]
func (h *Handler) CreateArticle(c *gin.Context) {
	var input ArticleInput
	if !h.bindJSON(c, &input) {
		return
	}

	article, err := h.svc.CreateArticle(c.Request.Context(), service.ArticleInput{
		Title:  input.Title,
		Text:   input.Text,
		Author: input.Author,
		Games:  input.Games,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newArticleResponse(article))
}

// UpdateArticle godoc
// @Summary      Update an article
// @Description  Replaces an article's title, text and author. An article's games cannot be changed.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Article ID"
// @Param        input body      ArticleUpdateInput true  "Article"
// @Success      200   {object}  ArticleResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Article not found"
// @Failure      405   {object}  ErrorResponse "Games change in an article is not allowed"
// @Router       /articles/{id} [put]
func (h *Handler) UpdateArticle(c *gin.Context) {
	var input ArticleUpdateInput
	if !h.bindJSON(c, &input) {
		return
	}

	update := service.ArticleUpdate{Title: input.Title, Text: input.Text, Author: input.Author}
	if input.Games != nil {
		update.Games = idList(*input.Games)
	}

	article, err := h.svc.UpdateArticle(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newArticleResponse(article))
}

// DeleteArticle godoc
// @Summary      Delete an article
// @Tags         articles
// @Produce      json
// @Param        id path string true "Article ID"
// @Success      200 {object} DeleteResponse
// @Failure      404 {object} ErrorResponse "Article not found"
// @Router       /articles/{id} [delete]
func (h *Handler) DeleteArticle(c *gin.Context) {
	res, err := h.svc.DeleteArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeleteResponse(res))
}

// endregion
