package handler

import (
	"io"
	"net/http"

	"gamehub/backend/internal/hub"
	"gamehub/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// eventBuffer is how many events a slow stream may lag before dropping.
const eventBuffer = 16

var eventTopics = map[string]bool{
	hub.TopicAll:               true,
	string(models.KindUser):    true,
	string(models.KindGame):    true,
	string(models.KindArticle): true,
	string(models.KindReview):  true,
}

// Events godoc
// @Summary      Stream change events
// @Description  Streams committed changes as Server-Sent Events. A ready event is sent once the stream is subscribed.
// @Tags         events
// @Produce      text/event-stream
// @Param        topic query string false "user, game, article, review or * for all" default(*)
// @Success      200 {string} string "event stream"
// @Failure      400 {object} ErrorResponse
// @Router       /events [get]
func (h *Handler) Events(c *gin.Context) {
	topic := c.DefaultQuery("topic", hub.TopicAll)
	if !eventTopics[topic] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown topic", Field: "topic"})
		return
	}

	client := make(hub.Client, eventBuffer)
	h.hub.Subscribe(topic, client)
	defer h.hub.Unsubscribe(topic, client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", topic)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		}
	})
}
