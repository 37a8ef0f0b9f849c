// Package apperr defines the error kinds surfaced to API callers.
//
// Services return these (possibly wrapped); the HTTP layer maps them to
// status codes with errors.As / errors.Is. Anything else is treated as an
// internal failure.
package apperr

import (
	"errors"
	"fmt"

	"gamehub/backend/internal/models"
)

// Constant messages returned to clients.
const (
	MsgUserNotFound    = "A user with specified id is not found"
	MsgGameNotFound    = "A game with specified id is not found"
	MsgArticleNotFound = "An article with specified id is not found"
	MsgReviewNotFound  = "A review with specified id is not found"

	MsgUserSubscribed    = "User already subscribed!"
	MsgUserNotSubscribed = "User is not subscribed!"

	MsgReviewGameChangeNotAllowed   = "Game change in a review is not allowed!"
	MsgArticleGamesChangeNotAllowed = "Games change in an article is not allowed!"

	MsgEmailTaken = "A user with this email already exists"
)

var (
	// ErrAlreadyInRelation is returned when attaching a pair that is already linked.
	ErrAlreadyInRelation = errors.New("already in relation")
	// ErrNotInRelation is returned when detaching a pair that was never linked.
	ErrNotInRelation = errors.New("not in relation")
	// ErrEmailTaken is returned when a user email collides with an existing one.
	ErrEmailTaken = &Conflict{Reason: MsgEmailTaken}
)

// NotFound reports a missing entity.
type NotFound struct {
	Kind models.Kind
	ID   string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s: %s", NotFoundMessage(e.Kind), e.ID)
}

// NotFoundMessage returns the constant client message for a missing kind.
func NotFoundMessage(kind models.Kind) string {
	switch kind {
	case models.KindUser:
		return MsgUserNotFound
	case models.KindGame:
		return MsgGameNotFound
	case models.KindArticle:
		return MsgArticleNotFound
	case models.KindReview:
		return MsgReviewNotFound
	default:
		return "Entity with specified id is not found"
	}
}

// ValidationFailed reports a malformed input field.
type ValidationFailed struct {
	Field  string
	Reason string
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// OperationNotAllowed reports a mutation the API refuses, such as changing
// an immutable relation through a plain update.
type OperationNotAllowed struct {
	Reason string
}

func (e *OperationNotAllowed) Error() string { return e.Reason }

// Conflict reports a write rejected by a uniqueness rule.
type Conflict struct {
	Reason string
}

func (e *Conflict) Error() string { return e.Reason }

// NewNotFound is shorthand for &NotFound{Kind: kind, ID: id}.
func NewNotFound(kind models.Kind, id string) error {
	return &NotFound{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFound of the given kind.
// An empty kind matches any NotFound.
func IsNotFound(err error, kind models.Kind) bool {
	var nf *NotFound
	if !errors.As(err, &nf) {
		return false
	}
	return kind == "" || nf.Kind == kind
}
