// Package service implements the API operations on top of the store and
// the relation maintainer.
//
// Every mutating operation runs in one store transaction and publishes a
// change event once it has committed.
package service

import (
	"context"
	"errors"
	"log/slog"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/giantbomb"
	"gamehub/backend/internal/hub"
	"gamehub/backend/internal/metrics"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
)

// ErrImportUnavailable is returned by ImportRandomGame when no game source
// is configured.
var ErrImportUnavailable = errors.New("game import is not configured")

// Publisher receives change events.
type Publisher interface {
	Broadcast(topic string, event hub.Event)
}

// GameSource supplies games for random import.
type GameSource interface {
	Configured() bool
	RandomGame(ctx context.Context) (giantbomb.Game, error)
}

// Service exposes one method per API operation.
type Service struct {
	store  *store.Store
	events Publisher
	source GameSource
	logger *slog.Logger
}

// New creates a Service. source may be nil, which disables game import.
func New(s *store.Store, events Publisher, source GameSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, events: events, source: source, logger: logger}
}

// DeleteResult summarises a delete and everything it cascaded to.
type DeleteResult struct {
	Deleted map[models.Kind][]string `json:"deleted"`
}

func newDeleteResult(c relation.Cascade) DeleteResult {
	deleted := c.Deleted
	if deleted == nil {
		deleted = map[models.Kind][]string{}
	}
	return DeleteResult{Deleted: deleted}
}

// mutate runs fn in a transaction with a maintainer bound to it.
func (s *Service) mutate(ctx context.Context, fn func(tx *store.Store, m *relation.Maintainer) error) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		return fn(tx, relation.NewMaintainer(tx))
	})
}

func (s *Service) publish(kind models.Kind, action string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(string(kind), hub.Event{Type: string(kind) + "." + action, Payload: payload})
}

func idPayload(id string) map[string]string {
	return map[string]string{"id": id}
}

func (s *Service) recordCascade(c relation.Cascade) {
	counts := make(map[string]int, len(c.Deleted))
	for kind, ids := range c.Deleted {
		counts[string(kind)] = len(ids)
	}
	metrics.RecordCascade(counts)
	if len(counts) > 0 {
		s.logger.Debug("cascade delete", "deleted", counts)
	}
}

// notFound converts a store miss into the API's NotFound error.
func notFound(err error, kind models.Kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NewNotFound(kind, id)
	}
	return err
}
