package relation

import (
	"context"
	"errors"
	"fmt"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/store"
)

// Maintainer applies relation changes to a store. Each method performs
// several independent writes; callers wanting atomicity pass a store bound
// to a transaction.
type Maintainer struct {
	store *store.Store
}

// NewMaintainer creates a Maintainer writing through s.
func NewMaintainer(s *store.Store) *Maintainer {
	return &Maintainer{store: s}
}

// Detached describes the outcome of a Detach.
type Detached struct {
	// Linked is true when either side still referenced the other.
	Linked bool

	OwnerRemaining  []string
	TargetRemaining []string

	// OwnerGone and TargetGone mark sides whose document no longer exists.
	OwnerGone  bool
	TargetGone bool
}

// Cascade lists every document removed by a delete, keyed by kind. The
// root of the delete is included.
type Cascade struct {
	Deleted map[models.Kind][]string
}

func (c *Cascade) add(kind models.Kind, id string) {
	if c.Deleted == nil {
		c.Deleted = make(map[models.Kind][]string)
	}
	c.Deleted[kind] = append(c.Deleted[kind], id)
}

func (c *Cascade) merge(other Cascade) {
	for kind, ids := range other.Deleted {
		for _, id := range ids {
			c.add(kind, id)
		}
	}
}

// Count returns the number of deleted documents of kind.
func (c Cascade) Count(kind models.Kind) int { return len(c.Deleted[kind]) }

// RequireAll checks that every id exists for kind. It fails with NotFound
// for the first missing id, in the order given.
func (m *Maintainer) RequireAll(ctx context.Context, kind models.Kind, ids []string) error {
	found, err := m.store.ExistingIDs(ctx, kind, ids)
	if err != nil {
		return fmt.Errorf("check %s ids: %w", kind, err)
	}
	for _, id := range ids {
		if !found[id] {
			return apperr.NewNotFound(kind, id)
		}
	}
	return nil
}

// Attach links ownerID and targetID on both sides of rel. It returns
// ErrAlreadyInRelation when the pair is already linked on every side.
// A half-linked pair is completed.
func (m *Maintainer) Attach(ctx context.Context, rel Relation, ownerID, targetID string) error {
	ownerRefs, err := m.refs(ctx, rel.Owner, ownerID, rel.OwnerField)
	if err != nil {
		return err
	}

	var targetRefs []string
	targetLinked := true
	if rel.TwoSided() {
		targetRefs, err = m.refs(ctx, rel.Target, targetID, rel.TargetField)
		if err != nil {
			return err
		}
		targetLinked = Contains(targetRefs, ownerID)
	} else if err := m.RequireAll(ctx, rel.Target, []string{targetID}); err != nil {
		return err
	}

	ownerLinked := Contains(ownerRefs, targetID)
	if ownerLinked && targetLinked {
		return apperr.ErrAlreadyInRelation
	}

	if !ownerLinked {
		next, _ := Add(ownerRefs, targetID)
		if err := m.store.SetIDs(ctx, rel.Owner, ownerID, rel.OwnerField, next); err != nil {
			return fmt.Errorf("attach %s to %s %s: %w", rel.Name, rel.Owner, ownerID, err)
		}
	}
	if !targetLinked {
		next, _ := Add(targetRefs, ownerID)
		if err := m.store.SetIDs(ctx, rel.Target, targetID, rel.TargetField, next); err != nil {
			return fmt.Errorf("attach %s to %s %s: %w", rel.Name, rel.Target, targetID, err)
		}
	}
	return nil
}

// Detach unlinks ownerID and targetID on both sides of rel. A side whose
// document is missing is treated as already unlinked.
func (m *Maintainer) Detach(ctx context.Context, rel Relation, ownerID, targetID string) (Detached, error) {
	var d Detached

	remaining, removed, gone, err := m.unlink(ctx, rel.Owner, ownerID, rel.OwnerField, targetID)
	if err != nil {
		return d, err
	}
	d.OwnerRemaining, d.OwnerGone = remaining, gone
	d.Linked = removed

	if rel.TwoSided() {
		remaining, removed, gone, err = m.unlink(ctx, rel.Target, targetID, rel.TargetField, ownerID)
		if err != nil {
			return d, err
		}
		d.TargetRemaining, d.TargetGone = remaining, gone
		d.Linked = d.Linked || removed
	}
	return d, nil
}

// ReconcileOnUpdate replaces the owner's targets prev with next. Every id
// in next must exist; the first missing one fails the whole call before
// anything is written. Removed targets are detached, added ones attached,
// and targets left without a required reference are deleted.
func (m *Maintainer) ReconcileOnUpdate(ctx context.Context, rel Relation, ownerID string, prev, next []string) (Cascade, error) {
	var cascade Cascade

	next = Dedupe(next)
	if rel.Required == rel.Owner && len(next) == 0 {
		return cascade, &apperr.ValidationFailed{Field: rel.OwnerField, Reason: "must reference at least one " + string(rel.Target)}
	}
	if err := m.RequireAll(ctx, rel.Target, next); err != nil {
		return cascade, err
	}

	added, removed := Diff(prev, next)

	for _, targetID := range removed {
		d, err := m.Detach(ctx, rel, ownerID, targetID)
		if err != nil {
			return cascade, err
		}
		if rel.Required == rel.Target && !d.TargetGone && len(d.TargetRemaining) == 0 {
			c, err := m.CascadeOnDelete(ctx, rel.Target, targetID)
			if err != nil {
				return cascade, err
			}
			cascade.merge(c)
		}
	}

	for _, targetID := range added {
		err := m.Attach(ctx, rel, ownerID, targetID)
		if err != nil && !errors.Is(err, apperr.ErrAlreadyInRelation) {
			return cascade, err
		}
	}
	return cascade, nil
}

// CascadeOnDelete removes a document after unlinking it from every
// counterpart. Reviews lose their owner with it and are deleted; articles
// left with no game are deleted.
func (m *Maintainer) CascadeOnDelete(ctx context.Context, kind models.Kind, id string) (Cascade, error) {
	switch kind {
	case models.KindUser:
		return m.deleteUser(ctx, id)
	case models.KindGame:
		return m.deleteGame(ctx, id)
	case models.KindArticle:
		return m.deleteArticle(ctx, id)
	case models.KindReview:
		return m.deleteReview(ctx, id)
	}
	return Cascade{}, fmt.Errorf("unknown kind %q", kind)
}

func (m *Maintainer) deleteUser(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade

	user, err := m.store.Users.FindByID(ctx, id)
	if err != nil {
		return cascade, m.notFound(err, models.KindUser, id)
	}

	for _, gameID := range user.Games {
		if _, _, _, err := m.unlink(ctx, models.KindGame, gameID, Subscriptions.TargetField, id); err != nil {
			return cascade, err
		}
	}

	reviewIDs, err := m.reviewsOf(ctx, "user_id", id, user.Reviews)
	if err != nil {
		return cascade, err
	}
	for _, reviewID := range reviewIDs {
		c, err := m.deleteReview(ctx, reviewID)
		if err != nil && !apperr.IsNotFound(err, models.KindReview) {
			return cascade, err
		}
		cascade.merge(c)
	}

	if err := m.store.Users.Delete(ctx, id); err != nil {
		return cascade, m.notFound(err, models.KindUser, id)
	}
	cascade.add(models.KindUser, id)
	return cascade, nil
}

func (m *Maintainer) deleteGame(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade

	game, err := m.store.Games.FindByID(ctx, id)
	if err != nil {
		return cascade, m.notFound(err, models.KindGame, id)
	}

	for _, userID := range game.Users {
		if _, _, _, err := m.unlink(ctx, models.KindUser, userID, Subscriptions.OwnerField, id); err != nil {
			return cascade, err
		}
	}

	for _, articleID := range game.Articles {
		remaining, _, gone, err := m.unlink(ctx, models.KindArticle, articleID, Coverage.OwnerField, id)
		if err != nil {
			return cascade, err
		}
		if gone || len(remaining) > 0 {
			continue
		}
		c, err := m.deleteArticle(ctx, articleID)
		if err != nil {
			return cascade, err
		}
		cascade.merge(c)
	}

	reviewIDs, err := m.reviewsOf(ctx, "game_id", id, game.Reviews)
	if err != nil {
		return cascade, err
	}
	for _, reviewID := range reviewIDs {
		c, err := m.deleteReview(ctx, reviewID)
		if err != nil && !apperr.IsNotFound(err, models.KindReview) {
			return cascade, err
		}
		cascade.merge(c)
	}

	if err := m.store.Games.Delete(ctx, id); err != nil {
		return cascade, m.notFound(err, models.KindGame, id)
	}
	cascade.add(models.KindGame, id)
	return cascade, nil
}

func (m *Maintainer) deleteArticle(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade

	article, err := m.store.Articles.FindByID(ctx, id)
	if err != nil {
		return cascade, m.notFound(err, models.KindArticle, id)
	}

	for _, gameID := range article.Games {
		if _, _, _, err := m.unlink(ctx, models.KindGame, gameID, Coverage.TargetField, id); err != nil {
			return cascade, err
		}
	}

	if err := m.store.Articles.Delete(ctx, id); err != nil {
		return cascade, m.notFound(err, models.KindArticle, id)
	}
	cascade.add(models.KindArticle, id)
	return cascade, nil
}

func (m *Maintainer) deleteReview(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade

	review, err := m.store.Reviews.FindByID(ctx, id)
	if err != nil {
		return cascade, m.notFound(err, models.KindReview, id)
	}

	if _, _, _, err := m.unlink(ctx, models.KindUser, review.UserID, Authorship.OwnerField, id); err != nil {
		return cascade, err
	}
	if _, _, _, err := m.unlink(ctx, models.KindGame, review.GameID, Critique.OwnerField, id); err != nil {
		return cascade, err
	}

	if err := m.store.Reviews.Delete(ctx, id); err != nil {
		return cascade, m.notFound(err, models.KindReview, id)
	}
	cascade.add(models.KindReview, id)
	return cascade, nil
}

// reviewsOf merges the review ids listed on an owner with those whose
// back-reference points at it, so half-written links are still cleaned up.
func (m *Maintainer) reviewsOf(ctx context.Context, column, ownerID string, listed []string) ([]string, error) {
	reviews, err := m.store.Reviews.Find(ctx, column+" = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("find reviews by %s: %w", column, err)
	}
	ids := append([]string{}, listed...)
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	return Dedupe(ids), nil
}

// unlink removes drop from one id-array field. A missing document is
// reported as gone rather than as an error.
func (m *Maintainer) unlink(ctx context.Context, kind models.Kind, id, field, drop string) (remaining []string, removed, gone bool, err error) {
	refs, err := m.store.IDs(ctx, kind, id, field)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, true, nil
	}
	if err != nil {
		return nil, false, false, fmt.Errorf("read %s %s %s: %w", kind, id, field, err)
	}

	next, removed := Remove(refs, drop)
	if !removed {
		return refs, false, false, nil
	}
	if err := m.store.SetIDs(ctx, kind, id, field, next); err != nil {
		return nil, false, false, fmt.Errorf("write %s %s %s: %w", kind, id, field, err)
	}
	return next, true, false, nil
}

func (m *Maintainer) refs(ctx context.Context, kind models.Kind, id, field string) ([]string, error) {
	refs, err := m.store.IDs(ctx, kind, id, field)
	if err != nil {
		return nil, m.notFound(err, kind, id)
	}
	return refs, nil
}

func (m *Maintainer) notFound(err error, kind models.Kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NewNotFound(kind, id)
	}
	return err
}
