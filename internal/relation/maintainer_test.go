package relation_test

import (
	"context"
	"testing"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/id"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/relation"
	"gamehub/backend/internal/store"
	"gamehub/backend/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(t *testing.T, s *store.Store, kind models.Kind, docID, field string) []string {
	t.Helper()
	ids, err := s.IDs(context.Background(), kind, docID, field)
	require.NoError(t, err)
	return ids
}

func newArticle(t *testing.T, s *store.Store, m *relation.Maintainer, games ...string) models.Article {
	t.Helper()
	a := models.Article{Title: "Article", Text: "text", Author: "someone", Games: games}
	require.NoError(t, s.Articles.Create(context.Background(), &a))
	for _, g := range games {
		require.NoError(t, m.Attach(context.Background(), relation.Coverage, a.ID, g))
	}
	return a
}

func newReview(t *testing.T, s *store.Store, m *relation.Maintainer, userID, gameID string) models.Review {
	t.Helper()
	r := models.Review{Text: "solid", IsGameRecommended: true, UserID: userID, GameID: gameID}
	require.NoError(t, s.Reviews.Create(context.Background(), &r))
	require.NoError(t, m.Attach(context.Background(), relation.Authorship, userID, r.ID))
	require.NoError(t, m.Attach(context.Background(), relation.Critique, gameID, r.ID))
	return r
}

func TestMaintainer_AttachDetach(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	u := testkit.User(t, s, "ann")
	g := testkit.Game(t, s, "Halo")

	t.Run("attach links both sides", func(t *testing.T) {
		require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, g.ID))
		assert.Equal(t, []string{g.ID}, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Equal(t, []string{u.ID}, refs(t, s, models.KindGame, g.ID, "users"))
	})

	t.Run("second attach is rejected without duplicating", func(t *testing.T) {
		err := m.Attach(ctx, relation.Subscriptions, u.ID, g.ID)
		assert.ErrorIs(t, err, apperr.ErrAlreadyInRelation)
		assert.Equal(t, []string{g.ID}, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Equal(t, []string{u.ID}, refs(t, s, models.KindGame, g.ID, "users"))
	})

	t.Run("detach unlinks both sides", func(t *testing.T) {
		d, err := m.Detach(ctx, relation.Subscriptions, u.ID, g.ID)
		require.NoError(t, err)
		assert.True(t, d.Linked)
		assert.Empty(t, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Empty(t, refs(t, s, models.KindGame, g.ID, "users"))
	})

	t.Run("detach tolerates absence", func(t *testing.T) {
		d, err := m.Detach(ctx, relation.Subscriptions, u.ID, g.ID)
		require.NoError(t, err)
		assert.False(t, d.Linked)

		d, err = m.Detach(ctx, relation.Subscriptions, u.ID, id.New())
		require.NoError(t, err)
		assert.True(t, d.TargetGone)
	})

	t.Run("attach to missing target is NotFound", func(t *testing.T) {
		missing := id.New()
		err := m.Attach(ctx, relation.Subscriptions, u.ID, missing)
		assert.True(t, apperr.IsNotFound(err, models.KindGame))
		assert.Empty(t, refs(t, s, models.KindUser, u.ID, "games"))
	})

	t.Run("attach completes a half-written link", func(t *testing.T) {
		require.NoError(t, s.SetIDs(ctx, models.KindUser, u.ID, "games", []string{g.ID}))
		require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, g.ID))
		assert.Equal(t, []string{g.ID}, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Equal(t, []string{u.ID}, refs(t, s, models.KindGame, g.ID, "users"))
	})
}

func TestMaintainer_RequireAll(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	g := testkit.Game(t, s, "Halo")
	first, second := id.New(), id.New()

	assert.NoError(t, m.RequireAll(context.Background(), models.KindGame, []string{g.ID}))
	assert.NoError(t, m.RequireAll(context.Background(), models.KindGame, nil))

	err := m.RequireAll(context.Background(), models.KindGame, []string{g.ID, first, second})
	var nf *apperr.NotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, models.KindGame, nf.Kind)
	assert.Equal(t, first, nf.ID)
}

func TestMaintainer_ReconcileOnUpdate(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	u := testkit.User(t, s, "ann")
	a := testkit.Game(t, s, "A")
	b := testkit.Game(t, s, "B")
	c := testkit.Game(t, s, "C")
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, a.ID))
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, b.ID))

	t.Run("applies the difference", func(t *testing.T) {
		prev := refs(t, s, models.KindUser, u.ID, "games")
		_, err := m.ReconcileOnUpdate(ctx, relation.Subscriptions, u.ID, prev, []string{b.ID, c.ID})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{b.ID, c.ID}, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Empty(t, refs(t, s, models.KindGame, a.ID, "users"))
		assert.Equal(t, []string{u.ID}, refs(t, s, models.KindGame, b.ID, "users"))
		assert.Equal(t, []string{u.ID}, refs(t, s, models.KindGame, c.ID, "users"))
	})

	t.Run("missing id writes nothing", func(t *testing.T) {
		prev := refs(t, s, models.KindUser, u.ID, "games")
		missing := id.New()
		_, err := m.ReconcileOnUpdate(ctx, relation.Subscriptions, u.ID, prev, []string{a.ID, missing})
		assert.True(t, apperr.IsNotFound(err, models.KindGame))

		assert.ElementsMatch(t, prev, refs(t, s, models.KindUser, u.ID, "games"))
		assert.Empty(t, refs(t, s, models.KindGame, a.ID, "users"))
	})

	t.Run("removing an article's last game deletes it", func(t *testing.T) {
		only := newArticle(t, s, m, a.ID)
		shared := newArticle(t, s, m, a.ID, b.ID)

		prev := refs(t, s, models.KindGame, a.ID, "articles")
		cascade, err := m.ReconcileOnUpdate(ctx, relation.Coverage.Inverse(), a.ID, prev, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{only.ID}, cascade.Deleted[models.KindArticle])

		_, err = s.Articles.FindByID(ctx, only.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Equal(t, []string{b.ID}, refs(t, s, models.KindArticle, shared.ID, "games"))
		assert.Empty(t, refs(t, s, models.KindGame, a.ID, "articles"))
	})

	t.Run("required owner cannot be emptied", func(t *testing.T) {
		art := newArticle(t, s, m, c.ID)
		_, err := m.ReconcileOnUpdate(ctx, relation.Coverage, art.ID, []string{c.ID}, nil)
		var vf *apperr.ValidationFailed
		assert.ErrorAs(t, err, &vf)
	})
}

func TestMaintainer_CascadeDeleteGame(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	u := testkit.User(t, s, "ann")
	g := testkit.Game(t, s, "Halo")
	other := testkit.Game(t, s, "Myst")
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, g.ID))
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, other.ID))

	sole := newArticle(t, s, m, g.ID)
	shared := newArticle(t, s, m, g.ID, other.ID)
	review := newReview(t, s, m, u.ID, g.ID)
	kept := newReview(t, s, m, u.ID, other.ID)

	cascade, err := m.CascadeOnDelete(ctx, models.KindGame, g.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{g.ID}, cascade.Deleted[models.KindGame])
	assert.Equal(t, []string{sole.ID}, cascade.Deleted[models.KindArticle])
	assert.Equal(t, []string{review.ID}, cascade.Deleted[models.KindReview])

	assert.Equal(t, []string{other.ID}, refs(t, s, models.KindUser, u.ID, "games"))
	assert.Equal(t, []string{kept.ID}, refs(t, s, models.KindUser, u.ID, "reviews"))
	assert.Equal(t, []string{other.ID}, refs(t, s, models.KindArticle, shared.ID, "games"))

	_, err = s.Games.FindByID(ctx, g.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Articles.FindByID(ctx, sole.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Reviews.FindByID(ctx, review.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMaintainer_CascadeDeleteUser(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	u := testkit.User(t, s, "ann")
	bob := testkit.User(t, s, "bob")
	g := testkit.Game(t, s, "Halo")
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, u.ID, g.ID))
	require.NoError(t, m.Attach(ctx, relation.Subscriptions, bob.ID, g.ID))
	review := newReview(t, s, m, u.ID, g.ID)
	bobs := newReview(t, s, m, bob.ID, g.ID)

	cascade, err := m.CascadeOnDelete(ctx, models.KindUser, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cascade.Count(models.KindReview))
	assert.Equal(t, 1, cascade.Count(models.KindUser))

	assert.Equal(t, []string{bob.ID}, refs(t, s, models.KindGame, g.ID, "users"))
	assert.Equal(t, []string{bobs.ID}, refs(t, s, models.KindGame, g.ID, "reviews"))
	_, err = s.Reviews.FindByID(ctx, review.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMaintainer_CascadeToleratesDanglingIDs(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	g := testkit.Game(t, s, "Halo")
	dangling := []string{id.New()}
	require.NoError(t, s.SetIDs(ctx, models.KindGame, g.ID, "users", dangling))
	require.NoError(t, s.SetIDs(ctx, models.KindGame, g.ID, "articles", dangling))
	require.NoError(t, s.SetIDs(ctx, models.KindGame, g.ID, "reviews", dangling))

	cascade, err := m.CascadeOnDelete(ctx, models.KindGame, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, cascade.Deleted[models.KindGame])
	assert.Zero(t, cascade.Count(models.KindArticle))
}

func TestMaintainer_CascadeMissingRoot(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)

	_, err := m.CascadeOnDelete(context.Background(), models.KindArticle, id.New())
	assert.True(t, apperr.IsNotFound(err, models.KindArticle))
}

func TestMaintainer_CascadeReviewWithoutListing(t *testing.T) {
	s := testkit.NewStore(t)
	m := relation.NewMaintainer(s)
	ctx := context.Background()

	u := testkit.User(t, s, "ann")
	g := testkit.Game(t, s, "Halo")
	// Review row written but never listed on its owners.
	r := models.Review{Text: "orphan", UserID: u.ID, GameID: g.ID}
	require.NoError(t, s.Reviews.Create(ctx, &r))

	cascade, err := m.CascadeOnDelete(ctx, models.KindGame, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, cascade.Deleted[models.KindReview])
}
