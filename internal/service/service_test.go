package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gamehub/backend/internal/apperr"
	"gamehub/backend/internal/giantbomb"
	"gamehub/backend/internal/hub"
	"gamehub/backend/internal/id"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/service"
	"gamehub/backend/internal/store"
	"gamehub/backend/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []hub.Event
}

func (r *recorder) Broadcast(_ string, ev hub.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeSource struct {
	game giantbomb.Game
	err  error
	key  bool
}

func (f fakeSource) Configured() bool { return f.key }

func (f fakeSource) RandomGame(context.Context) (giantbomb.Game, error) { return f.game, f.err }

func newService(t *testing.T) (*service.Service, *store.Store, *recorder) {
	t.Helper()
	s := testkit.NewStore(t)
	rec := &recorder{}
	return service.New(s, rec, nil, nil), s, rec
}

func gameIDs(games []models.Game) []string {
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestService_HaloScenario(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	g1, err := svc.CreateGame(ctx, service.GameInput{Title: "Halo", Description: "fps"})
	require.NoError(t, err)
	u1, err := svc.CreateUser(ctx, service.UserInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = svc.Subscribe(ctx, u1.ID, g1.ID)
	require.NoError(t, err)

	games, err := svc.UserGames(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g1.ID}, gameIDs(games))

	_, err = svc.DeleteGame(ctx, g1.ID)
	require.NoError(t, err)

	games, err = svc.UserGames(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, games)

	user, err := svc.GetUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Games)

	assert.Equal(t, []string{"game.created", "user.created", "user.subscribed", "game.deleted"}, rec.types())
}

func TestService_SoleGameArticleIsDeleted(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	g1, err := svc.CreateGame(ctx, service.GameInput{Title: "Halo", Description: "fps"})
	require.NoError(t, err)
	a, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "A", Text: "t", Author: "x", Games: []string{g1.ID}})
	require.NoError(t, err)

	res, err := svc.DeleteGame(ctx, g1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, res.Deleted[models.KindArticle])

	_, err = svc.GetArticle(ctx, a.ID)
	assert.True(t, apperr.IsNotFound(err, models.KindArticle))
}

func TestService_SubscribeSymmetry(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	u := testkit.User(t, s, "ann")
	g := testkit.Game(t, s, "Halo")

	user, err := svc.Subscribe(ctx, u.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, []string(user.Games))

	_, err = svc.Subscribe(ctx, u.ID, g.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyInRelation)

	subscribers, err := svc.GameUsers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, u.ID, subscribers[0].ID)

	user, err = svc.Unsubscribe(ctx, u.ID, g.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Games)

	_, err = svc.Unsubscribe(ctx, u.ID, g.ID)
	assert.ErrorIs(t, err, apperr.ErrNotInRelation)

	_, err = svc.Subscribe(ctx, u.ID, id.New())
	assert.True(t, apperr.IsNotFound(err, models.KindGame))
	_, err = svc.Unsubscribe(ctx, id.New(), g.ID)
	assert.True(t, apperr.IsNotFound(err, models.KindUser))
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, service.UserInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, service.UserInput{Name: "Another", Email: "ann@x.com"})

	var conflict *apperr.Conflict
	assert.ErrorAs(t, err, &conflict)
}

func TestService_UpdateUser_ReconcilesGames(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	u := testkit.User(t, s, "ann")
	g1 := testkit.Game(t, s, "one")
	g2 := testkit.Game(t, s, "two")
	_, err := svc.Subscribe(ctx, u.ID, g1.ID)
	require.NoError(t, err)

	t.Run("scalar update keeps subscriptions", func(t *testing.T) {
		user, err := svc.UpdateUser(ctx, u.ID, service.UserUpdate{UserInput: service.UserInput{Name: "Annie", Email: u.Email}})
		require.NoError(t, err)
		assert.Equal(t, "Annie", user.Name)
		assert.Equal(t, []string{g1.ID}, []string(user.Games))
	})

	t.Run("games replace subscriptions", func(t *testing.T) {
		user, err := svc.UpdateUser(ctx, u.ID, service.UserUpdate{
			UserInput: service.UserInput{Name: "Annie", Email: u.Email},
			Games:     []string{g2.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{g2.ID}, []string(user.Games))

		users, err := svc.GameUsers(ctx, g1.ID)
		require.NoError(t, err)
		assert.Empty(t, users)
		users, err = svc.GameUsers(ctx, g2.ID)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("unknown game changes nothing", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, u.ID, service.UserUpdate{
			UserInput: service.UserInput{Name: "Renamed", Email: u.Email},
			Games:     []string{g1.ID, id.New()},
		})
		assert.True(t, apperr.IsNotFound(err, models.KindGame))

		user, err := svc.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Annie", user.Name)
		assert.Equal(t, []string{g2.ID}, []string(user.Games))
	})

	t.Run("taken email", func(t *testing.T) {
		other := testkit.User(t, s, "bob")
		_, err := svc.UpdateUser(ctx, u.ID, service.UserUpdate{UserInput: service.UserInput{Name: "Annie", Email: other.Email}})
		assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	})
}

func TestService_DeleteUser(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	u := testkit.User(t, s, "ann")
	g := testkit.Game(t, s, "Halo")
	_, err := svc.Subscribe(ctx, u.ID, g.ID)
	require.NoError(t, err)
	r, err := svc.CreateReview(ctx, u.ID, service.ReviewInput{Text: "great", IsGameRecommended: true, GameID: g.ID})
	require.NoError(t, err)

	res, err := svc.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, res.Deleted[models.KindUser])
	assert.Equal(t, []string{r.ID}, res.Deleted[models.KindReview])

	game, err := svc.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, game.Users)
	assert.Empty(t, game.Reviews)

	_, err = svc.DeleteUser(ctx, u.ID)
	assert.True(t, apperr.IsNotFound(err, models.KindUser))
}

func TestService_Reviews(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	ann := testkit.User(t, s, "ann")
	bob := testkit.User(t, s, "bob")
	g := testkit.Game(t, s, "Halo")
	other := testkit.Game(t, s, "Doom")

	r, err := svc.CreateReview(ctx, ann.ID, service.ReviewInput{Text: "great", IsGameRecommended: true, GameID: g.ID})
	require.NoError(t, err)

	reviews, err := svc.UserReviews(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	reviews, err = svc.GameReviews(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	t.Run("update verdict", func(t *testing.T) {
		updated, err := svc.UpdateReview(ctx, ann.ID, r.ID, service.ReviewUpdate{Text: "meh", GameID: g.ID})
		require.NoError(t, err)
		assert.Equal(t, "meh", updated.Text)
		assert.False(t, updated.IsGameRecommended)
	})

	t.Run("game change is refused", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, ann.ID, r.ID, service.ReviewUpdate{Text: "meh", GameID: other.ID})
		var notAllowed *apperr.OperationNotAllowed
		require.ErrorAs(t, err, &notAllowed)
		assert.Equal(t, apperr.MsgReviewGameChangeNotAllowed, notAllowed.Reason)
	})

	t.Run("another user's review reads as missing", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, bob.ID, r.ID, service.ReviewUpdate{Text: "mine"})
		assert.True(t, apperr.IsNotFound(err, models.KindReview))
		_, err = svc.DeleteReview(ctx, bob.ID, r.ID)
		assert.True(t, apperr.IsNotFound(err, models.KindReview))
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := svc.CreateReview(ctx, ann.ID, service.ReviewInput{Text: "text", GameID: id.New()})
		assert.True(t, apperr.IsNotFound(err, models.KindGame))
	})

	t.Run("delete unlinks both owners", func(t *testing.T) {
		_, err := svc.DeleteReview(ctx, ann.ID, r.ID)
		require.NoError(t, err)

		user, err := svc.GetUser(ctx, ann.ID)
		require.NoError(t, err)
		assert.Empty(t, user.Reviews)
		game, err := svc.GetGame(ctx, g.ID)
		require.NoError(t, err)
		assert.Empty(t, game.Reviews)
	})
}

func TestService_CreateArticle(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	g := testkit.Game(t, s, "Halo")

	t.Run("unknown game creates nothing", func(t *testing.T) {
		_, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "A", Text: "t", Author: "x", Games: []string{g.ID, id.New()}})
		assert.True(t, apperr.IsNotFound(err, models.KindGame))

		articles, total, err := svc.ListArticles(ctx, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, articles)
		assert.Zero(t, total)

		game, err := svc.GetGame(ctx, g.ID)
		require.NoError(t, err)
		assert.Empty(t, game.Articles)
	})

	t.Run("no games", func(t *testing.T) {
		_, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "A", Text: "t", Author: "x"})
		var invalid *apperr.ValidationFailed
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("links every game", func(t *testing.T) {
		a, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "A", Text: "t", Author: "x", Games: []string{g.ID, g.ID}})
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID}, []string(a.Games))

		articles, err := svc.GameArticles(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, a.ID, articles[0].ID)

		games, err := svc.ArticleGames(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID}, gameIDs(games))
	})
}

func TestService_UpdateArticle(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	g := testkit.Game(t, s, "Halo")
	a, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "A", Text: "t", Author: "x", Games: []string{g.ID}})
	require.NoError(t, err)

	updated, err := svc.UpdateArticle(ctx, a.ID, service.ArticleUpdate{Title: "New", Text: "body", Author: "me"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, []string{g.ID}, []string(updated.Games))

	_, err = svc.UpdateArticle(ctx, a.ID, service.ArticleUpdate{Title: "New", Text: "body", Author: "me", Games: []string{g.ID}})
	var notAllowed *apperr.OperationNotAllowed
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, apperr.MsgArticleGamesChangeNotAllowed, notAllowed.Reason)

	_, err = svc.UpdateArticle(ctx, id.New(), service.ArticleUpdate{Title: "New", Text: "body", Author: "me"})
	assert.True(t, apperr.IsNotFound(err, models.KindArticle))
}

func TestService_UserArticles(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	u := testkit.User(t, s, "ann")
	g1 := testkit.Game(t, s, "one")
	g2 := testkit.Game(t, s, "two")
	for _, g := range []models.Game{g1, g2} {
		_, err := svc.Subscribe(ctx, u.ID, g.ID)
		require.NoError(t, err)
	}
	shared, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "Both", Text: "t", Author: "x", Games: []string{g1.ID, g2.ID}})
	require.NoError(t, err)
	only, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "Two", Text: "t", Author: "x", Games: []string{g2.ID}})
	require.NoError(t, err)

	articles, err := svc.UserArticles(ctx, u.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{shared.ID, only.ID}, ids)
}

func TestService_UpdateGame(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	u1 := testkit.User(t, s, "ann")
	u2 := testkit.User(t, s, "bob")
	g := testkit.Game(t, s, "Halo")
	other := testkit.Game(t, s, "Doom")

	sole, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "Sole", Text: "t", Author: "x", Games: []string{g.ID}})
	require.NoError(t, err)
	shared, err := svc.CreateArticle(ctx, service.ArticleInput{Title: "Shared", Text: "t", Author: "x", Games: []string{g.ID, other.ID}})
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, u1.ID, g.ID)
	require.NoError(t, err)

	t.Run("unknown ids write nothing", func(t *testing.T) {
		_, _, err := svc.UpdateGame(ctx, g.ID, service.GameUpdate{
			GameInput: service.GameInput{Title: "Renamed", Description: "fps"},
			Users:     []string{u2.ID},
			Articles:  []string{id.New()},
		})
		assert.True(t, apperr.IsNotFound(err, models.KindArticle))

		game, err := svc.GetGame(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "Halo", game.Title)
		assert.Equal(t, []string{u1.ID}, []string(game.Users))
	})

	t.Run("reconciles users and articles", func(t *testing.T) {
		game, res, err := svc.UpdateGame(ctx, g.ID, service.GameUpdate{
			GameInput: service.GameInput{Title: "Halo 2", Description: "fps"},
			Users:     []string{u2.ID},
			Articles:  []string{},
		})
		require.NoError(t, err)
		assert.Equal(t, "Halo 2", game.Title)
		assert.Equal(t, []string{u2.ID}, []string(game.Users))
		assert.Empty(t, game.Articles)
		assert.Equal(t, []string{sole.ID}, res.Deleted[models.KindArticle])

		_, err = svc.GetArticle(ctx, sole.ID)
		assert.True(t, apperr.IsNotFound(err, models.KindArticle))

		kept, err := svc.GetArticle(ctx, shared.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{other.ID}, []string(kept.Games))

		user, err := svc.GetUser(ctx, u1.ID)
		require.NoError(t, err)
		assert.Empty(t, user.Games)
	})
}

func TestService_ListGames_Pages(t *testing.T) {
	svc, s, _ := newService(t)
	for _, title := range []string{"one", "two", "three"} {
		testkit.Game(t, s, title)
	}

	games, total, err := svc.ListGames(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, games, 1)
	assert.Equal(t, "three", games[0].Title)
}

func TestService_ImportRandomGame(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := service.New(testkit.NewStore(t), nil, fakeSource{}, nil)
		_, err := svc.ImportRandomGame(context.Background())
		assert.ErrorIs(t, err, service.ErrImportUnavailable)
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		svc := service.New(testkit.NewStore(t), nil, fakeSource{key: true, err: boom}, nil)
		_, err := svc.ImportRandomGame(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("stores the game", func(t *testing.T) {
		s := testkit.NewStore(t)
		svc := service.New(s, nil, fakeSource{key: true, game: giantbomb.Game{Name: "Returnal", Deck: "roguelike"}}, nil)
		game, err := svc.ImportRandomGame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Returnal", game.Title)
		assert.Equal(t, "roguelike", game.Description)

		stored, err := svc.GetGame(context.Background(), game.ID)
		require.NoError(t, err)
		assert.Equal(t, game.ID, stored.ID)
	})
}
