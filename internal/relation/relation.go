// Package relation keeps the mirrored id arrays of related entities
// consistent.
//
// A Relation describes which id-array field on each side of an association
// mirrors the other. The Maintainer applies attach, detach, reconcile and
// cascade-delete against a store, normally one bound to a transaction.
// The helpers in ids.go are the pure set operations those routines are
// built from.
package relation

import "gamehub/backend/internal/models"

// Relation describes an association maintained through id arrays.
type Relation struct {
	Name string

	Owner      models.Kind
	OwnerField string

	Target models.Kind
	// TargetField is empty when the target holds a fixed scalar
	// back-reference instead of an array.
	TargetField string

	// Required names the side whose documents must keep at least one
	// reference; a document on that side left with none is deleted.
	Required models.Kind
}

var (
	// Subscriptions links User.games and Game.users.
	Subscriptions = Relation{
		Name:        "subscription",
		Owner:       models.KindUser,
		OwnerField:  "games",
		Target:      models.KindGame,
		TargetField: "users",
	}

	// Coverage links Article.games and Game.articles.
	Coverage = Relation{
		Name:        "coverage",
		Owner:       models.KindArticle,
		OwnerField:  "games",
		Target:      models.KindGame,
		TargetField: "articles",
		Required:    models.KindArticle,
	}

	// Authorship lists a user's reviews; Review.UserID is the back-reference.
	Authorship = Relation{
		Name:       "authorship",
		Owner:      models.KindUser,
		OwnerField: "reviews",
		Target:     models.KindReview,
	}

	// Critique lists a game's reviews; Review.GameID is the back-reference.
	Critique = Relation{
		Name:       "critique",
		Owner:      models.KindGame,
		OwnerField: "reviews",
		Target:     models.KindReview,
	}
)

// TwoSided reports whether both ends carry an id array.
func (r Relation) TwoSided() bool { return r.TargetField != "" }

// Inverse swaps owner and target. It is only meaningful for two-sided
// relations; one-sided relations are returned unchanged.
func (r Relation) Inverse() Relation {
	if !r.TwoSided() {
		return r
	}
	return Relation{
		Name:        r.Name,
		Owner:       r.Target,
		OwnerField:  r.TargetField,
		Target:      r.Owner,
		TargetField: r.OwnerField,
		Required:    r.Required,
	}
}
