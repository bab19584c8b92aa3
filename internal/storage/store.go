package storage

import (
	"context"

	"github.com/orpheus-net/orpheus/internal/entities"
)

// Store bundles one collection per entity kind. It is constructed explicitly
// and passed by handle to every component, so tests can run on isolated
// stores.
type Store struct {
	Users       *Collection[entities.User]
	Posts       *Collection[entities.Post]
	Profiles    *Collection[entities.Profile]
	MemberTypes *Collection[entities.MemberType]
}

// NewStore creates a store with the pre-seeded member types.
func NewStore() *Store {
	s := &Store{
		Users: NewCollection(CollectionConfig[entities.User]{
			ID:    func(u entities.User) string { return u.ID },
			SetID: func(u entities.User, id string) entities.User { u.ID = id; return u },
			NewID: NewUUID,
			Clone: entities.User.Clone,
		}),
		Posts: NewCollection(CollectionConfig[entities.Post]{
			ID:    func(p entities.Post) string { return p.ID },
			SetID: func(p entities.Post, id string) entities.Post { p.ID = id; return p },
			NewID: NewUUID,
		}),
		Profiles: NewCollection(CollectionConfig[entities.Profile]{
			ID:    func(p entities.Profile) string { return p.ID },
			SetID: func(p entities.Profile, id string) entities.Profile { p.ID = id; return p },
			NewID: NewUUID,
		}),
		// Member types keep their fixed literal identifiers.
		MemberTypes: NewCollection(CollectionConfig[entities.MemberType]{
			ID:    func(m entities.MemberType) string { return m.ID },
			SetID: func(m entities.MemberType, id string) entities.MemberType { m.ID = id; return m },
		}),
	}

	ctx := context.Background()
	s.MemberTypes.Create(ctx, entities.MemberType{ID: "basic", Discount: 0, MonthPostsLimit: 20})
	s.MemberTypes.Create(ctx, entities.MemberType{ID: "business", Discount: 5, MonthPostsLimit: 100})

	return s
}
