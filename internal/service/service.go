// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orpheus-net/orpheus/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrValidation is returned when an operation violates a business constraint:
// a malformed identifier, a dangling foreign key or a duplicated profile.
var ErrValidation = errors.New("validation failed")

// CreateUserParams ...
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
}

// CreatePostParams ...
type CreatePostParams struct {
	Title   string
	Content string
	UserID  string
}

// CreateProfileParams ...
type CreateProfileParams struct {
	Avatar       string
	Sex          string
	Birthday     int64
	Country      string
	Street       string
	City         string
	MemberTypeID string
	UserID       string
}

// Service owns every mutating use case over the store and enforces
// cross-entity invariants before and after store calls. Multi-step checks
// are best-effort, non-atomic sequences: there is no transaction boundary
// and no rollback of partially applied cascades.
type Service interface {
	CreateUser(ctx context.Context, p CreateUserParams) (entities.User, error)
	GetUsers(ctx context.Context) ([]entities.User, error)
	GetUser(ctx context.Context, id string) (entities.User, error)
	UpdateUser(ctx context.Context, id string, p entities.UserPatch) (entities.User, error)
	DeleteUser(ctx context.Context, id string) (entities.User, error)

	Subscribe(ctx context.Context, followerID, followeeID string) (entities.User, error)
	Unsubscribe(ctx context.Context, followerID, followeeID string) (entities.User, error)

	CreatePost(ctx context.Context, p CreatePostParams) (entities.Post, error)
	GetPosts(ctx context.Context) ([]entities.Post, error)
	GetPost(ctx context.Context, id string) (entities.Post, error)
	UpdatePost(ctx context.Context, id string, p entities.PostPatch) (entities.Post, error)
	DeletePost(ctx context.Context, id string) (entities.Post, error)

	CreateProfile(ctx context.Context, p CreateProfileParams) (entities.Profile, error)
	GetProfiles(ctx context.Context) ([]entities.Profile, error)
	GetProfile(ctx context.Context, id string) (entities.Profile, error)
	UpdateProfile(ctx context.Context, id string, p entities.ProfilePatch) (entities.Profile, error)
	DeleteProfile(ctx context.Context, id string) (entities.Profile, error)

	GetMemberTypes(ctx context.Context) ([]entities.MemberType, error)
	GetMemberType(ctx context.Context, id string) (entities.MemberType, error)
	UpdateMemberType(ctx context.Context, id string, p entities.MemberTypePatch) (entities.MemberType, error)
}

// IsUUID reports whether s is a hyphenated 8-4-4-4-12 UUID. Uppercase hex
// is accepted deliberately, matching the case-insensitive checks of the
// resource API's clients.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
