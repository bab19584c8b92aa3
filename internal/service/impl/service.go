// Package impl is implementation of service interface.
package impl

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/service"
	"github.com/orpheus-net/orpheus/internal/storage"
)

var log = logrus.WithField("layer", "service")

type srv struct {
	s *storage.Store
}

// New creates new instance of service.
func New(s *storage.Store) service.Service {
	return srv{
		s: s,
	}
}

func (s srv) CreateUser(ctx context.Context, p service.CreateUserParams) (entities.User, error) {
	return s.s.Users.Create(ctx, entities.User{
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Email:               p.Email,
		SubscribedToUserIDs: []string{},
	}), nil
}

func (s srv) GetUsers(ctx context.Context) ([]entities.User, error) {
	return s.s.Users.FindMany(ctx, nil), nil
}

func (s srv) GetUser(ctx context.Context, id string) (entities.User, error) {
	u, ok := s.s.Users.Get(ctx, id)
	if !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", id, storage.ErrNotFound)
	}

	return u, nil
}

func (s srv) UpdateUser(ctx context.Context, id string, p entities.UserPatch) (entities.User, error) {
	if _, ok := s.s.Users.Get(ctx, id); !ok {
		return entities.User{}, fmt.Errorf("%w: user does not exist", service.ErrValidation)
	}

	u, err := s.s.Users.Change(ctx, id, p.Apply)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to change user: %w", err)
	}

	return u, nil
}

// DeleteUser removes a user and cascades: follower lists are cleaned first,
// then the user's posts and profile are deleted, then the user itself. The
// steps run sequentially and are not rolled back on a later failure, so a
// failed cascade leaves earlier mutations applied.
func (s srv) DeleteUser(ctx context.Context, id string) (entities.User, error) {
	if _, ok := s.s.Users.Get(ctx, id); !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", id, storage.ErrNotFound)
	}

	followers := s.s.Users.FindMany(ctx, storage.MemberOf(subscribedIDs, id))
	for _, f := range followers {
		if _, err := s.s.Users.Change(ctx, f.ID, func(u entities.User) entities.User {
			u.SubscribedToUserIDs = removeAll(u.SubscribedToUserIDs, id)
			return u
		}); err != nil {
			return entities.User{}, fmt.Errorf("failed to clean follow list of %q: %w", f.ID, err)
		}
	}

	posts := s.s.Posts.FindMany(ctx, storage.Equals(postUserID, id))
	if len(posts) == 0 {
		return entities.User{}, fmt.Errorf("posts of user %q: %w", id, storage.ErrNotFound)
	}
	for _, p := range posts {
		if _, err := s.s.Posts.Delete(ctx, p.ID); err != nil {
			return entities.User{}, fmt.Errorf("failed to delete post %q: %w", p.ID, err)
		}
	}

	profile, ok := s.s.Profiles.FindOne(ctx, storage.Equals(profileUserID, id))
	if !ok {
		return entities.User{}, fmt.Errorf("profile of user %q: %w", id, storage.ErrNotFound)
	}
	if _, err := s.s.Profiles.Delete(ctx, profile.ID); err != nil {
		return entities.User{}, fmt.Errorf("failed to delete profile: %w", err)
	}

	u, err := s.s.Users.Delete(ctx, id)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to delete user: %w", err)
	}

	log.WithField("user_id", id).Debug("user deleted with cascade")

	return u, nil
}

// Subscribe appends followeeID to the follower's adjacency list. There is no
// membership check, duplicate follow edges are preserved.
func (s srv) Subscribe(ctx context.Context, followerID, followeeID string) (entities.User, error) {
	if _, ok := s.s.Users.Get(ctx, followeeID); !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", followeeID, storage.ErrNotFound)
	}
	if _, ok := s.s.Users.Get(ctx, followerID); !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", followerID, storage.ErrNotFound)
	}

	u, err := s.s.Users.Change(ctx, followerID, func(u entities.User) entities.User {
		u.SubscribedToUserIDs = append(u.SubscribedToUserIDs, followeeID)
		return u
	})
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to change user: %w", err)
	}

	return u, nil
}

// Unsubscribe removes exactly one occurrence of followeeID from the
// follower's adjacency list.
func (s srv) Unsubscribe(ctx context.Context, followerID, followeeID string) (entities.User, error) {
	follower, ok := s.s.Users.Get(ctx, followerID)
	if !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", followerID, storage.ErrNotFound)
	}
	if _, ok := s.s.Users.Get(ctx, followeeID); !ok {
		return entities.User{}, fmt.Errorf("user %q: %w", followeeID, storage.ErrNotFound)
	}

	if !contains(follower.SubscribedToUserIDs, followeeID) {
		return entities.User{}, fmt.Errorf("%w: user does not have such subscribe", service.ErrValidation)
	}

	u, err := s.s.Users.Change(ctx, followerID, func(u entities.User) entities.User {
		u.SubscribedToUserIDs = removeOne(u.SubscribedToUserIDs, followeeID)
		return u
	})
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to change user: %w", err)
	}

	return u, nil
}

func (s srv) CreatePost(ctx context.Context, p service.CreatePostParams) (entities.Post, error) {
	if _, ok := s.s.Users.Get(ctx, p.UserID); !ok {
		return entities.Post{}, fmt.Errorf("%w: post owner does not exist", service.ErrValidation)
	}

	return s.s.Posts.Create(ctx, entities.Post{
		Title:   p.Title,
		Content: p.Content,
		UserID:  p.UserID,
	}), nil
}

func (s srv) GetPosts(ctx context.Context) ([]entities.Post, error) {
	return s.s.Posts.FindMany(ctx, nil), nil
}

func (s srv) GetPost(ctx context.Context, id string) (entities.Post, error) {
	p, ok := s.s.Posts.Get(ctx, id)
	if !ok {
		return entities.Post{}, fmt.Errorf("post %q: %w", id, storage.ErrNotFound)
	}

	return p, nil
}

func (s srv) UpdatePost(ctx context.Context, id string, p entities.PostPatch) (entities.Post, error) {
	if _, ok := s.s.Posts.Get(ctx, id); !ok {
		return entities.Post{}, fmt.Errorf("%w: post does not exist", service.ErrValidation)
	}

	post, err := s.s.Posts.Change(ctx, id, p.Apply)
	if err != nil {
		return entities.Post{}, fmt.Errorf("failed to change post: %w", err)
	}

	return post, nil
}

func (s srv) DeletePost(ctx context.Context, id string) (entities.Post, error) {
	p, err := s.s.Posts.Delete(ctx, id)
	if err != nil {
		return entities.Post{}, fmt.Errorf("failed to delete post: %w", err)
	}

	return p, nil
}

// CreateProfile checks the member type, the owner id syntax and the
// one-profile-per-user invariant. The check and the insert are two steps
// without a lock in between; two racing calls can both pass the uniqueness
// check. Sequential callers always see the invariant hold.
func (s srv) CreateProfile(ctx context.Context, p service.CreateProfileParams) (entities.Profile, error) {
	if _, ok := s.s.MemberTypes.Get(ctx, p.MemberTypeID); !ok {
		return entities.Profile{}, fmt.Errorf("%w: member type does not exist", service.ErrValidation)
	}

	if !service.IsUUID(p.UserID) {
		return entities.Profile{}, fmt.Errorf("%w: user id must be in uuid format", service.ErrValidation)
	}

	if _, ok := s.s.Profiles.FindOne(ctx, storage.Equals(profileUserID, p.UserID)); ok {
		return entities.Profile{}, fmt.Errorf("%w: user already has a profile", service.ErrValidation)
	}

	return s.s.Profiles.Create(ctx, entities.Profile{
		Avatar:       p.Avatar,
		Sex:          p.Sex,
		Birthday:     p.Birthday,
		Country:      p.Country,
		Street:       p.Street,
		City:         p.City,
		MemberTypeID: p.MemberTypeID,
		UserID:       p.UserID,
	}), nil
}

func (s srv) GetProfiles(ctx context.Context) ([]entities.Profile, error) {
	return s.s.Profiles.FindMany(ctx, nil), nil
}

func (s srv) GetProfile(ctx context.Context, id string) (entities.Profile, error) {
	p, ok := s.s.Profiles.Get(ctx, id)
	if !ok {
		return entities.Profile{}, fmt.Errorf("profile %q: %w", id, storage.ErrNotFound)
	}

	return p, nil
}

func (s srv) UpdateProfile(ctx context.Context, id string, p entities.ProfilePatch) (entities.Profile, error) {
	if !service.IsUUID(id) {
		return entities.Profile{}, fmt.Errorf("%w: id must be in uuid format", service.ErrValidation)
	}

	if _, ok := s.s.Profiles.Get(ctx, id); !ok {
		return entities.Profile{}, fmt.Errorf("%w: profile does not exist", service.ErrValidation)
	}

	profile, err := s.s.Profiles.Change(ctx, id, p.Apply)
	if err != nil {
		return entities.Profile{}, fmt.Errorf("failed to change profile: %w", err)
	}

	return profile, nil
}

func (s srv) DeleteProfile(ctx context.Context, id string) (entities.Profile, error) {
	p, err := s.s.Profiles.Delete(ctx, id)
	if err != nil {
		return entities.Profile{}, fmt.Errorf("failed to delete profile: %w", err)
	}

	return p, nil
}

func (s srv) GetMemberTypes(ctx context.Context) ([]entities.MemberType, error) {
	return s.s.MemberTypes.FindMany(ctx, nil), nil
}

func (s srv) GetMemberType(ctx context.Context, id string) (entities.MemberType, error) {
	m, ok := s.s.MemberTypes.Get(ctx, id)
	if !ok {
		return entities.MemberType{}, fmt.Errorf("member type %q: %w", id, storage.ErrNotFound)
	}

	return m, nil
}

func (s srv) UpdateMemberType(ctx context.Context, id string, p entities.MemberTypePatch) (entities.MemberType, error) {
	if _, ok := s.s.MemberTypes.Get(ctx, id); !ok {
		return entities.MemberType{}, fmt.Errorf("%w: member type does not exist", service.ErrValidation)
	}

	m, err := s.s.MemberTypes.Change(ctx, id, p.Apply)
	if err != nil {
		return entities.MemberType{}, fmt.Errorf("failed to change member type: %w", err)
	}

	return m, nil
}

func subscribedIDs(u entities.User) []string { return u.SubscribedToUserIDs }

func postUserID(p entities.Post) string { return p.UserID }

func profileUserID(p entities.Profile) string { return p.UserID }

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func removeOne(s []string, v string) []string {
	for i, e := range s {
		if e == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeAll(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
