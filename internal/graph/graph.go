// Package graph lazily resolves nested relationship fields of entities
// against the store.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/storage"
)

// MaxDepth is the maximum allowed nesting of relationship traversal in a
// single query. It is validated against the whole request shape before any
// resolution begins.
const MaxDepth = 6

// ErrDepthExceeded ...
var ErrDepthExceeded = errors.New("query depth exceeded")

// Field is one node of a request's field-selection tree. The tree arrives
// already syntactically parsed.
type Field struct {
	Name   string
	Fields []Field
}

// Depth returns the relationship-nesting depth of a selection. A field
// without children selects a scalar and does not add depth.
func Depth(sel []Field) int {
	max := 0
	for _, f := range sel {
		if len(f.Fields) == 0 {
			continue
		}
		if d := 1 + Depth(f.Fields); d > max {
			max = d
		}
	}
	return max
}

// Validate rejects a selection nested beyond MaxDepth. It must be called
// before resolution so that an over-deep request performs no store access.
func Validate(sel []Field) error {
	if d := Depth(sel); d > MaxDepth {
		return fmt.Errorf("%w: depth %d is over the limit of %d", ErrDepthExceeded, d, MaxDepth)
	}
	return nil
}

// Resolver computes nested fields that are not stored on a record but
// derived via relationship lookups. Sibling fields never share lookup
// results, so traversing the same relation through several paths performs
// redundant lookups. There is no cycle detection; MaxDepth is the only
// safeguard.
type Resolver struct {
	s *storage.Store
}

// NewResolver ...
func NewResolver(s *storage.Store) *Resolver {
	return &Resolver{s: s}
}

// User materializes the requested fields of a user. Unknown field names are
// skipped; the caller is expected to have validated the request shape.
func (r *Resolver) User(ctx context.Context, u entities.User, sel []Field) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(sel))

	for _, f := range sel {
		switch f.Name {
		case "id":
			out["id"] = u.ID
		case "firstName":
			out["firstName"] = u.FirstName
		case "lastName":
			out["lastName"] = u.LastName
		case "email":
			out["email"] = u.Email
		case "subscribedToUserIds":
			out["subscribedToUserIds"] = append([]string{}, u.SubscribedToUserIDs...)
		case "profile":
			p, ok := r.s.Profiles.FindOne(ctx, storage.Equals(profileUserID, u.ID))
			if !ok {
				out["profile"] = nil
				continue
			}
			out["profile"] = r.Profile(p, f.Fields)
		case "posts":
			posts := r.s.Posts.FindMany(ctx, storage.Equals(postUserID, u.ID))
			list := make([]interface{}, len(posts))
			for i, p := range posts {
				list[i] = r.Post(p, f.Fields)
			}
			out["posts"] = list
		case "memberType":
			p, ok := r.s.Profiles.FindOne(ctx, storage.Equals(profileUserID, u.ID))
			if !ok {
				out["memberType"] = nil
				continue
			}
			m, ok := r.s.MemberTypes.Get(ctx, p.MemberTypeID)
			if !ok {
				out["memberType"] = nil
				continue
			}
			out["memberType"] = r.MemberType(m, f.Fields)
		case "userSubscribedTo":
			// Followers: users whose adjacency list contains this user.
			followers := r.s.Users.FindMany(ctx, storage.MemberOf(subscribedIDs, u.ID))
			list := make([]interface{}, 0, len(followers))
			for _, fu := range followers {
				v, err := r.User(ctx, fu, f.Fields)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			out["userSubscribedTo"] = list
		case "subscribedToUser":
			// Followees: one lookup per stored edge, duplicates included.
			list := make([]interface{}, 0, len(u.SubscribedToUserIDs))
			for _, id := range u.SubscribedToUserIDs {
				fu, ok := r.s.Users.Get(ctx, id)
				if !ok {
					list = append(list, nil)
					continue
				}
				v, err := r.User(ctx, fu, f.Fields)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			out["subscribedToUser"] = list
		}
	}

	return out, nil
}

// Post materializes the requested scalar fields of a post.
func (r *Resolver) Post(p entities.Post, sel []Field) map[string]interface{} {
	out := make(map[string]interface{}, len(sel))
	for _, f := range sel {
		switch f.Name {
		case "id":
			out["id"] = p.ID
		case "title":
			out["title"] = p.Title
		case "content":
			out["content"] = p.Content
		case "userId":
			out["userId"] = p.UserID
		}
	}
	return out
}

// Profile materializes the requested scalar fields of a profile.
func (r *Resolver) Profile(p entities.Profile, sel []Field) map[string]interface{} {
	out := make(map[string]interface{}, len(sel))
	for _, f := range sel {
		switch f.Name {
		case "id":
			out["id"] = p.ID
		case "avatar":
			out["avatar"] = p.Avatar
		case "sex":
			out["sex"] = p.Sex
		case "birthday":
			out["birthday"] = p.Birthday
		case "country":
			out["country"] = p.Country
		case "street":
			out["street"] = p.Street
		case "city":
			out["city"] = p.City
		case "memberTypeId":
			out["memberTypeId"] = p.MemberTypeID
		case "userId":
			out["userId"] = p.UserID
		}
	}
	return out
}

// MemberType materializes the requested scalar fields of a member type.
func (r *Resolver) MemberType(m entities.MemberType, sel []Field) map[string]interface{} {
	out := make(map[string]interface{}, len(sel))
	for _, f := range sel {
		switch f.Name {
		case "id":
			out["id"] = m.ID
		case "discount":
			out["discount"] = m.Discount
		case "monthPostsLimit":
			out["monthPostsLimit"] = m.MonthPostsLimit
		}
	}
	return out
}

func subscribedIDs(u entities.User) []string { return u.SubscribedToUserIDs }

func postUserID(p entities.Post) string { return p.UserID }

func profileUserID(p entities.Profile) string { return p.UserID }
