// Package entities contains main entities of service.
package entities

// User ...
type User struct {
	ID                  string
	FirstName           string
	LastName            string
	Email               string
	SubscribedToUserIDs []string
}

// Clone returns a deep copy of the user. An empty adjacency list stays
// empty, it never degrades to nil.
func (u User) Clone() User {
	out := u
	if u.SubscribedToUserIDs != nil {
		out.SubscribedToUserIDs = append([]string{}, u.SubscribedToUserIDs...)
	}
	return out
}

// Post ...
type Post struct {
	ID      string
	Title   string
	Content string
	UserID  string
}

// Clone ...
func (p Post) Clone() Post { return p }

// Profile ...
type Profile struct {
	ID           string
	Avatar       string
	Sex          string
	Birthday     int64
	Country      string
	Street       string
	City         string
	MemberTypeID string
	UserID       string
}

// Clone ...
func (p Profile) Clone() Profile { return p }

// MemberType is a pre-seeded membership tier. Its ID is a short fixed
// literal, not a UUID.
type MemberType struct {
	ID              string
	Discount        int
	MonthPostsLimit int
}

// Clone ...
func (m MemberType) Clone() MemberType { return m }

// UserPatch is a partial update of a user. Nil fields are left untouched.
type UserPatch struct {
	FirstName           *string
	LastName            *string
	Email               *string
	SubscribedToUserIDs *[]string
}

// Apply merges the patch into u field by field.
func (p UserPatch) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.SubscribedToUserIDs != nil {
		u.SubscribedToUserIDs = append([]string{}, *p.SubscribedToUserIDs...)
	}
	return u
}

// PostPatch is a partial update of a post.
type PostPatch struct {
	Title   *string
	Content *string
	UserID  *string
}

// Apply ...
func (p PostPatch) Apply(post Post) Post {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.UserID != nil {
		post.UserID = *p.UserID
	}
	return post
}

// ProfilePatch is a partial update of a profile.
type ProfilePatch struct {
	Avatar       *string
	Sex          *string
	Birthday     *int64
	Country      *string
	Street       *string
	City         *string
	MemberTypeID *string
	UserID       *string
}

// Apply ...
func (p ProfilePatch) Apply(profile Profile) Profile {
	if p.Avatar != nil {
		profile.Avatar = *p.Avatar
	}
	if p.Sex != nil {
		profile.Sex = *p.Sex
	}
	if p.Birthday != nil {
		profile.Birthday = *p.Birthday
	}
	if p.Country != nil {
		profile.Country = *p.Country
	}
	if p.Street != nil {
		profile.Street = *p.Street
	}
	if p.City != nil {
		profile.City = *p.City
	}
	if p.MemberTypeID != nil {
		profile.MemberTypeID = *p.MemberTypeID
	}
	if p.UserID != nil {
		profile.UserID = *p.UserID
	}
	return profile
}

// MemberTypePatch is a partial update of a member type.
type MemberTypePatch struct {
	Discount        *int
	MonthPostsLimit *int
}

// Apply ...
func (p MemberTypePatch) Apply(m MemberType) MemberType {
	if p.Discount != nil {
		m.Discount = *p.Discount
	}
	if p.MonthPostsLimit != nil {
		m.MonthPostsLimit = *p.MonthPostsLimit
	}
	return m
}
