package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/service"
	"github.com/orpheus-net/orpheus/internal/storage"
)

func newTestService() (service.Service, *storage.Store) {
	s := storage.NewStore()
	return New(s), s
}

func createUser(t *testing.T, s service.Service, firstName string) entities.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), service.CreateUserParams{
		FirstName: firstName,
		LastName:  "tester",
		Email:     firstName + "@example.com",
	})
	require.NoError(t, err)

	return u
}

func TestSrv_CreateUser(t *testing.T) {
	s, _ := newTestService()

	u, err := s.CreateUser(context.Background(), service.CreateUserParams{
		FirstName: "john",
		LastName:  "doe",
		Email:     "john@example.com",
	})
	require.NoError(t, err)

	assert.True(t, service.IsUUID(u.ID))
	assert.Equal(t, "john", u.FirstName)
	assert.Equal(t, "doe", u.LastName)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, []string{}, u.SubscribedToUserIDs)
}

func TestSrv_UpdateUser(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	u := createUser(t, s, "john")

	email := "new@example.com"
	upd, err := s.UpdateUser(ctx, u.ID, entities.UserPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", upd.Email)
	assert.Equal(t, "john", upd.FirstName)

	_, err = s.UpdateUser(ctx, storage.NewUUID(), entities.UserPatch{Email: &email})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSrv_Subscribe(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	follower := createUser(t, s, "follower")
	followee := createUser(t, s, "followee")

	u, err := s.Subscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{followee.ID}, u.SubscribedToUserIDs)

	// a second subscribe adds a second edge
	u, err = s.Subscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{followee.ID, followee.ID}, u.SubscribedToUserIDs)

	_, err = s.Subscribe(ctx, follower.ID, storage.NewUUID())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Subscribe(ctx, storage.NewUUID(), followee.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSrv_Unsubscribe(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	follower := createUser(t, s, "follower")
	followee := createUser(t, s, "followee")

	_, err := s.Subscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	_, err = s.Subscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)

	u, err := s.Unsubscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{followee.ID}, u.SubscribedToUserIDs, "unsubscribe must remove a single edge")

	u, err = s.Unsubscribe(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, u.SubscribedToUserIDs)

	_, err = s.Unsubscribe(ctx, follower.ID, followee.ID)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = s.Unsubscribe(ctx, follower.ID, storage.NewUUID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSrv_CreatePost(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	u := createUser(t, s, "author")

	p, err := s.CreatePost(ctx, service.CreatePostParams{Title: "t", Content: "c", UserID: u.ID})
	require.NoError(t, err)
	assert.True(t, service.IsUUID(p.ID))
	assert.Equal(t, u.ID, p.UserID)

	_, err = s.CreatePost(ctx, service.CreatePostParams{Title: "t", Content: "c", UserID: storage.NewUUID()})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSrv_CreateProfile(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	u := createUser(t, s, "owner")

	tt := []struct {
		name   string
		params service.CreateProfileParams
		err    error
	}{
		{
			name: "valid",
			params: service.CreateProfileParams{
				Avatar: "a", Sex: "f", Birthday: 1, Country: "NL", Street: "s", City: "c",
				MemberTypeID: "basic", UserID: u.ID,
			},
		},
		{
			name: "duplicate profile",
			params: service.CreateProfileParams{
				MemberTypeID: "basic", UserID: u.ID,
			},
			err: service.ErrValidation,
		},
		{
			name: "unknown member type",
			params: service.CreateProfileParams{
				MemberTypeID: "gold", UserID: storage.NewUUID(),
			},
			err: service.ErrValidation,
		},
		{
			name: "malformed user id",
			params: service.CreateProfileParams{
				MemberTypeID: "basic", UserID: "not-a-uuid",
			},
			err: service.ErrValidation,
		},
		{
			// the owner is never looked up, only its id syntax is checked
			name: "nonexistent owner with valid id",
			params: service.CreateProfileParams{
				MemberTypeID: "business", UserID: storage.NewUUID(),
			},
		},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			p, err := s.CreateProfile(ctx, tc.params)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, service.IsUUID(p.ID))
			assert.Equal(t, tc.params.MemberTypeID, p.MemberTypeID)
		})
	}
}

func TestSrv_UpdateProfile(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	u := createUser(t, s, "owner")
	p, err := s.CreateProfile(ctx, service.CreateProfileParams{MemberTypeID: "basic", UserID: u.ID})
	require.NoError(t, err)

	city := "amsterdam"
	upd, err := s.UpdateProfile(ctx, p.ID, entities.ProfilePatch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "amsterdam", upd.City)
	assert.Equal(t, "basic", upd.MemberTypeID)

	_, err = s.UpdateProfile(ctx, "not-a-uuid", entities.ProfilePatch{City: &city})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = s.UpdateProfile(ctx, storage.NewUUID(), entities.ProfilePatch{City: &city})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSrv_UpdateMemberType(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	discount := 10
	m, err := s.UpdateMemberType(ctx, "basic", entities.MemberTypePatch{Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, 10, m.Discount)
	assert.Equal(t, 20, m.MonthPostsLimit)

	_, err = s.UpdateMemberType(ctx, "gold", entities.MemberTypePatch{Discount: &discount})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSrv_DeleteUser(t *testing.T) {
	s, st := newTestService()
	ctx := context.Background()

	victim := createUser(t, s, "victim")
	follower := createUser(t, s, "follower")

	_, err := s.Subscribe(ctx, follower.ID, victim.ID)
	require.NoError(t, err)
	_, err = s.Subscribe(ctx, follower.ID, victim.ID)
	require.NoError(t, err)

	post, err := s.CreatePost(ctx, service.CreatePostParams{Title: "t", UserID: victim.ID})
	require.NoError(t, err)

	profile, err := s.CreateProfile(ctx, service.CreateProfileParams{MemberTypeID: "basic", UserID: victim.ID})
	require.NoError(t, err)

	deleted, err := s.DeleteUser(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, victim.ID, deleted.ID)

	_, ok := st.Users.Get(ctx, victim.ID)
	assert.False(t, ok)
	_, ok = st.Posts.Get(ctx, post.ID)
	assert.False(t, ok)
	_, ok = st.Profiles.Get(ctx, profile.ID)
	assert.False(t, ok)

	f, ok := st.Users.Get(ctx, follower.ID)
	require.True(t, ok)
	assert.Equal(t, []string{}, f.SubscribedToUserIDs, "every edge to the deleted user must be removed")
}

func TestSrv_DeleteUser_notFound(t *testing.T) {
	s, _ := newTestService()

	_, err := s.DeleteUser(context.Background(), storage.NewUUID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSrv_DeleteUser_withoutPosts(t *testing.T) {
	s, st := newTestService()
	ctx := context.Background()

	victim := createUser(t, s, "victim")
	follower := createUser(t, s, "follower")

	_, err := s.Subscribe(ctx, follower.ID, victim.ID)
	require.NoError(t, err)

	_, err = s.DeleteUser(ctx, victim.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// the cascade has no rollback, the follower cleanup already happened
	f, ok := st.Users.Get(ctx, follower.ID)
	require.True(t, ok)
	assert.Equal(t, []string{}, f.SubscribedToUserIDs)

	_, ok = st.Users.Get(ctx, victim.ID)
	assert.True(t, ok, "the user itself must survive a failed cascade")
}

func TestSrv_DeleteUser_withoutProfile(t *testing.T) {
	s, st := newTestService()
	ctx := context.Background()

	victim := createUser(t, s, "victim")

	post, err := s.CreatePost(ctx, service.CreatePostParams{Title: "t", UserID: victim.ID})
	require.NoError(t, err)

	_, err = s.DeleteUser(ctx, victim.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, ok := st.Posts.Get(ctx, post.ID)
	assert.False(t, ok, "posts are already deleted when the profile step fails")

	_, ok = st.Users.Get(ctx, victim.ID)
	assert.True(t, ok)
}

// TestSrv_lifecycle walks through a typical session: two users, a profile,
// a rejected duplicate profile, a follow edge and a cascading delete.
func TestSrv_lifecycle(t *testing.T) {
	s, st := newTestService()
	ctx := context.Background()

	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	_, err := s.CreateProfile(ctx, service.CreateProfileParams{MemberTypeID: "basic", UserID: u1.ID})
	require.NoError(t, err)

	_, err = s.CreateProfile(ctx, service.CreateProfileParams{MemberTypeID: "business", UserID: u1.ID})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = s.Subscribe(ctx, u1.ID, u2.ID)
	require.NoError(t, err)

	got, err := s.GetUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{u2.ID}, got.SubscribedToUserIDs)

	// u2 needs a post and a profile for the cascade to run through
	_, err = s.CreatePost(ctx, service.CreatePostParams{Title: "t", UserID: u2.ID})
	require.NoError(t, err)
	_, err = s.CreateProfile(ctx, service.CreateProfileParams{MemberTypeID: "basic", UserID: u2.ID})
	require.NoError(t, err)

	_, err = s.DeleteUser(ctx, u2.ID)
	require.NoError(t, err)

	got, err = s.GetUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.SubscribedToUserIDs)

	_, err = s.GetUser(ctx, u2.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Len(t, st.Profiles.FindMany(ctx, nil), 1)
}
