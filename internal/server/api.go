package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/graph"
	"github.com/orpheus-net/orpheus/internal/service"
	"github.com/orpheus-net/orpheus/internal/storage"
)

var validate = validator.New()

// Error ...
type Error struct {
	Error string `json:"error"`
}

// User ...
type User struct {
	ID                  string   `json:"id"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Email               string   `json:"email"`
	SubscribedToUserIDs []string `json:"subscribedToUserIds"`
}

// Post ...
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

// Profile ...
type Profile struct {
	ID           string `json:"id"`
	Avatar       string `json:"avatar"`
	Sex          string `json:"sex"`
	Birthday     int64  `json:"birthday"`
	Country      string `json:"country"`
	Street       string `json:"street"`
	City         string `json:"city"`
	MemberTypeID string `json:"memberTypeId"`
	UserID       string `json:"userId"`
}

// MemberType ...
type MemberType struct {
	ID              string `json:"id"`
	Discount        int    `json:"discount"`
	MonthPostsLimit int    `json:"monthPostsLimit"`
}

// CreateUserRequest ...
type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
}

// UpdateUserRequest ...
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// SubscribeRequest carries the follower whose adjacency list changes.
type SubscribeRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// CreatePostRequest ...
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	UserID  string `json:"userId" validate:"required,uuid"`
}

// UpdatePostRequest ...
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	UserID  *string `json:"userId" validate:"omitempty,uuid"`
}

// CreateProfileRequest ...
type CreateProfileRequest struct {
	Avatar       string `json:"avatar" validate:"required"`
	Sex          string `json:"sex" validate:"required"`
	Birthday     int64  `json:"birthday" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Street       string `json:"street" validate:"required"`
	City         string `json:"city" validate:"required"`
	MemberTypeID string `json:"memberTypeId" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
}

// UpdateProfileRequest ...
type UpdateProfileRequest struct {
	Avatar       *string `json:"avatar"`
	Sex          *string `json:"sex"`
	Birthday     *int64  `json:"birthday"`
	Country      *string `json:"country"`
	Street       *string `json:"street"`
	City         *string `json:"city"`
	MemberTypeID *string `json:"memberTypeId"`
	UserID       *string `json:"userId"`
}

// UpdateMemberTypeRequest ...
type UpdateMemberTypeRequest struct {
	Discount        *int `json:"discount"`
	MonthPostsLimit *int `json:"monthPostsLimit"`
}

func toAPIUser(u entities.User) User {
	ids := u.SubscribedToUserIDs
	if ids == nil {
		ids = []string{}
	}
	return User{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               u.Email,
		SubscribedToUserIDs: ids,
	}
}

func toAPIUsers(uu []entities.User) []User {
	out := make([]User, len(uu))
	for i, u := range uu {
		out[i] = toAPIUser(u)
	}
	return out
}

func toAPIPost(p entities.Post) Post {
	return Post{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		UserID:  p.UserID,
	}
}

func toAPIPosts(pp []entities.Post) []Post {
	out := make([]Post, len(pp))
	for i, p := range pp {
		out[i] = toAPIPost(p)
	}
	return out
}

func toAPIProfile(p entities.Profile) Profile {
	return Profile{
		ID:           p.ID,
		Avatar:       p.Avatar,
		Sex:          p.Sex,
		Birthday:     p.Birthday,
		Country:      p.Country,
		Street:       p.Street,
		City:         p.City,
		MemberTypeID: p.MemberTypeID,
		UserID:       p.UserID,
	}
}

func toAPIProfiles(pp []entities.Profile) []Profile {
	out := make([]Profile, len(pp))
	for i, p := range pp {
		out[i] = toAPIProfile(p)
	}
	return out
}

func toAPIMemberType(m entities.MemberType) MemberType {
	return MemberType{
		ID:              m.ID,
		Discount:        m.Discount,
		MonthPostsLimit: m.MonthPostsLimit,
	}
}

func toAPIMemberTypes(mm []entities.MemberType) []MemberType {
	out := make([]MemberType, len(mm))
	for i, m := range mm {
		out[i] = toAPIMemberType(m)
	}
	return out
}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to marshal response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b) // nolint: errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	b, _ := json.Marshal(Error{Error: message}) // nolint: errcheck

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b) // nolint: errcheck
}

// writeServiceError maps core error kinds to statuses: absent entities are
// 404, violated constraints and over-deep queries are 400, everything else
// is an internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, graph.ErrDepthExceeded):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).Error("internal server error")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// readJSON decodes the request body into v and validates it.
func readJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
