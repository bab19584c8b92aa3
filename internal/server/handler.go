package server

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/service"
)

func (s server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.s.GetUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUsers(users))
}

func (s server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.s.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(u))
}

func (s server) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.CreateUser(r.Context(), service.CreateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, toAPIUser(u))
}

func (s server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.UpdateUser(r.Context(), chi.URLParam(r, "id"), entities.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(u))
}

func (s server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !service.IsUUID(id) {
		writeError(w, http.StatusBadRequest, "id must be in uuid format")
		return
	}

	u, err := s.s.DeleteUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(u))
}

// subscribeTo subscribes the user from the request body to the user from the
// URL: the body's userId is the follower whose adjacency list gains {id}.
func (s server) subscribeTo(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.Subscribe(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(u))
}

func (s server) unsubscribeFrom(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.Unsubscribe(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(u))
}

func (s server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.s.GetPosts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIPosts(posts))
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.s.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIPost(p))
}

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.s.CreatePost(r.Context(), service.CreatePostParams{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, toAPIPost(p))
}

func (s server) updatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.s.UpdatePost(r.Context(), chi.URLParam(r, "id"), entities.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIPost(p))
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	p, err := s.s.DeletePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIPost(p))
}

func (s server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.s.GetProfiles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIProfiles(profiles))
}

func (s server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.s.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIProfile(p))
}

func (s server) createProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.s.CreateProfile(r.Context(), service.CreateProfileParams{
		Avatar:       req.Avatar,
		Sex:          req.Sex,
		Birthday:     req.Birthday,
		Country:      req.Country,
		Street:       req.Street,
		City:         req.City,
		MemberTypeID: req.MemberTypeID,
		UserID:       req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, toAPIProfile(p))
}

func (s server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.s.UpdateProfile(r.Context(), chi.URLParam(r, "id"), entities.ProfilePatch{
		Avatar:       req.Avatar,
		Sex:          req.Sex,
		Birthday:     req.Birthday,
		Country:      req.Country,
		Street:       req.Street,
		City:         req.City,
		MemberTypeID: req.MemberTypeID,
		UserID:       req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIProfile(p))
}

func (s server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.s.DeleteProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIProfile(p))
}

func (s server) listMemberTypes(w http.ResponseWriter, r *http.Request) {
	mm, err := s.s.GetMemberTypes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIMemberTypes(mm))
}

func (s server) getMemberType(w http.ResponseWriter, r *http.Request) {
	m, err := s.s.GetMemberType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIMemberType(m))
}

func (s server) updateMemberType(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberTypeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := s.s.UpdateMemberType(r.Context(), chi.URLParam(r, "id"), entities.MemberTypePatch{
		Discount:        req.Discount,
		MonthPostsLimit: req.MonthPostsLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOK(w, http.StatusOK, toAPIMemberType(m))
}
