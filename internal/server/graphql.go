package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/orpheus-net/orpheus/internal/entities"
	"github.com/orpheus-net/orpheus/internal/graph"
	"github.com/orpheus-net/orpheus/internal/service"
	"github.com/orpheus-net/orpheus/internal/storage"
)

// GraphQLRequest ...
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// GraphQLError ...
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse ...
type GraphQLResponse struct {
	Data   map[string]interface{} `json:"data,omitempty"`
	Errors []GraphQLError         `json:"errors,omitempty"`
}

// graphql executes a query-graph request: the query is parsed into a
// selection tree, the whole request shape is depth-validated before any
// store access, then fields are executed one by one.
func (s server) graphql(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	doc, gqlErr := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if gqlErr != nil {
		writeOK(w, http.StatusOK, GraphQLResponse{Errors: []GraphQLError{{Message: gqlErr.Error()}}})
		return
	}

	if len(doc.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "no operation in query")
		return
	}
	op := doc.Operations[0]

	for _, sel := range op.SelectionSet {
		f, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		if err := graph.Validate(convertSelections(f.SelectionSet)); err != nil {
			writeOK(w, http.StatusOK, GraphQLResponse{Errors: []GraphQLError{{Message: err.Error()}}})
			return
		}
	}

	resp := GraphQLResponse{Data: map[string]interface{}{}}

	for _, sel := range op.SelectionSet {
		f, ok := sel.(*ast.Field)
		if !ok {
			continue
		}

		var (
			v   interface{}
			err error
		)
		switch op.Operation {
		case ast.Mutation:
			v, err = s.execMutation(r.Context(), f, req.Variables)
		default:
			v, err = s.execQuery(r.Context(), f, req.Variables)
		}

		if err != nil {
			resp.Data[f.Alias] = nil
			resp.Errors = append(resp.Errors, GraphQLError{Message: err.Error()})
			continue
		}
		resp.Data[f.Alias] = v
	}

	writeOK(w, http.StatusOK, resp)
}

func (s server) execQuery(ctx context.Context, f *ast.Field, vars map[string]interface{}) (interface{}, error) {
	sel := convertSelections(f.SelectionSet)

	switch f.Name {
	case "users":
		users, err := s.s.GetUsers(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]interface{}, len(users))
		for i, u := range users {
			v, err := s.r.User(ctx, u, sel)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case "user":
		u, err := s.s.GetUser(ctx, argString(f, "id", vars))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil // absent is a valid result on a plain lookup
		}
		if err != nil {
			return nil, err
		}
		return s.r.User(ctx, u, sel)

	case "posts":
		posts, err := s.s.GetPosts(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]interface{}, len(posts))
		for i, p := range posts {
			list[i] = s.r.Post(p, sel)
		}
		return list, nil

	case "post":
		p, err := s.s.GetPost(ctx, argString(f, "id", vars))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s.r.Post(p, sel), nil

	case "profiles":
		profiles, err := s.s.GetProfiles(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]interface{}, len(profiles))
		for i, p := range profiles {
			list[i] = s.r.Profile(p, sel)
		}
		return list, nil

	case "profile":
		p, err := s.s.GetProfile(ctx, argString(f, "id", vars))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s.r.Profile(p, sel), nil

	case "memberTypes":
		mm, err := s.s.GetMemberTypes(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]interface{}, len(mm))
		for i, m := range mm {
			list[i] = s.r.MemberType(m, sel)
		}
		return list, nil

	case "memberType":
		m, err := s.s.GetMemberType(ctx, argString(f, "id", vars))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s.r.MemberType(m, sel), nil
	}

	return nil, fmt.Errorf("unknown query field %q", f.Name)
}

func (s server) execMutation(ctx context.Context, f *ast.Field, vars map[string]interface{}) (interface{}, error) {
	sel := convertSelections(f.SelectionSet)

	switch f.Name {
	case "createUser":
		data := argObject(f, "data", vars)
		u, err := s.s.CreateUser(ctx, service.CreateUserParams{
			FirstName: objString(data, "firstName"),
			LastName:  objString(data, "lastName"),
			Email:     objString(data, "email"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.User(ctx, u, sel)

	case "updateUser":
		data := argObject(f, "data", vars)
		u, err := s.s.UpdateUser(ctx, argString(f, "id", vars), entities.UserPatch{
			FirstName: objOptString(data, "firstName"),
			LastName:  objOptString(data, "lastName"),
			Email:     objOptString(data, "email"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.User(ctx, u, sel)

	case "createPost":
		data := argObject(f, "data", vars)
		p, err := s.s.CreatePost(ctx, service.CreatePostParams{
			Title:   objString(data, "title"),
			Content: objString(data, "content"),
			UserID:  objString(data, "userId"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.Post(p, sel), nil

	case "updatePost":
		data := argObject(f, "data", vars)
		p, err := s.s.UpdatePost(ctx, argString(f, "id", vars), entities.PostPatch{
			Title:   objOptString(data, "title"),
			Content: objOptString(data, "content"),
			UserID:  objOptString(data, "userId"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.Post(p, sel), nil

	case "createProfile":
		data := argObject(f, "data", vars)
		p, err := s.s.CreateProfile(ctx, service.CreateProfileParams{
			Avatar:       objString(data, "avatar"),
			Sex:          objString(data, "sex"),
			Birthday:     objInt64(data, "birthday"),
			Country:      objString(data, "country"),
			Street:       objString(data, "street"),
			City:         objString(data, "city"),
			MemberTypeID: objString(data, "memberTypeId"),
			UserID:       objString(data, "userId"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.Profile(p, sel), nil

	case "updateProfile":
		data := argObject(f, "data", vars)
		p, err := s.s.UpdateProfile(ctx, argString(f, "id", vars), entities.ProfilePatch{
			Avatar:       objOptString(data, "avatar"),
			Sex:          objOptString(data, "sex"),
			Birthday:     objOptInt64(data, "birthday"),
			Country:      objOptString(data, "country"),
			Street:       objOptString(data, "street"),
			City:         objOptString(data, "city"),
			MemberTypeID: objOptString(data, "memberTypeId"),
			UserID:       objOptString(data, "userId"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.Profile(p, sel), nil

	case "updateMemberType":
		data := argObject(f, "data", vars)
		m, err := s.s.UpdateMemberType(ctx, argString(f, "id", vars), entities.MemberTypePatch{
			Discount:        objOptInt(data, "discount"),
			MonthPostsLimit: objOptInt(data, "monthPostsLimit"),
		})
		if err != nil {
			return nil, err
		}
		return s.r.MemberType(m, sel), nil

	case "subscribeToUser":
		data := argObject(f, "data", vars)
		u, err := s.s.Subscribe(ctx, objString(data, "userId"), objString(data, "id"))
		if err != nil {
			return nil, err
		}
		return s.r.User(ctx, u, sel)

	case "unsubscribeFromUser":
		data := argObject(f, "data", vars)
		u, err := s.s.Unsubscribe(ctx, objString(data, "userId"), objString(data, "id"))
		if err != nil {
			return nil, err
		}
		return s.r.User(ctx, u, sel)
	}

	return nil, fmt.Errorf("unknown mutation field %q", f.Name)
}

// convertSelections turns a parsed selection set into the resolver's field
// tree. Fragments are not supported.
func convertSelections(set ast.SelectionSet) []graph.Field {
	out := make([]graph.Field, 0, len(set))
	for _, sel := range set {
		f, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		out = append(out, graph.Field{Name: f.Name, Fields: convertSelections(f.SelectionSet)})
	}
	return out
}

func argValue(v *ast.Value, vars map[string]interface{}) interface{} {
	if v == nil {
		return nil
	}

	switch v.Kind {
	case ast.Variable:
		return vars[v.Raw]
	case ast.IntValue:
		n, _ := strconv.ParseInt(v.Raw, 10, 64) // nolint: errcheck
		return n
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64) // nolint: errcheck
		return f
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]interface{}, 0, len(v.Children))
		for _, c := range v.Children {
			out = append(out, argValue(c.Value, vars))
		}
		return out
	case ast.ObjectValue:
		out := make(map[string]interface{}, len(v.Children))
		for _, c := range v.Children {
			out[c.Name] = argValue(c.Value, vars)
		}
		return out
	default:
		return v.Raw
	}
}

func fieldArg(f *ast.Field, name string, vars map[string]interface{}) interface{} {
	a := f.Arguments.ForName(name)
	if a == nil {
		return nil
	}
	return argValue(a.Value, vars)
}

func argString(f *ast.Field, name string, vars map[string]interface{}) string {
	s, _ := fieldArg(f, name, vars).(string)
	return s
}

func argObject(f *ast.Field, name string, vars map[string]interface{}) map[string]interface{} {
	m, _ := fieldArg(f, name, vars).(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
	}
	return m
}

func objString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func objOptString(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, _ := v.(string)
	return &s
}

// objInt64 reads a number that arrives either as an int64 from a parsed
// literal or as a float64 from JSON variables.
func objInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func objOptInt64(m map[string]interface{}, key string) *int64 {
	if _, ok := m[key]; !ok {
		return nil
	}
	n := objInt64(m, key)
	return &n
}

func objOptInt(m map[string]interface{}, key string) *int {
	if _, ok := m[key]; !ok {
		return nil
	}
	n := int(objInt64(m, key))
	return &n
}
