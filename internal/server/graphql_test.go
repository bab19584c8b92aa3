package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orpheus-net/orpheus/internal/graph"
	"github.com/orpheus-net/orpheus/internal/service"
	"github.com/orpheus-net/orpheus/internal/service/impl"
	"github.com/orpheus-net/orpheus/internal/storage"
)

// newGraphQLRouter wires a real store through the service and resolver, the
// query-graph endpoint is easier to check end to end than against mocks.
func newGraphQLRouter(t *testing.T) (service.Service, http.Handler) {
	t.Helper()

	st := storage.NewStore()
	svc := impl.New(st)

	r := chi.NewMux()
	SetupRouter(svc, graph.NewResolver(st), r, time.Minute)

	return svc, r
}

func postGraphQL(t *testing.T, router http.Handler, query string, vars map[string]interface{}) (int, string) {
	t.Helper()

	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: vars})
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodPost, "/v1/graphql", string(body))

	return w.Code, w.Body.String()
}

func Test_graphql_queryUsers(t *testing.T) {
	svc, router := newGraphQLRouter(t)

	u, err := svc.CreateUser(context.Background(), service.CreateUserParams{
		FirstName: "john", LastName: "doe", Email: "john@example.com",
	})
	require.NoError(t, err)

	code, body := postGraphQL(t, router, `{ users { id firstName } }`, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(
		`{"data":{"users":[{"id":%q,"firstName":"john"}]}}`, u.ID,
	), body)
}

func Test_graphql_queryUser_missing(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router,
		fmt.Sprintf(`{ user(id: %q) { id } }`, storage.NewUUID()), nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"user":null}}`, body, "an absent entity resolves to null, not an error")
}

func Test_graphql_queryMemberTypes(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router, `{ memberTypes { id discount monthPostsLimit } }`, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"memberTypes":[
		{"id":"basic","discount":0,"monthPostsLimit":20},
		{"id":"business","discount":5,"monthPostsLimit":100}
	]}}`, body)
}

func Test_graphql_queryUser_relations(t *testing.T) {
	svc, router := newGraphQLRouter(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, service.CreateUserParams{FirstName: "john", LastName: "doe", Email: "j@e"})
	require.NoError(t, err)

	p, err := svc.CreatePost(ctx, service.CreatePostParams{Title: "title", Content: "content", UserID: u.ID})
	require.NoError(t, err)

	_, err = svc.CreateProfile(ctx, service.CreateProfileParams{
		Avatar: "a", Sex: "f", Birthday: 1, Country: "NL", Street: "s", City: "c",
		MemberTypeID: "business", UserID: u.ID,
	})
	require.NoError(t, err)

	code, body := postGraphQL(t, router, fmt.Sprintf(
		`{ user(id: %q) { id posts { id title } profile { city } memberType { discount } } }`, u.ID,
	), nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`{"data":{"user":{
		"id":%q,
		"posts":[{"id":%q,"title":"title"}],
		"profile":{"city":"c"},
		"memberType":{"discount":5}
	}}}`, u.ID, p.ID), body)
}

func Test_graphql_depthLimit(t *testing.T) {
	svc, router := newGraphQLRouter(t)

	u, err := svc.CreateUser(context.Background(), service.CreateUserParams{FirstName: "a", LastName: "b", Email: "a@b"})
	require.NoError(t, err)

	nested := func(n int) string {
		q := "id"
		for i := 0; i < n; i++ {
			q = "subscribedToUser { " + q + " }"
		}
		return fmt.Sprintf(`{ user(id: %q) { %s } }`, u.ID, q)
	}

	code, body := postGraphQL(t, router, nested(6), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"data"`)
	assert.NotContains(t, body, `"errors"`)

	code, body = postGraphQL(t, router, nested(7), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, `"data"`)

	var resp struct {
		Errors []GraphQLError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "depth")
}

func Test_graphql_depthLimit_noExecution(t *testing.T) {
	// the mock has no expectations, so any service call fails the test;
	// an over-deep query must be rejected before execution starts
	_, router := newTestRouter(t)

	q := "id"
	for i := 0; i < 7; i++ {
		q = "subscribedToUser { " + q + " }"
	}

	code, body := postGraphQL(t, router,
		fmt.Sprintf(`{ user(id: %q) { %s } }`, storage.NewUUID(), q), nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "depth")
	assert.NotContains(t, body, `"data"`)
}

func Test_graphql_createUser(t *testing.T) {
	svc, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router, `
		mutation($data: UserInput!) {
			createUser(data: $data) { id firstName email }
		}`,
		map[string]interface{}{
			"data": map[string]interface{}{
				"firstName": "john",
				"lastName":  "doe",
				"email":     "john@example.com",
			},
		})

	assert.Equal(t, http.StatusOK, code)

	users, err := svc.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "john", users[0].FirstName)

	assert.JSONEq(t, fmt.Sprintf(
		`{"data":{"createUser":{"id":%q,"firstName":"john","email":"john@example.com"}}}`, users[0].ID,
	), body)
}

func Test_graphql_subscribeToUser(t *testing.T) {
	svc, router := newGraphQLRouter(t)
	ctx := context.Background()

	follower, err := svc.CreateUser(ctx, service.CreateUserParams{FirstName: "follower", LastName: "l", Email: "f@e"})
	require.NoError(t, err)
	followee, err := svc.CreateUser(ctx, service.CreateUserParams{FirstName: "followee", LastName: "l", Email: "e@e"})
	require.NoError(t, err)

	code, body := postGraphQL(t, router, `
		mutation($data: SubscribeInput!) {
			subscribeToUser(data: $data) { id subscribedToUserIds }
		}`,
		map[string]interface{}{
			"data": map[string]interface{}{
				"id":     followee.ID,
				"userId": follower.ID,
			},
		})

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(
		`{"data":{"subscribeToUser":{"id":%q,"subscribedToUserIds":[%q]}}}`, follower.ID, followee.ID,
	), body)

	code, body = postGraphQL(t, router, fmt.Sprintf(
		`{ user(id: %q) { userSubscribedTo { firstName } } }`, followee.ID,
	), nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"user":{"userSubscribedTo":[{"firstName":"follower"}]}}}`, body)
}

func Test_graphql_updateMemberType(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router,
		`mutation { updateMemberType(id: "basic", data: { discount: 10 }) { id discount monthPostsLimit } }`, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"updateMemberType":{"id":"basic","discount":10,"monthPostsLimit":20}}}`, body)
}

func Test_graphql_mutationError(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router, fmt.Sprintf(
		`mutation { createPost(data: { title: "t", content: "c", userId: %q }) { id } }`, storage.NewUUID(),
	), nil)

	assert.Equal(t, http.StatusOK, code)

	var resp struct {
		Data   map[string]interface{} `json:"data"`
		Errors []GraphQLError         `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Nil(t, resp.Data["createPost"])
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "post owner does not exist")
}

func Test_graphql_parseError(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, body := postGraphQL(t, router, `{ users {`, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"errors"`)
	assert.NotContains(t, body, `"data"`)
}

func Test_graphql_emptyQuery(t *testing.T) {
	_, router := newGraphQLRouter(t)

	code, _ := postGraphQL(t, router, "", nil)

	assert.Equal(t, http.StatusBadRequest, code)
}

func Test_graphql_invalidBody(t *testing.T) {
	_, router := newGraphQLRouter(t)

	w := doRequest(t, router, http.MethodPost, "/v1/graphql", strings.Repeat("{", 3))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
