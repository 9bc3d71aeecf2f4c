package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Get() (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(srv.URL, staticToken("zoom-token"))
}

func TestListUsers_Paginates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer zoom-token", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("page_number") {
		case "1":
			fmt.Fprint(w, `{"page_count":2,"page_number":1,"users":[{"id":"u1","email":"a@x.com","type":2}]}`)
		case "2":
			fmt.Fprint(w, `{"page_count":2,"page_number":2,"users":[{"id":"u2","email":"b@x.com","type":1}]}`)
		default:
			t.Fatalf("página inesperada: %s", r.URL.Query().Get("page_number"))
		}
	})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b@x.com", users[1].Email)
}

func TestCreateUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req createUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "create", req.Action)
		assert.Equal(t, "nova@corp.com", req.UserInfo.Email)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"u9","email":"nova@corp.com","type":1}`))
	})

	user, err := client.CreateUser(context.Background(), UserInfo{Email: "nova@corp.com", Type: 1})
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)
}

func TestGetUser_EscapesEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/ana@corp.com", r.URL.Path)
		w.Write([]byte(`{"id":"u1","email":"ana@corp.com"}`))
	})

	user, err := client.GetUser(context.Background(), "ana@corp.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestDeleteUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteUser(context.Background(), "u1"))
}

func TestListRooms_CursorPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("next_page_token") {
		case "":
			fmt.Fprint(w, `{"rooms":[{"id":"r1","name":"Sala 1"}],"next_page_token":"tok2"}`)
		case "tok2":
			fmt.Fprint(w, `{"rooms":[{"id":"r2","name":"Sala 2"}],"next_page_token":""}`)
		default:
			t.Fatalf("token inesperado")
		}
	})

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Sala 2", rooms[1].Name)
}
