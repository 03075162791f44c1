package atlassian

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDo(t *testing.T) {
	var got *http.Request
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("JIRA", srv.URL+"/", "me@example.com", "secret")
	assert.Equal(t, srv.URL, c.BaseURL())

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/rest/api/3/issue", url.Values{"q": {"a b"}},
		map[string]string{"summary": "hi"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)

	user, pass, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "me@example.com", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json; charset=utf-8", got.Header.Get("Content-Type"))
	assert.Equal(t, "/rest/api/3/issue", got.URL.Path)
	assert.Equal(t, "a b", got.URL.Query().Get("q"))
	assert.Equal(t, "hi", gotBody["summary"])
}

func TestClientDoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad credentials"))
	}))
	defer srv.Close()

	c := NewClient("Confluence", srv.URL, "me", "bad")
	err := c.Do(context.Background(), http.MethodGet, "/rest/api/content/1", nil, nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Confluence API request failed: 401 - bad credentials", err.Error())
}

func TestClientDoEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]interface{}
	c := NewClient("JIRA", srv.URL, "me", "t")
	assert.NoError(t, c.Do(context.Background(), http.MethodPut, "/x", nil, map[string]string{}, &out))
}

func TestClientDoCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("JIRA", srv.URL, "me", "t")
	err := c.Do(ctx, http.MethodGet, "/x", nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
