package fjump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a client against a test server with logging discarded.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(baseURL+"/", srvClient, "test-token", logger)
}

// srvClient is a plain http.Client for tests; per-request timeouts come
// from the code under test.
var srvClient = &http.Client{}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		// Login must not send a stale bearer token requirement; the
		// client may send one but the endpoint ignores it.

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"user@example.com","password":"hunter2","token_name":"fjsync-test"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"user": {"access_token": "fresh-token"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	client.SetToken("")

	token, err := client.Login(context.Background(), "user@example.com", "hunter2", "fjsync-test")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "fresh-token", client.token)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "invalid credentials"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Login(context.Background(), "user@example.com", "wrong", "fjsync-test")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogin_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"user": {}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Login(context.Background(), "user@example.com", "hunter2", "fjsync-test")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDo_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"data": [], "next_page": null}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.ListEntries(context.Background(), 0)
	require.NoError(t, err)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, classifyStatus(tc.code), "status %d", tc.code)
	}
}

func TestAPIError_NeverRetried(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.ListEntries(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, 1, calls, "non-success statuses must not be retried")
}

func TestCancelFlag(t *testing.T) {
	var flag CancelFlag

	assert.False(t, flag.Cancelled())

	flag.Cancel()
	assert.True(t, flag.Cancelled())

	flag.Reset()
	assert.False(t, flag.Cancelled())

	var nilFlag *CancelFlag

	assert.False(t, nilFlag.Cancelled(), "nil flag never reports cancellation")
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "name taken", Err: nil}
	assert.Equal(t, "fjump: HTTP 422: name taken", err.Error())
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
