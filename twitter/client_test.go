package twitter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BreadYang/scrape-social-media-in-area/geo"
	"github.com/BreadYang/scrape-social-media-in-area/stream"
)

func sf(t *testing.T) geo.Box {
	t.Helper()
	box, err := geo.Lookup("sf", nil)
	require.NoError(t, err)
	return box
}

func TestOpenSendsLocations(t *testing.T) {
	var form map[string]string
	var method, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"locations":      r.PostForm.Get("locations"),
			"stall_warnings": r.PostForm.Get("stall_warnings"),
		}
		_, _ = io.WriteString(w, "{\"limit\":{\"track\":1}}\r\n")
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)
	box := sf(t)

	body, err := client.Open(context.Background(), box)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "{\"limit\":{\"track\":1}}\r\n", string(data))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, box.String(), form["locations"])
	assert.Equal(t, "true", form["stall_warnings"])
}

func TestOpenStatusMapping(t *testing.T) {
	cases := []struct {
		status      int
		auth        bool
		rateLimited bool
	}{
		{status: http.StatusUnauthorized, auth: true},
		{status: http.StatusForbidden, auth: true},
		{status: 420, rateLimited: true},
		{status: http.StatusTooManyRequests, rateLimited: true},
		{status: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, " nope \n")
		}))

		_, err := NewClient(srv.Client(), srv.URL, "", nil).Open(context.Background(), sf(t))
		srv.Close()
		require.Error(t, err, tc.status)

		var authErr *stream.AuthError
		var statusErr *StatusError
		if tc.auth {
			require.True(t, errors.As(err, &authErr), tc.status)
			assert.Equal(t, tc.status, authErr.StatusCode)
			assert.Equal(t, "nope", authErr.Body)
			assert.True(t, stream.IsFatal(err))
			continue
		}
		require.True(t, errors.As(err, &statusErr), tc.status)
		assert.Equal(t, tc.rateLimited, statusErr.RateLimited(), tc.status)
		assert.False(t, stream.IsFatal(err))
	}
}

func TestOpenCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.Client(), srv.URL, "", nil).Open(ctx, sf(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"id_str":"12","screen_name":"geo_bot","name":"ignored"}`)
	}))
	defer srv.Close()

	account, err := NewClient(srv.Client(), "", srv.URL, nil).Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Account{ID: "12", ScreenName: "geo_bot"}, account)
}

func TestVerifyRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), "", srv.URL, nil).Verify(context.Background())
	var authErr *stream.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Empty(t, authErr.Body)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(http.DefaultClient, "", " ", nil)
	assert.Equal(t, DefaultStreamURL, c.streamURL)
	assert.Equal(t, DefaultVerifyURL, c.verifyURL)
}
