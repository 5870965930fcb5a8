package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BreadYang/scrape-social-media-in-area/tokens"
)

func TestHTTPClientSignsRequests(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	creds := tokens.CredentialSet{
		ConsumerKey:       " ck ",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	}
	client := HTTPClient(context.Background(), creds, srv.Client())

	resp, err := client.Post(srv.URL, "application/x-www-form-urlencoded", strings.NewReader("locations=1,2,3,4"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, strings.HasPrefix(header, "OAuth "), header)
	assert.Contains(t, header, `oauth_consumer_key="ck"`)
	assert.Contains(t, header, `oauth_token="at"`)
	assert.Contains(t, header, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, header, "oauth_signature=")
}
