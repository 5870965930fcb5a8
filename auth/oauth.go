package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/BreadYang/scrape-social-media-in-area/tokens"
)

// HTTPClient возвращает http.Client, подписывающий каждый запрос по OAuth 1.0a
// ключами из набора. base задаёт транспорт; nil означает http.DefaultClient.
// Для стрима у base не должно быть общего Timeout: соединение живёт часами.
func HTTPClient(ctx context.Context, creds tokens.CredentialSet, base *http.Client) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}

	config := oauth1.NewConfig(strings.TrimSpace(creds.ConsumerKey), strings.TrimSpace(creds.ConsumerSecret))
	token := oauth1.NewToken(strings.TrimSpace(creds.AccessToken), strings.TrimSpace(creds.AccessTokenSecret))
	return config.Client(ctx, token)
}
