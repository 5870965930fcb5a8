package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/BreadYang/scrape-social-media-in-area/geo"
	"github.com/BreadYang/scrape-social-media-in-area/stream"
)

const (
	DefaultStreamURL = "https://stream.twitter.com/1.1/statuses/filter.json"
	DefaultVerifyURL = "https://api.twitter.com/1.1/account/verify_credentials.json"
)

// статус провайдера при превышении лимита подключений
const statusEnhanceYourCalm = 420

const maxErrorBody = 4096

// StatusError — неуспешный HTTP ответ, не связанный с авторизацией.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("twitter: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("twitter: unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimited сообщает, что провайдер просит переподключаться реже.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == statusEnhanceYourCalm || e.StatusCode == http.StatusTooManyRequests
}

var _ stream.Transport = (*Client)(nil)

// Account — владелец набора учётных данных.
type Account struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

// Client реализует stream.Transport поверх подписанного http.Client.
type Client struct {
	http      *http.Client
	streamURL string
	verifyURL string
	logger    *slog.Logger
}

// NewClient собирает клиента. Пустые URL заменяются адресами по умолчанию.
func NewClient(httpClient *http.Client, streamURL, verifyURL string, logger *slog.Logger) *Client {
	if strings.TrimSpace(streamURL) == "" {
		streamURL = DefaultStreamURL
	}
	if strings.TrimSpace(verifyURL) == "" {
		verifyURL = DefaultVerifyURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      httpClient,
		streamURL: streamURL,
		verifyURL: verifyURL,
		logger:    logger.With("component", "twitter"),
	}
}

// Open подписывается на статусы внутри box. Тело ответа читается до отмены ctx.
func (c *Client) Open(ctx context.Context, box geo.Box) (io.ReadCloser, error) {
	form := url.Values{}
	form.Set("locations", box.String())
	form.Set("stall_warnings", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twitter: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("twitter: открываю стрим", "url", c.streamURL, "locations", box.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: request failed: %w", err)
	}

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Verify проверяет учётные данные и возвращает владельца.
func (c *Client) Verify(ctx context.Context) (Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return Account{}, fmt.Errorf("twitter: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("twitter: request failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return Account{}, err
	}
	defer resp.Body.Close()

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return Account{}, fmt.Errorf("twitter: decode response: %w", err)
	}
	return account, nil
}

// checkStatus закрывает тело при неуспешном ответе.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &stream.AuthError{StatusCode: resp.StatusCode, Body: text}
	default:
		return &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
}
