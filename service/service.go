package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/BreadYang/scrape-social-media-in-area/metrics"
	"github.com/BreadYang/scrape-social-media-in-area/stream"
	"github.com/BreadYang/scrape-social-media-in-area/twitter"
)

// Runner — одна попытка стриминга; реализуется *stream.Session.
type Runner interface {
	Run(ctx context.Context) error
}

// Options задаёт политику переподключения.
type Options struct {
	Reconnect     bool
	Backoff       time.Duration
	MaxReconnects int // 0 означает без ограничения
}

// Service управляет жизненным циклом сессии и переподключается после обрыва
// транспорта. Фатальные ошибки сессии возвращаются без повторов.
type Service struct {
	session Runner
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New создаёт Service для уже собранной сессии.
func New(session Runner, opts Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.Backoff > 0 {
		limit = rate.Every(opts.Backoff)
	}
	return &Service{
		session: session,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "service"),
		metrics: m,
	}
}

// Run блокируется до отмены контекста, фатальной ошибки или исчерпания попыток.
func (s *Service) Run(ctx context.Context) error {
	reconnects := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		err := s.session.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil || !s.retryable(err) {
			return err
		}
		if !s.opts.Reconnect {
			return err
		}

		reconnects++
		if s.opts.MaxReconnects > 0 && reconnects > s.opts.MaxReconnects {
			return fmt.Errorf("service: giving up after %d reconnects: %w", s.opts.MaxReconnects, err)
		}

		var statusErr *twitter.StatusError
		if errors.As(err, &statusErr) && statusErr.RateLimited() {
			// 420/429: лишний токен удваивает паузу перед следующей попыткой
			if err := s.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
		}

		s.metrics.Reconnect()
		s.logger.Warn("service: стрим оборвался, переподключение", "attempt", reconnects, "error", err)
	}
}

func (s *Service) retryable(err error) bool {
	return !stream.IsFatal(err) && errors.Is(err, stream.ErrStreamClosed)
}
