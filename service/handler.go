package service

import (
	"context"
	"log/slog"

	"github.com/BreadYang/scrape-social-media-in-area/metrics"
	"github.com/BreadYang/scrape-social-media-in-area/model"
	"github.com/BreadYang/scrape-social-media-in-area/storage"
	"github.com/BreadYang/scrape-social-media-in-area/stream"
)

// Handler реализует stream.Handler и перенаправляет записи в Sink.
type Handler struct {
	sink    *storage.Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ stream.Handler = (*Handler)(nil)

// NewHandler собирает Handler, используемый сессией.
func NewHandler(sink *storage.Sink, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sink: sink, metrics: m, logger: logger.With("component", "handler")}
}

// HandleRecord сохраняет запись. Ошибка записи уже залогирована Sink и дальше не идёт.
func (h *Handler) HandleRecord(ctx context.Context, rec model.Record) {
	h.metrics.Frame()
	_ = h.sink.Save(ctx, rec)
}

// HandleControl учитывает служебные сообщения провайдера.
func (h *Handler) HandleControl(_ context.Context, sig model.ControlSignal) {
	h.metrics.Frame()
	h.metrics.Control(sig.Kind())
	if limit, ok := sig.(model.RateLimit); ok {
		h.metrics.Missed(limit.Track)
	}
}

// HandleDrop учитывает отброшенные фреймы.
func (h *Handler) HandleDrop(_ context.Context, reason string, err error) {
	h.metrics.Frame()
	h.metrics.Dropped(reason)
	if err != nil {
		h.logger.Debug("handler: фрейм отброшен", "reason", reason, "error", err)
	}
}
