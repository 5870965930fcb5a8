package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BreadYang/scrape-social-media-in-area/metrics"
	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// Sink сохраняет записи по одной и никогда не останавливает стрим из-за ошибки записи:
// неудачная транзакция откатывается, запись логируется и отбрасывается.
type Sink struct {
	store   Store
	table   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewSink создаёт Sink поверх store. timeout ограничивает одну вставку.
func NewSink(store Store, table string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Sink {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		store:   store,
		table:   table,
		timeout: timeout,
		logger:  logger.With("component", "sink", "table", table),
		metrics: m,
	}
}

// Save вставляет запись. Ошибка (*PersistenceError) возвращается только для наблюдения:
// к моменту возврата транзакция уже откачена, и вызывающий продолжает работу.
func (s *Sink) Save(ctx context.Context, rec model.Record) error {
	dbCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		dbCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	err := s.store.Insert(dbCtx, s.table, rec)
	elapsed := time.Since(started)

	if err == nil {
		s.metrics.Insert(metrics.InsertOK, elapsed)
		s.logger.Debug("sink: запись сохранена", "id", rec.ID, "text", rec.Text)
		return nil
	}

	result := metrics.InsertFailed
	if IsDuplicate(err) {
		result = metrics.InsertDuplicate
	}
	s.metrics.Insert(result, elapsed)

	level := slog.LevelError
	if result == metrics.InsertDuplicate || errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "sink: запись отброшена",
		"id", rec.ID,
		"id_str", rec.IDStr,
		"user", rec.UserScreenName,
		"created_at", rec.CreatedAt,
		"result", result,
		"error", err,
	)

	return &PersistenceError{ID: rec.ID, Err: err}
}

// Close освобождает соединение хранилища.
func (s *Sink) Close() error {
	return s.store.Close()
}
