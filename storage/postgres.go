package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

const pgUniqueViolation = "23505"

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore пишет записи в PostGIS/hstore таблицу через пул pgx.
type PostgresStore struct {
	db   txBeginner
	pool *pgxpool.Pool
}

// NewPostgresStore открывает пул и проверяет соединение. maxConns <= 0 оставляет значение pgx.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	return &PostgresStore{db: pool, pool: pool}, nil
}

func newPostgresStore(db txBeginner) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert вставляет запись в отдельной транзакции; при любой ошибке транзакция откатывается.
func (s *PostgresStore) Insert(ctx context.Context, table string, rec model.Record) error {
	q := `insert into ` + quoteTable(table) + ` (
  ` + columns + `
) values (
  $1, $2::geometry, $3, hstore($4::text[], $5::text[]), $6, $7,
  $8, $9, $10, $11, $12,
  $13, $14, $15,
  hstore($16::text[], $17::text[]), $18, $19, hstore($20::text[], $21::text[]), $22, $23
);`

	point, err := encodePoint(rec.Coordinates)
	if err != nil {
		return err
	}
	entityKeys, entityValues := rec.Entities.Pairs()
	placeKeys, placeValues := rec.Place.Pairs()
	userKeys, userValues := rec.User.Pairs()

	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			rec.Contributors,
			point,
			rec.CreatedAt.UTC(),
			entityKeys, entityValues,
			rec.FavoriteCount,
			rec.FilterLevel,
			rec.Lang,
			rec.ID,
			rec.IDStr,
			rec.InReplyToScreenName,
			rec.InReplyToStatusID,
			rec.InReplyToStatusIDStr,
			rec.InReplyToUserID,
			rec.InReplyToUserIDStr,
			placeKeys, placeValues,
			rec.RetweetCount,
			rec.Source,
			userKeys, userValues,
			rec.Text,
			rec.UserScreenName,
		)
		return err
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

// Close закрывает пул.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
