package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// SQLiteStore — локальное хранилище без PostGIS: точка хранится как hex EWKB,
// вложенные объекты как JSON. Используется для офлайн-сбора и проверок.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает файл (или ":memory:") и создаёт таблицу, если её нет.
// Пул ограничен одним соединением: сессия владеет им эксклюзивно.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.EnsureTable(ctx, table); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureTable создаёт таблицу записей с той же структурой столбцов, что и в Postgres.
func (s *SQLiteStore) EnsureTable(ctx context.Context, table string) error {
	ddl := `create table if not exists ` + quoteTable(table) + ` (
  contributors text,
  coordinates text not null,
  created_at text not null,
  entities text not null default '{}',
  favorite_count integer,
  filter_level text,
  lang text,
  id integer primary key,
  id_str text,
  in_reply_to_screen_name text,
  in_reply_to_status_id integer,
  in_reply_to_status_id_str text,
  in_reply_to_user_id integer,
  in_reply_to_user_id_str text,
  place text not null default '{}',
  retweet_count integer,
  source text,
  twitter_user text not null default '{}',
  text text not null,
  user_screen_name text not null
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("storage: create table %s: %w", table, err)
	}
	return nil
}

// Insert вставляет запись в отдельной транзакции.
func (s *SQLiteStore) Insert(ctx context.Context, table string, rec model.Record) error {
	entities, err := encodeBlob(rec.Entities)
	if err != nil {
		return err
	}
	place, err := encodeBlob(rec.Place)
	if err != nil {
		return err
	}
	user, err := encodeBlob(rec.User)
	if err != nil {
		return err
	}
	point, err := encodePoint(rec.Coordinates)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `insert into `+quoteTable(table)+` (
  `+columns+`
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Contributors,
		point,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		entities,
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
		place,
		rec.RetweetCount,
		rec.Source,
		user,
		rec.Text,
		rec.UserScreenName,
	)
	if err != nil {
		if isSQLiteDuplicate(err) {
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		}
		return err
	}

	return tx.Commit()
}

// Get читает запись по id.
func (s *SQLiteStore) Get(ctx context.Context, table string, id int64) (model.Record, error) {
	row := s.db.QueryRowContext(ctx, `select `+columns+` from `+quoteTable(table)+` where id = ?`, id)

	var (
		rec                                            model.Record
		contributors, replySN, replyStatusStr, replyUS sql.NullString
		replyStatus, replyUser                         sql.NullInt64
		coords, createdAt, entities, place, user       string
	)
	err := row.Scan(
		&contributors, &coords, &createdAt, &entities, &rec.FavoriteCount, &rec.FilterLevel,
		&rec.Lang, &rec.ID, &rec.IDStr, &replySN, &replyStatus,
		&replyStatusStr, &replyUser, &replyUS,
		&place, &rec.RetweetCount, &rec.Source, &user, &rec.Text, &rec.UserScreenName,
	)
	if err != nil {
		return model.Record{}, fmt.Errorf("storage: get record %d: %w", id, err)
	}

	if rec.Coordinates, err = decodePoint(coords); err != nil {
		return model.Record{}, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.Record{}, fmt.Errorf("storage: parse created_at: %w", err)
	}
	for _, b := range []struct {
		dst *model.Blob
		src string
	}{{&rec.Entities, entities}, {&rec.Place, place}, {&rec.User, user}} {
		if err := json.Unmarshal([]byte(b.src), b.dst); err != nil {
			return model.Record{}, fmt.Errorf("storage: decode blob: %w", err)
		}
	}

	rec.Contributors = nullString(contributors)
	rec.InReplyToScreenName = nullString(replySN)
	rec.InReplyToStatusIDStr = nullString(replyStatusStr)
	rec.InReplyToUserIDStr = nullString(replyUS)
	rec.InReplyToStatusID = nullInt64(replyStatus)
	rec.InReplyToUserID = nullInt64(replyUser)

	return rec, nil
}

// Close закрывает базу.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isSQLiteDuplicate(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func encodeBlob(b model.Blob) (string, error) {
	if b == nil {
		b = model.Blob{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("storage: encode blob: %w", err)
	}
	return string(data), nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
