package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// DefaultTable — таблица для записей по умолчанию.
const DefaultTable = "tweets"

// ErrDuplicate отмечает нарушение первичного ключа: запись с таким id уже сохранена.
var ErrDuplicate = errors.New("duplicate id")

// Store выполняет одну транзакционную вставку записи.
type Store interface {
	Insert(ctx context.Context, table string, rec model.Record) error
	Close() error
}

// PersistenceError описывает неудачную вставку конкретной записи.
type PersistenceError struct {
	ID  int64
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: insert record %d: %v", e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDuplicate сообщает, вызвана ли ошибка повторным id.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

const columns = `contributors, coordinates, created_at, entities, favorite_count, filter_level,
  lang, id, id_str, in_reply_to_screen_name, in_reply_to_status_id,
  in_reply_to_status_id_str, in_reply_to_user_id, in_reply_to_user_id_str,
  place, retweet_count, source, twitter_user, text, user_screen_name`
