package tokens

import (
	"errors"
	"os"
	"strings"
)

// ErrIncompleteCredentials — в наборе не заполнен хотя бы один из четырёх ключей.
var ErrIncompleteCredentials = errors.New("tokens: incomplete credential set")

// CredentialSet — четыре ключа OAuth 1.0a одного приложения.
type CredentialSet struct {
	ConsumerKey       string `json:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret" mapstructure:"consumer_secret"`
	AccessToken       string `json:"access_token" mapstructure:"access_token"`
	AccessTokenSecret string `json:"access_token_secret" mapstructure:"access_token_secret"`
}

// Validate проверяет, что все ключи заданы.
func (c CredentialSet) Validate() error {
	for _, v := range []string{c.ConsumerKey, c.ConsumerSecret, c.AccessToken, c.AccessTokenSecret} {
		if strings.TrimSpace(v) == "" {
			return ErrIncompleteCredentials
		}
	}
	return nil
}

// IsZero сообщает, что ни один ключ не задан.
func (c CredentialSet) IsZero() bool {
	for _, v := range []string{c.ConsumerKey, c.ConsumerSecret, c.AccessToken, c.AccessTokenSecret} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Store описывает хранилище наборов учётных данных.
type Store interface {
	Load() ([]CredentialSet, error)
	Save([]CredentialSet) error
}

// Remember добавляет набор в хранилище, если его там ещё нет, и возвращает его номер.
func Remember(store Store, set CredentialSet) (int, error) {
	if err := set.Validate(); err != nil {
		return 0, err
	}

	sets, err := store.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	for i, known := range sets {
		if known == set {
			return i, nil
		}
	}

	sets = append(sets, set)
	if err := store.Save(sets); err != nil {
		return 0, err
	}
	return len(sets) - 1, nil
}
