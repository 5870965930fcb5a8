package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFile — путь к файлу секретов по умолчанию.
const DefaultFile = ".secrets/twitter_credentials.json"

// FileStore хранит наборы учётных данных в JSON файле с правами 0600.
type FileStore struct {
	Path string
}

type fileCredentials struct {
	Credentials []CredentialSet `json:"credentials"`
}

func (store FileStore) path() string {
	if strings.TrimSpace(store.Path) == "" {
		return DefaultFile
	}
	return store.Path
}

// Load читает наборы учётных данных из файла.
func (store FileStore) Load() ([]CredentialSet, error) {
	data, err := os.ReadFile(store.path())
	if err != nil {
		return nil, fmt.Errorf("load credentials: read file: %w", err)
	}

	var payload fileCredentials
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("load credentials: decode json: %w", err)
	}
	return payload.Credentials, nil
}

// Save перезаписывает файл секретов.
func (store FileStore) Save(sets []CredentialSet) error {
	path := store.path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save credentials: create dir: %w", err)
	}

	data, err := json.MarshalIndent(fileCredentials{Credentials: sets}, "", "  ")
	if err != nil {
		return fmt.Errorf("save credentials: encode json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save credentials: write file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("save credentials: chmod file: %w", err)
	}
	return nil
}
