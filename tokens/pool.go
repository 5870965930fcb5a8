package tokens

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrNoCredentials — ни в конфиге, ни в файле секретов нет ни одного набора.
var ErrNoCredentials = errors.New("tokens: no credential sets configured")

// Pool хранит пронумерованные наборы учётных данных. Наборы из конфига имеют
// приоритет; файл секретов читается, только если в конфиге нет ни одного
// заполненного набора (пустые заготовки не считаются).
type Pool struct {
	sets  []CredentialSet
	store Store
	mu    sync.Mutex
}

// NewPool создаёт пул. store может быть nil.
func NewPool(sets []CredentialSet, store Store) *Pool {
	for _, set := range sets {
		if !set.IsZero() {
			return &Pool{sets: sets, store: store}
		}
	}
	return &Pool{store: store}
}

// Pick возвращает набор с номером index. Выбор делается один раз при старте.
func (p *Pool) Pick(index int) (CredentialSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.loadLocked(); err != nil {
		return CredentialSet{}, err
	}
	if index < 0 || index >= len(p.sets) {
		return CredentialSet{}, fmt.Errorf("tokens: pick: index %d out of range [0,%d)", index, len(p.sets))
	}

	set := p.sets[index]
	if err := set.Validate(); err != nil {
		return CredentialSet{}, fmt.Errorf("tokens: pick %d: %w", index, err)
	}
	return set, nil
}

func (p *Pool) loadLocked() error {
	if len(p.sets) > 0 {
		return nil
	}
	if p.store == nil {
		return ErrNoCredentials
	}

	sets, err := p.store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoCredentials
		}
		return err
	}
	if len(sets) == 0 {
		return ErrNoCredentials
	}
	p.sets = sets
	return nil
}
