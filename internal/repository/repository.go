package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
)

// Batch is a set of writes applied atomically by a KV backend.
type Batch struct {
	Set    map[string][]byte
	Delete []string
}

// KV is the durable key-value medium behind the state layout.
//
// Get returns an error matching errors.ErrNotFound when the key is absent.
// Apply must either apply every write of the batch or none of them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, b Batch) error
	Close() error
}

// Seeder produces the bootstrap directory used when no users are persisted.
type Seeder func() ([]model.User, []model.Credential, error)

// Repository owns the in-memory snapshot of the layout and writes it through
// to the KV backend. One mutex serializes every read-modify-persist cycle, so
// both stores observe the same records.
type Repository struct {
	kv  KV
	log *slog.Logger

	mu    sync.RWMutex
	state State
}

// New creates a repository over kv. Call Load before serving operations.
func New(kv KV, log *slog.Logger) *Repository {
	return &Repository{kv: kv, log: log, state: emptyState()}
}

// Load rehydrates every key of the layout. When users is absent the
// directory is seeded and persisted; other absent collections start empty.
func (r *Repository) Load(ctx context.Context, seed Seeder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := emptyState()
	hasUsers, err := load(ctx, r.kv, KeyUsers, &st.Users)
	if err != nil {
		return err
	}
	if _, err := load(ctx, r.kv, KeyCredentials, &st.Credentials); err != nil {
		return err
	}
	if _, err := load(ctx, r.kv, KeySwapRequests, &st.SwapRequests); err != nil {
		return err
	}
	if _, err := load(ctx, r.kv, KeyRatings, &st.Ratings); err != nil {
		return err
	}
	if _, err := load(ctx, r.kv, KeyAdminMessages, &st.AdminMessages); err != nil {
		return err
	}
	if _, err := load(ctx, r.kv, KeyCurrentUser, &st.CurrentUser); err != nil {
		return err
	}
	st.normalize()

	if !hasUsers && seed != nil {
		users, creds, err := seed()
		if err != nil {
			return fmt.Errorf("seed directory: %w", err)
		}
		st.Users = users
		st.Credentials = creds
		st.normalize()

		batch, err := encode(st, KeyUsers, KeyCredentials)
		if err != nil {
			return err
		}
		if err := r.kv.Apply(ctx, batch); err != nil {
			return fmt.Errorf("persist seed: %w", svcErr.Map(err))
		}
		r.log.Info("seeded bootstrap directory", "users", len(users))
	}

	r.state = st
	r.log.Debug("state loaded",
		"users", len(st.Users),
		"swap_requests", len(st.SwapRequests),
		"ratings", len(st.Ratings),
		"admin_messages", len(st.AdminMessages),
		"session", st.CurrentUser != nil,
	)
	return nil
}

// Update runs fn against a private copy of the state. If fn succeeds, every
// touched key is written in one batch and only then does the copy replace
// the live state; a failed write leaves memory as it was.
func (r *Repository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Tx{State: r.state.Clone(), dirty: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.dirty) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tx.dirty))
	for k := range tx.dirty {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tx.normalize()
	batch, err := encode(tx.State, keys...)
	if err != nil {
		return err
	}
	if err := r.kv.Apply(ctx, batch); err != nil {
		return fmt.Errorf("persist %s: %w", strings.Join(keys, ","), svcErr.Map(err))
	}

	r.state = tx.State
	return nil
}

// View runs fn with read access to the live state. fn must not retain or
// modify anything it is given.
func (r *Repository) View(fn func(s *State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&r.state)
}

// Snapshot returns a deep copy of the live state.
func (r *Repository) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// Flush rewrites every key from memory.
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, err := encode(r.state, AllKeys...)
	if err != nil {
		return err
	}
	if err := r.kv.Apply(ctx, batch); err != nil {
		return fmt.Errorf("flush: %w", svcErr.Map(err))
	}
	return nil
}

// Reset deletes every key of the layout and empties memory.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Apply(ctx, Batch{Delete: AllKeys}); err != nil {
		return fmt.Errorf("reset: %w", svcErr.Map(err))
	}
	r.state = emptyState()
	r.log.Info("state reset")
	return nil
}

// Close flushes the state and releases the backend.
func (r *Repository) Close(ctx context.Context) error {
	flushErr := r.Flush(ctx)
	if err := r.kv.Close(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return flushErr
}

func emptyState() State {
	st := State{}
	st.normalize()
	return st
}

// normalize replaces nil collections with empty ones so every key
// serializes as a JSON array.
func (s *State) normalize() {
	s.Users = orEmpty(s.Users)
	s.Credentials = orEmpty(s.Credentials)
	s.SwapRequests = orEmpty(s.SwapRequests)
	s.Ratings = orEmpty(s.Ratings)
	s.AdminMessages = orEmpty(s.AdminMessages)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func load[T any](ctx context.Context, kv KV, key string, dst *T) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if svcErr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func encode(st State, keys ...string) (Batch, error) {
	b := Batch{Set: make(map[string][]byte, len(keys))}
	for _, key := range keys {
		var v any
		switch key {
		case KeyUsers:
			v = st.Users
		case KeyCredentials:
			v = st.Credentials
		case KeySwapRequests:
			v = st.SwapRequests
		case KeyRatings:
			v = st.Ratings
		case KeyAdminMessages:
			v = st.AdminMessages
		case KeyCurrentUser:
			if st.CurrentUser == nil {
				b.Delete = append(b.Delete, key)
				continue
			}
			v = st.CurrentUser
		default:
			return Batch{}, fmt.Errorf("unknown layout key %q", key)
		}

		raw, err := json.Marshal(v)
		if err != nil {
			return Batch{}, fmt.Errorf("encode %s: %w", key, err)
		}
		b.Set[key] = raw
	}
	return b, nil
}
