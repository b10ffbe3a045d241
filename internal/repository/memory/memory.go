// Package memory is an in-process entity store. Transactions are serialized
// by a single writer lock and applied copy-on-commit, so a failed transaction
// leaves no trace.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type state struct {
	boxes    map[int32]domain.Box
	rentals  map[int32]domain.Rental
	clients  map[int32]domain.Client
	payments map[int32]domain.Payment
	users    map[int32]domain.User
	logs     []domain.LogEntry
	nextID   map[string]int32
}

func newState() *state {
	return &state{
		boxes:    make(map[int32]domain.Box),
		rentals:  make(map[int32]domain.Rental),
		clients:  make(map[int32]domain.Client),
		payments: make(map[int32]domain.Payment),
		users:    make(map[int32]domain.User),
		nextID:   make(map[string]int32),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.boxes {
		c.boxes[k] = v
	}
	for k, v := range s.rentals {
		c.rentals[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.logs = append([]domain.LogEntry(nil), s.logs...)
	for k, v := range s.nextID {
		c.nextID[k] = v
	}
	return c
}

func (s *state) id(table string) int32 {
	s.nextID[table]++
	return s.nextID[table]
}

// Store implements every repository plus repository.Transactor.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time

	Boxes    repository.BoxRepository
	Rentals  repository.RentalRepository
	Clients  repository.ClientRepository
	Payments repository.PaymentRepository
	Users    repository.UserRepository
	Logs     repository.LogRepository
}

func NewStore() *Store {
	s := &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
	v := &view{store: s}
	s.Boxes = &boxRepo{v}
	s.Rentals = &rentalRepo{v}
	s.Clients = &clientRepo{v}
	s.Payments = &paymentRepo{v}
	s.Users = &userRepo{v}
	s.Logs = &logRepo{v}
	return s
}

// WithinTx runs fn against a private copy of the data and publishes it only
// when fn succeeds. Transactions never interleave.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	v := &view{store: s, tx: draft}
	repos := repository.TxRepositories{
		Boxes:   &boxRepo{v},
		Rentals: &rentalRepo{v},
		Clients: &clientRepo{v},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = draft
	return nil
}

// view resolves the state a repository call works on. Calls made through a
// transaction use its draft without locking; standalone calls take the lock.
type view struct {
	store *Store
	tx    *state
}

func (v *view) acquire() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.Lock()
	return v.store.st, v.store.mu.Unlock
}

func sortedKeys[V any](m map[int32]V) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
