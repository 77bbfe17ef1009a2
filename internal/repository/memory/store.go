// Package memory keeps employees and attendance events in process memory.
// It honors the same uniqueness and per-employee locking rules as the
// PostgreSQL repositories and is meant for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
)

type Store struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
	events    []attendance.Event

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees: make(map[string]employee.Employee),
		locks:     make(map[string]chan struct{}),
		now:       time.Now,
	}
}

type txKey struct{}

type memTx struct {
	held []chan struct{}
	ids  map[string]bool
	undo []func()
}

func txFrom(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey{}).(*memTx)
	return tx
}

// WithinTx implements database.Transactor. Employee locks taken inside fn
// are released when fn returns; writes are undone when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx := &memTx{ids: make(map[string]bool)}
	defer func() {
		for i := len(tx.held) - 1; i >= 0; i-- {
			<-tx.held[i]
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock acquires the employee's lock for the rest of the transaction.
// Outside a transaction it is a no-op.
func (s *Store) lock(ctx context.Context, id string) error {
	tx := txFrom(ctx)
	if tx == nil || tx.ids[id] {
		return nil
	}

	s.locksMu.Lock()
	sem, ok := s.locks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[id] = sem
	}
	s.locksMu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	tx.held = append(tx.held, sem)
	tx.ids[id] = true
	return nil
}

// onRollback registers fn to run with s.mu held if the transaction fails.
func (s *Store) onRollback(ctx context.Context, fn func()) {
	if tx := txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

func NewTxManager(s *Store) database.Transactor {
	return s
}
