package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// AdvisoryLocker serializes writers of one organization across processes. Each
// scope is one transaction holding pg_advisory_xact_lock(hashtext(organization_id));
// the lock is released by commit or rollback and every statement of the scope
// runs on the transaction's connection.
type AdvisoryLocker struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewAdvisoryLocker constructs the locker. A positive timeout bounds the wait for the lock.
func NewAdvisoryLocker(db *sqlx.DB, timeout time.Duration) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, timeout: timeout}
}

// WithinOrganization runs fn inside the organization's locked transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (l *AdvisoryLocker) WithinOrganization(ctx context.Context, organizationID string, fn func(ctx context.Context) error) (err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin organization transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if l.timeout > 0 {
		if _, err = tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", l.timeout.Milliseconds())); err != nil {
			return fmt.Errorf("set organization lock timeout: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, organizationID); err != nil {
		return fmt.Errorf("lock organization %s: %w", organizationID, err)
	}

	if err = fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit organization transaction: %w", err)
	}
	return nil
}

// KeyedMutex serializes writers of one organization within a single process.
type KeyedMutex struct {
	mu      sync.Mutex
	locks   map[string]*keyedEntry
	timeout time.Duration
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex constructs an empty keyed mutex. A positive timeout bounds the
// wait in WithinOrganization.
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry), timeout: timeout}
}

// WithinOrganization runs fn while holding the organization's slot.
func (k *KeyedMutex) WithinOrganization(ctx context.Context, organizationID string, fn func(ctx context.Context) error) error {
	lockCtx := ctx
	if k.timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}
	unlock, err := k.Lock(lockCtx, organizationID)
	if err != nil {
		return fmt.Errorf("lock organization %s: %w", organizationID, err)
	}
	defer unlock()
	return fn(ctx)
}

// Lock waits for the organization's slot or for ctx to end.
func (k *KeyedMutex) Lock(ctx context.Context, organizationID string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[organizationID]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[organizationID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(organizationID, entry, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { k.release(organizationID, entry, true) })
	}, nil
}

func (k *KeyedMutex) release(organizationID string, entry *keyedEntry, held bool) {
	if held {
		<-entry.ch
	}
	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, organizationID)
	}
	k.mu.Unlock()
}
