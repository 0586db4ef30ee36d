package connector

import (
	"context"
	"database/sql"
	"sync"
)

// baseConnector carries the lifecycle state machine and pool handle shared
// by every dialect. Uninitialized -> Connecting -> Connected -> Disconnected;
// Disconnected is terminal for the instance.
type baseConnector struct {
	desc Descriptor

	mu    sync.Mutex
	state State
	db    *sql.DB
}

func (b *baseConnector) Descriptor() Descriptor {
	return b.desc
}

func (b *baseConnector) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// beginConnect transitions to Connecting. Only an Uninitialized instance
// may connect; callers must build a fresh connector after disconnecting.
func (b *baseConnector) beginConnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateUninitialized:
		b.state = StateConnecting
		return nil
	case StateConnected, StateConnecting:
		return &Error{Kind: ErrKindConnectionFailed, Message: string(b.desc.ID) + " connector is already connected; disconnect first"}
	default:
		return &Error{Kind: ErrKindConnectionFailed, Message: string(b.desc.ID) + " connector was disconnected; construct a new instance"}
	}
}

func (b *baseConnector) finishConnect(db *sql.DB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db = db
	b.state = StateConnected
}

// failConnect rolls the state back so a retry with a corrected DSN works.
func (b *baseConnector) failConnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateUninitialized
}

// Disconnect closes the pool. Idempotent: any state other than Connected
// is left alone and reported as success.
func (b *baseConnector) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateConnected {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.state = StateDisconnected
	return err
}

// handle returns the live pool, or a NotConnected error when the
// lifecycle has not reached Connected.
func (b *baseConnector) handle() (*sql.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateConnected || b.db == nil {
		return nil, errNotConnected(b.desc.ID)
	}
	return b.db, nil
}
