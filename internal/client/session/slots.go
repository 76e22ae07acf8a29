package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
)

// Keys of the two durable slots.
const (
	SlotToken    = "token"
	SlotIdentity = "identity"
)

// Slots is the durable storage behind a Store. Only the Store writes to it.
type Slots interface {
	// Load returns nil for a slot that is absent.
	Load(ctx context.Context) (token, identity []byte, err error)
	Save(ctx context.Context, token, identity []byte) error
	SaveIdentity(ctx context.Context, identity []byte) error
	Clear(ctx context.Context) error
}

// SQLiteSlots keeps the slots in the local metadata table. The pair is
// read with one query and written inside one transaction.
type SQLiteSlots struct {
	db *sql.DB
}

func NewSQLiteSlots(db *sql.DB) *SQLiteSlots {
	return &SQLiteSlots{db: db}
}

func (s *SQLiteSlots) Load(ctx context.Context) (token, identity []byte, err error) {
	slots, err := metadata.NewSQLiteRepository(s.db).GetMany(ctx, SlotToken, SlotIdentity)
	if err != nil {
		return nil, nil, fmt.Errorf("load session slots: %w", err)
	}
	return slots[SlotToken], slots[SlotIdentity], nil
}

func (s *SQLiteSlots) Save(ctx context.Context, token, identity []byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, SlotToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, SlotIdentity, identity)
	})
}

func (s *SQLiteSlots) SaveIdentity(ctx context.Context, identity []byte) error {
	return metadata.NewSQLiteRepository(s.db).Set(ctx, SlotIdentity, identity)
}

func (s *SQLiteSlots) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, SlotToken, SlotIdentity)
	})
}
