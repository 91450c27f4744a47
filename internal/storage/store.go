// Package storage is the bun-backed relational store behind the engine. One
// Store value wraps either the root *bun.DB or a transaction; RunInTx hands
// consumers a transactional view satisfying the same interfaces.
package storage

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"swim-engine/internal/models"
)

type Store struct {
	db bun.IDB
}

// Open connects to the SQLite database at path and returns the root store.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; serializing connections avoids SQLITE_BUSY
	// under concurrent imports.
	sqldb.SetMaxOpenConns(1)
	return &Store{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

var tables = []interface{}{
	(*models.User)(nil),
	(*models.Competition)(nil),
	(*models.TeamRegistration)(nil),
	(*models.Participant)(nil),
	(*models.SwimResult)(nil),
	(*models.PersonalBest)(nil),
	(*models.Heat)(nil),
	(*models.Lane)(nil),
	(*models.ResultFile)(nil),
}

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, model := range tables {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunInTx runs fn against a transactional Store. Nested calls reuse the
// surrounding transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	db, ok := s.db.(*bun.DB)
	if !ok {
		return fn(ctx, s)
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: tx})
	})
}
