package inmemdb

import (
	"context"
	"maps"
	"sync"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

type (
	// DB is an in-memory record store. One lock guards every table, so
	// uniqueness checks, cascades and transactions see a consistent state.
	DB struct {
		mu         sync.RWMutex
		accounts   map[string]account.Account
		students   map[string]student.Student
		grades     map[string]grade.Grade
		attendance map[string]attendance.Attendance
	}

	tables struct {
		accounts   map[string]account.Account
		students   map[string]student.Student
		grades     map[string]grade.Grade
		attendance map[string]attendance.Attendance
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{
		accounts:   make(map[string]account.Account),
		students:   make(map[string]student.Student),
		grades:     make(map[string]grade.Grade),
		attendance: make(map[string]attendance.Attendance),
	}
}

// InTx runs fn holding the write lock; the tables are restored if fn fails.
// Nested calls join the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snap := db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// Reset drops every record (tests).
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.restore(tables{})
}

func (db *DB) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*DB)
	return ok && owner == db
}

func (db *DB) write(ctx context.Context, fn func() error) error {
	if db.inTx(ctx) {
		return fn()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

func (db *DB) read(ctx context.Context, fn func() error) error {
	if db.inTx(ctx) {
		return fn()
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn()
}

func (db *DB) snapshot() tables {
	return tables{
		accounts:   maps.Clone(db.accounts),
		students:   maps.Clone(db.students),
		grades:     maps.Clone(db.grades),
		attendance: maps.Clone(db.attendance),
	}
}

func (db *DB) restore(t tables) {
	db.accounts = orEmpty(t.accounts)
	db.students = orEmpty(t.students)
	db.grades = orEmpty(t.grades)
	db.attendance = orEmpty(t.attendance)
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return make(map[string]V)
	}
	return m
}
