// Package pgrepos implements the record store repositories over postgres.
package pgrepos

import (
	"context"
	"database/sql"
	"net"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

type (
	// DB runs repository calls against the pool, or against the transaction carried by ctx.
	DB struct {
		*sqlx.DB
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func New(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// InTx runs fn in a serializable transaction. Nested calls join the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return storeError(err, "beginning transaction")
	}
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.WithMessagef(err, "rolling back: %v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError(err, "committing transaction")
	}
	return nil
}

// ext returns the transaction carried by ctx, if any, or the pool.
func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.DB
}

func (db *DB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, db.ext(ctx), dest, db.Rebind(query), args...)
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, db.ext(ctx), dest, db.Rebind(query), args...)
}

func (db *DB) namedExec(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, db.ext(ctx), query, arg)
}

// execOne runs a write that must touch exactly one row; notFound is returned otherwise.
func (db *DB) execOne(ctx context.Context, notFound error, query string, args ...interface{}) error {
	res, err := db.ext(ctx).ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return err
	}
	return oneRow(res, notFound)
}

func oneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// where accumulates AND-ed conditions with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// postgres error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// ErrConcurrentWrite reports a transaction aborted by a concurrent one touching the same rows.
var ErrConcurrentWrite = core.NewError(core.KindConflict, "the records were changed concurrently, please retry")

// constraintError maps a constraint violation to the domain error registered for its constraint name.
func constraintError(err error, byConstraint map[string]error) (error, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil, false
	}
	switch pqErr.Code {
	case codeUniqueViolation, codeForeignKeyViolation:
		if mapped, ok := byConstraint[pqErr.Constraint]; ok {
			return mapped, true
		}
	case codeCheckViolation:
		return core.NewValidationError(nil, core.FieldError{Field: pqErr.Column, Error: pqErr.Message}), true
	}
	return nil, false
}

// storeError marks connection failures as unavailable, serialization failures as conflicts,
// and wraps anything else.
func storeError(err error, msg string) error {
	var (
		netErr net.Error
		pqErr  *pq.Error
	)
	switch {
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return core.Unavailable(err, msg)
	case errors.As(err, &pqErr):
		switch {
		case pqErr.Code.Class() == "08": // connection exception
			return core.Unavailable(err, msg)
		case pqErr.Code == codeSerializationFailure, pqErr.Code == codeDeadlockDetected:
			return core.E(core.KindConflict, ErrConcurrentWrite.Reason, errors.Wrap(err, msg))
		}
	}
	return errors.Wrap(err, msg)
}

// orderBy renders the orderings whose field is in columns.
func orderBy(orderings []core.DBOrdering, columns map[string]string) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := columns[ord.Field]; ok {
			parts = append(parts, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// isInvalidUUID reports a malformed id; such an id cannot match any row.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02" // invalid_text_representation
}
