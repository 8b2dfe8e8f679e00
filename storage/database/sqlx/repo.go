// Package sqlxrepos implements the repositories over PostgreSQL or SQLite with sqlx.
// Queries are written with `?` placeholders and rebound for the driver in use.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
)

// chronological order of assessments (aliased `a`): undated ones last
const assessmentsOrder = "CASE WHEN a.due_date IS NULL THEN 1 ELSE 0 END, a.due_date, a.created_at, a.id"

type repository struct {
	db *sqlx.DB
}

// errDBClosed is the text of the unexported error database/sql returns once the pool is closed.
const errDBClosed = "sql: database is closed"

// trapConnErr turns a closed connection pool into a shutdown error.
func trapConnErr(err error) error {
	if err == nil {
		return nil
	}
	if cause := errors.Cause(err); cause == sql.ErrConnDone || cause.Error() == errDBClosed {
		return core.NewShutdownError("database unavailable: " + cause.Error())
	}
	return err
}

// trapNoRowsErr maps sql.ErrNoRows to `notFound`.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo repository) get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) error {
	return trapConnErr(sqlx.GetContext(ctx, q, dest, repo.db.Rebind(query), args...))
}

func (repo repository) selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) error {
	return trapConnErr(sqlx.SelectContext(ctx, q, dest, repo.db.Rebind(query), args...))
}

// insert runs an INSERT ... RETURNING id statement.
func (repo repository) insert(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (int, error) {
	var id int
	err := q.QueryRowxContext(ctx, repo.db.Rebind(query), args...).Scan(&id)
	return id, trapConnErr(err)
}

// exists reports whether `query` returns a row.
func (repo repository) exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var one int
	err := q.QueryRowxContext(ctx, repo.db.Rebind(query), args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, trapConnErr(err)
}

// inTx runs `fn` in a transaction, rolled back if `fn` fails.
func (repo repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(trapConnErr(err), "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// execAll runs statements sharing the same arguments.
func (repo repository) execAll(ctx context.Context, tx *sqlx.Tx, args []interface{}, queries ...string) error {
	for _, q := range queries {
		if _, err := tx.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
			return err
		}
	}
	return nil
}

// deleteByID deletes a row and reports `notFound` when there was none.
func (repo repository) deleteByID(ctx context.Context, tx *sqlx.Tx, table string, id int, notFound error) error {
	res, err := tx.ExecContext(ctx, repo.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
