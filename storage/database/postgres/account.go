package pgrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/account"
)

const accountColumns = `id, role, handle, name, password_hash, created_at, updated_at, last_login`

type accountRepository struct {
	db *DB
}

var (
	_ account.Repository = (*accountRepository)(nil)

	accountConstraints = map[string]error{
		"accounts_role_handle_key": account.ErrDuplicateHandle,
	}
)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	_, err := repo.db.namedExec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :role, :handle, :name, :password_hash, :created_at, :updated_at, :last_login)`,
		acc,
	)
	if err != nil {
		if mapped, ok := constraintError(err, accountConstraints); ok {
			return account.Account{}, mapped
		}
		return account.Account{}, storeError(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	w := new(where)
	switch {
	case filter.ID != "":
		w.add("id = ?", filter.ID)
	case filter.Handle != "":
		w.add("role = ?", filter.Role)
		w.add("handle = ?", filter.Handle)
	default:
		return account.Account{}, account.ErrNotFound
	}

	var acc account.Account
	if err := repo.db.get(ctx, &acc, `SELECT `+accountColumns+` FROM accounts`+w.String(), w.args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, storeError(err, "selecting account")
	}
	return acc, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	res, err := repo.db.namedExec(ctx, `
		UPDATE accounts
		SET name = :name, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		acc,
	)
	if err != nil {
		return account.Account{}, storeError(err, "updating account")
	}
	if err = oneRow(res, account.ErrNotFound); err != nil {
		return account.Account{}, err
	}
	return acc, nil
}
