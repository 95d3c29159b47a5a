package inmemdb

import (
	"context"

	"github.com/trezcool/academia/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := repo.db.write(ctx, func() error {
		for _, a := range repo.db.accounts {
			if a.Role == acc.Role && a.Handle == acc.Handle {
				return account.ErrDuplicateHandle
			}
		}
		repo.db.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var found account.Account
	err := repo.db.read(ctx, func() error {
		if filter.ID != "" {
			if acc, ok := repo.db.accounts[filter.ID]; ok {
				found = acc
				return nil
			}
			return account.ErrNotFound
		}
		for _, acc := range repo.db.accounts {
			if acc.Role == filter.Role && acc.Handle == filter.Handle {
				found = acc
				return nil
			}
		}
		return account.ErrNotFound
	})
	return found, err
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := repo.db.write(ctx, func() error {
		orig, ok := repo.db.accounts[acc.ID]
		if !ok {
			return account.ErrNotFound
		}
		// role & handle are immutable
		acc.Role = orig.Role
		acc.Handle = orig.Handle
		acc.CreatedAt = orig.CreatedAt
		repo.db.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}
