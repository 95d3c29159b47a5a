package main

import (
	"context"

	"github.com/trezcool/academia/core/account"
)

func (cli *commandLine) resetPassword(role account.Role, handle, pwd string) error {
	ctx := context.Background()
	acc, err := cli.accounts.GetByHandle(ctx, role, handle)
	if err != nil {
		return err
	}
	return cli.accounts.SetPassword(ctx, acc, account.SetPassword{Password: pwd})
}
