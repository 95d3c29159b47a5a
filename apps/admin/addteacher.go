package main

import (
	"context"

	"github.com/trezcool/academia/core/account"
)

// addTeacher registers a teacher account, going through the same validation and password policy as the API.
func (cli *commandLine) addTeacher(email, name, pwd string) error {
	_, err := cli.accounts.Register(context.Background(), account.NewAccount{
		Role:            account.RoleTeacher,
		Handle:          email,
		Name:            name,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
