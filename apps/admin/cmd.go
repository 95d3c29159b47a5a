package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/academia/core/account"
)

var (
	readPasswordFunc           = term.ReadPassword // mockable
	promptOut        io.Writer = os.Stdout

	errHelp = errors.New("help provided")
	errNoDB = errors.New("migrate needs the postgres storage")
)

type commandLine struct {
	db       *sql.DB // nil unless the storage is postgres
	accounts *account.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(promptOut, "Usage:")
	fmt.Fprintln(promptOut, "  addteacher -email EMAIL -name NAME - create a teacher account; the password is prompted next")
	fmt.Fprintln(promptOut, "  resetpassword -role teacher|student -handle HANDLE - reset an account's password")
	fmt.Fprintln(promptOut, "  migrate COMMAND [ARGS] - run a goose command against the database (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ContinueOnError)
	addTeacherEmail := addTeacherCmd.String("email", "", "The teacher's email, used to sign in.")
	addTeacherName := addTeacherCmd.String("name", "", "The teacher's full name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordRole := resetPasswordCmd.String("role", string(account.RoleTeacher), "The account's role.")
	resetPasswordHandle := resetPasswordCmd.String("handle", "", "The teacher's email or the student's identifier.")

	switch args[1] {
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addTeacherEmail == "" || *addTeacherName == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil || pwd == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(*addTeacherEmail, *addTeacherName, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordHandle == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		role, err := account.ParseRole(*resetPasswordRole)
		if err != nil {
			return err
		}
		pwd, err := promptPassword()
		if err != nil || pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(role, *resetPasswordHandle, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(promptOut, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(promptOut)
	return string(pwd), err
}
