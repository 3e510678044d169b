package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
	"github.com/trezcool/ripoti/services/reportapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client *reportapi.Client
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -name NAME -email EMAIL -role ROLE - register a new account")
	fmt.Println("  deluser -username USERNAME -id ID                            - delete an account")
	fmt.Println("  listusers -username USERNAME                                 - list all accounts")
	fmt.Println("  listreports -username USERNAME [-search TEXT] [-status S]    - list submitted reports")
	fmt.Println("")
	fmt.Println("Every command authenticates as the given admin; the password is prompted next.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The admin's username. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The new account's full name.")
	addUserEmail := addUserCmd.String("email", "", "The new account's email.")
	addUserRole := addUserCmd.String("role", "", "The new account's role: student, teacher or admin.")

	delUserCmd := flag.NewFlagSet("deluser", flag.ExitOnError)
	delUserUname := delUserCmd.String("username", "", "The admin's username. The password will be prompted next.")
	delUserID := delUserCmd.String("id", "", "The account's ID.")

	listUsersCmd := flag.NewFlagSet("listusers", flag.ExitOnError)
	listUsersUname := listUsersCmd.String("username", "", "The admin's username. The password will be prompted next.")

	listReportsCmd := flag.NewFlagSet("listreports", flag.ExitOnError)
	listReportsUname := listReportsCmd.String("username", "", "The admin's username. The password will be prompted next.")
	listReportsSearch := listReportsCmd.String("search", "", "Match against project title or student name.")
	listReportsStatus := listReportsCmd.String("status", "", "One of: all, pending, approved, rejected.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserName == "" || *addUserEmail == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		role, err := user.ParseRole(*addUserRole)
		if err != nil {
			return err
		}
		sess, err := cli.login(*addUserUname)
		if err != nil {
			return err
		}
		return cli.addUser(sess, *addUserName, *addUserEmail, role)
	case "deluser":
		if err := delUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *delUserUname == "" || *delUserID == "" {
			delUserCmd.Usage()
			return errHelp
		}
		sess, err := cli.login(*delUserUname)
		if err != nil {
			return err
		}
		return cli.delUser(sess, *delUserID)
	case "listusers":
		if err := listUsersCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listUsersUname == "" {
			listUsersCmd.Usage()
			return errHelp
		}
		sess, err := cli.login(*listUsersUname)
		if err != nil {
			return err
		}
		return cli.listUsers(sess)
	case "listreports":
		if err := listReportsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listReportsUname == "" {
			listReportsCmd.Usage()
			return errHelp
		}
		sess, err := cli.login(*listReportsUname)
		if err != nil {
			return err
		}
		qf := report.QueryFilter{Search: *listReportsSearch, Status: report.ParseStatus(*listReportsStatus)}
		return cli.listReports(sess, qf)
	default:
		cli.printUsage()
		return errHelp
	}
}

// login authenticates against the remote API as an admin and returns the
// resulting session.
func (cli *commandLine) login(username string) (user.Session, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return user.Session{}, err
	}
	if len(pwd) == 0 {
		return user.Session{}, errHelp
	}

	token, err := cli.client.Login(context.Background(), user.RoleAdmin, username, string(pwd))
	if err != nil {
		return user.Session{}, err
	}
	return user.NewSession(token, user.RoleAdmin), nil
}
