package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ripoti/core/user"
)

// addUser registers a new account with the remote API. The API derives the
// username and assigns the default password.
func (cli *commandLine) addUser(sess user.Session, name, email string, role user.Role) error {
	nu := user.NewUser{
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := nu.Validate(); err != nil {
		return err
	}
	if err := cli.client.AddUser(context.Background(), sess, nu); err != nil {
		return err
	}
	fmt.Printf("%s account created for %s <%s>\n", role.DisplayName(), nu.Name, nu.Email)
	return nil
}

func (cli *commandLine) delUser(sess user.Session, id string) error {
	if err := cli.client.DeleteUser(context.Background(), sess, id); err != nil {
		return err
	}
	fmt.Printf("account %s deleted\n", id)
	return nil
}

func (cli *commandLine) listUsers(sess user.Session) error {
	users, err := cli.client.Users(context.Background(), sess)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("no accounts found")
		return nil
	}
	for _, usr := range users {
		fmt.Printf("%-26s %-10s %-22s %s\n", usr.ID, usr.Role, usr.Username, usr.Email)
	}
	return nil
}
