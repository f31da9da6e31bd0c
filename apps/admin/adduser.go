package main

import (
	"context"
	"fmt"

	"github.com/trezcool/thinkwise/core/user"
)

func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		IsAdmin:         isAdmin,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %q created (id %d)\n", usr.Username, usr.ID)
	return nil
}
