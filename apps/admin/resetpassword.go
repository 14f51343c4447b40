package main

import (
	"strings"

	"github.com/lenswise/coachdesk/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.getUser(uname)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = user.NowFunc().UTC()
	_, err = cli.usrRepo.UpdateUser(usr, nil)
	return err
}

// getUser finds a user by username or email.
func (cli *commandLine) getUser(uname string) (user.User, error) {
	if strings.Contains(uname, "@") {
		return cli.usrRepo.GetUserByEmail(uname)
	}
	return cli.usrRepo.GetUserByUsername(uname)
}
