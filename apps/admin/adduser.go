package main

import (
	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.getUser(uname)
	if err == user.ErrNotFound && email != "" {
		usr, err = cli.getUser(email)
	}
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := user.NowFunc().UTC()
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if usr.ID == "" {
		usr.IsActive = isActive
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}
	usr.UpdatedAt = user.NowFunc().UTC()
	_, err = cli.usrRepo.UpdateUser(usr, &isActive)
	return err
}
