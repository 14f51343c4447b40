package main

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/core/user"
	"github.com/lenswise/coachdesk/services/notification"
	"github.com/lenswise/coachdesk/storage/database"
	"github.com/lenswise/coachdesk/storage/database/dummydb"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*commandLine, reminder.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	validate := core.NewValidator()
	reminder.RegisterValidators(validate)
	user.RegisterValidators(validate)

	remRepo := dummydb.NewReminderRepository(db)
	conf := &core.Config{AppName: "CoachDesk"}
	remSvc := reminder.NewService(validate, remRepo, notifsvc.NewConsoleServiceMock(conf), nopLogger{}, 5*time.Minute)

	cli := &commandLine{
		db:      &sqlx.DB{},
		usrRepo: dummydb.NewUserRepository(db),
		remSvc:  remSvc,
	}
	return cli, remRepo
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = term.ReadPassword })
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: username but no password", args: []string{"adduser", "-username", "janeawesome"}, wantErr: errHelp},
		{name: "resetpassword: no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword: user not found", args: []string{"resetpassword", "-username", "ghost"}, pwd: "lol", wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		mockPassword(t, tt.pwd)

		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			err := cli.run(args)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	mockPassword(t, "s3cretWord!")

	err := cli.run([]string{"admin", "adduser", "-username", "janeawesome", "-email", "jane@coachdesk.test", "-admin"})
	require.NoError(t, err)

	usr, err := cli.usrRepo.GetUserByUsername("janeawesome")
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsAdmin())
	assert.NoError(t, usr.CheckPassword("s3cretWord!"))

	// running again updates instead of duplicating
	mockPassword(t, "newW0rd$s3cret")
	err = cli.run([]string{"admin", "adduser", "-username", "janeawesome", "-email", "jane@coachdesk.test"})
	require.NoError(t, err)

	users, err := cli.usrRepo.QueryAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, users[0].CheckPassword("newW0rd$s3cret"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	mockPassword(t, "s3cretWord!")

	err := cli.run([]string{"admin", "adduser", "-username", "janeawesome", "-email", "jane@coachdesk.test"})
	require.NoError(t, err)
	usr, err := cli.usrRepo.GetUserByUsername("janeawesome")
	require.NoError(t, err)

	// reset with username
	mockPassword(t, "byUname$1")
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-username", "janeawesome"}))
	refreshed, err := cli.usrRepo.GetUserByID(usr.ID)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash))
	assert.NoError(t, refreshed.CheckPassword("byUname$1"))

	// reset with email
	mockPassword(t, "byEmail$2")
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-username", "jane@coachdesk.test"}))
	refreshed, err = cli.usrRepo.GetUserByID(usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("byEmail$2"))
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var called bool
	migrateFunc = func(db *sql.DB) error {
		called = true
		return nil
	}
	t.Cleanup(func() { migrateFunc = database.Migrate })

	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.True(t, called)
}

func Test_commandLine_sweepReminders(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	reminder.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { reminder.NowFunc = time.Now })

	cli, remRepo := setup(t)
	rem, err := remRepo.CreateReminder(reminder.Reminder{
		UserID: "usr1", Title: "due", OccursAt: now.Add(time.Minute), Timezone: "UTC",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, cli.run([]string{"admin", "sweepreminders"}))

	saved, err := remRepo.GetReminderByID(rem.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsActive)
}
