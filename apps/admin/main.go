package main

import (
	"log"
	"os"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/core/user"
	"github.com/lenswise/coachdesk/services/logger"
	"github.com/lenswise/coachdesk/services/notification"
	"github.com/lenswise/coachdesk/storage/database"
	"github.com/lenswise/coachdesk/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	err := database.CreateIfNotExist(conf)
	errAndDie(err)
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up validation & services
	validate := core.NewValidator()
	reminder.RegisterValidators(validate)
	user.RegisterValidators(validate)

	remRepo := sqlxrepos.NewReminderRepository(db)
	remSvc := reminder.NewService(
		validate, remRepo, notifsvc.NewConsoleService(conf), logsvc.NewStdLogger(logger), conf.Reminder.DueWindow)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
		remSvc:  remSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
