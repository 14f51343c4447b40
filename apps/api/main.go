package main

import (
	"context"
	"log"
	"net/mail"
	"os"
	"os/signal"
	"syscall"

	"github.com/lenswise/coachdesk/apps/api/echo"
	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/core/todo"
	"github.com/lenswise/coachdesk/core/user"
	"github.com/lenswise/coachdesk/services/logger"
	"github.com/lenswise/coachdesk/services/notification"
	"github.com/lenswise/coachdesk/storage/database"
	"github.com/lenswise/coachdesk/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" - ", log.LstdFlags|log.Lshortfile)

	var appLogger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		appLogger = logsvc.NewStdLogger(std)
	} else {
		appLogger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		appLogger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	// set up validation
	validate := core.NewValidator()
	reminder.RegisterValidators(validate)
	user.RegisterValidators(validate)

	// set up repos & services
	userRepo := sqlxrepos.NewUserRepository(db)
	remRepo := sqlxrepos.NewReminderRepository(db)
	todoRepo := sqlxrepos.NewTodoRepository(db)

	userSvc := user.NewService(validate, userRepo)

	var notifier core.Notifier
	if conf.Debug || conf.SendgridApiKey == "" {
		notifier = notifsvc.NewConsoleService(conf)
	} else {
		notifier = notifsvc.NewSendgridService(conf, resolveAddress(userSvc), appLogger)
	}

	remSvc := reminder.NewService(validate, remRepo, notifier, appLogger, conf.Reminder.DueWindow)
	todoSvc := todo.NewService(validate, todoRepo)

	// background due-reminder sweeps
	sweeper := reminder.NewSweeper(remSvc, conf.Reminder.SweepInterval, appLogger)
	sweeper.Start()
	defer sweeper.Stop()

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:     conf.Server.Address(),
		Debug:       conf.Debug,
		TestMode:    conf.TestMode,
		ReminderSvc: remSvc,
		TodoSvc:     todoSvc,
		UserSvc:     userSvc,
		Logger:      appLogger,
	})
	go app.Start()

	// graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		appLogger.Error("stopping server", err)
	}
}

// resolveAddress looks up a notification recipient's email address.
func resolveAddress(svc *user.Service) notifsvc.AddressResolver {
	return func(userID string) (mail.Address, error) {
		usr, err := svc.GetByID(userID)
		if err != nil {
			return mail.Address{}, err
		}
		return mail.Address{Name: usr.Name, Address: usr.Email}, nil
	}
}
