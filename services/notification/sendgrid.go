package notifsvc

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lenswise/coachdesk/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// AddressResolver maps a notification's UserID to a deliverable email address.
type AddressResolver func(userID string) (mail.Address, error)

type sendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	resolve    AddressResolver
	logger     core.Logger
}

var _ core.Notifier = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, resolve AddressResolver, logger core.Logger) *sendgridService {
	return &sendgridService{
		key:        conf.SendgridApiKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		resolve:    resolve,
		logger:     logger,
	}
}

func (svc sendgridService) Notify(notifications ...*core.Notification) {
	for _, notif := range notifications {
		notif := notif
		go func() {
			to, err := svc.resolve(notif.UserID)
			if err != nil {
				svc.logger.Error(fmt.Sprintf("resolving notification recipient %s: %v", notif.UserID, err), err)
				return
			}
			svc.send(*notif, to)
		}()
	}
}

func (svc sendgridService) prepare(notif core.Notification, to mail.Address) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + notif.Title
	p.AddTos(sgmail.NewEmail(to.Name, to.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", notif.Message))
	return m
}

func (svc sendgridService) send(notif core.Notification, to mail.Address) {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(notif, to))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending notification: %v", err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending notification - status: %d - Body: %s", res.StatusCode, res.Body))
	}
}
