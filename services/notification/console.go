package notifsvc

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lenswise/coachdesk/core"
)

var (
	SentNotifications = make([]core.Notification, 0)
	mu                sync.Mutex
)

// ClearSentNotifications resets the recorded notifications between tests.
func ClearSentNotifications() {
	mu.Lock()
	defer mu.Unlock()
	SentNotifications = SentNotifications[:0]
}

type consoleService struct {
	appName       string
	disableOutput bool
}

var _ core.Notifier = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.Notifier {
	return &consoleService{appName: conf.AppName}
}

func (svc consoleService) Notify(notifications ...*core.Notification) {
	for _, notif := range notifications {
		go svc.send(notif)
	}
}

func (svc consoleService) send(notif *core.Notification) {
	mu.Lock()
	SentNotifications = append(SentNotifications, *notif)
	mu.Unlock()

	if svc.disableOutput {
		return
	}
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "[%s] notification\r\n", svc.appName)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "To: %s\r\n", notif.UserID)
	_, _ = fmt.Fprintf(body, "Priority: %s\r\n", notif.Priority)
	_, _ = fmt.Fprintf(body, "Title: %s\r\n", notif.Title)
	_, _ = fmt.Fprintf(body, "%s\r\n", notif.Message)
	log.Println(body.String())
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) core.Notifier {
	return &consoleServiceMock{
		consoleService: consoleService{appName: conf.AppName, disableOutput: true},
	}
}

func (svc *consoleServiceMock) Notify(notifications ...*core.Notification) {
	for _, notif := range notifications {
		// run synchronously
		svc.send(notif)
	}
}
