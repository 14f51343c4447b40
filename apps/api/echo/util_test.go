package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/core/todo"
	"github.com/lenswise/coachdesk/core/user"
	"github.com/lenswise/coachdesk/services/notification"
	"github.com/lenswise/coachdesk/storage/database/dummydb"
)

type testEnv struct {
	server   Server
	userRepo user.Repository
	remRepo  reminder.Repository
	todoRepo todo.Repository
	userSvc  *user.Service
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()
	notifsvc.ClearSentNotifications()

	db, err := dummydb.Open()
	require.NoError(t, err)

	validate := core.NewValidator()
	reminder.RegisterValidators(validate)
	user.RegisterValidators(validate)

	conf := &core.Config{AppName: "CoachDesk"}
	notifier := notifsvc.NewConsoleServiceMock(conf)
	logger := nopLogger{}

	env := &testEnv{
		userRepo: dummydb.NewUserRepository(db),
		remRepo:  dummydb.NewReminderRepository(db),
		todoRepo: dummydb.NewTodoRepository(db),
	}
	env.userSvc = user.NewService(validate, env.userRepo)
	remSvc := reminder.NewService(validate, env.remRepo, notifier, logger, 5*time.Minute)
	todoSvc := todo.NewService(validate, env.todoRepo)

	env.server = NewServer(&Options{
		TestMode:       true,
		DisableReqLogs: true,
		ReminderSvc:    remSvc,
		TodoSvc:        todoSvc,
		UserSvc:        env.userSvc,
		Logger:         logger,
	})
	return env
}

func (env *testEnv) createUser(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := env.userSvc.Create(user.NewUser{
		Name: name, Email: email,
		Password: "LoneR@ng3r", PasswordConfirm: "LoneR@ng3r",
	})
	require.NoError(t, err)
	return usr
}

func mockNow(t *testing.T, instant time.Time) {
	t.Helper()
	reminder.NowFunc = func() time.Time { return instant }
	todo.NowFunc = reminder.NowFunc
	t.Cleanup(func() {
		reminder.NowFunc = time.Now
		todo.NowFunc = time.Now
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
