package reminder

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenswise/coachdesk/core"
)

// fakeRepository is a minimal in-memory Repository recording call counts.
type fakeRepository struct {
	sync.Mutex
	table   map[string]*Reminder
	pkCount int

	createCalls int
	updateCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{table: make(map[string]*Reminder)}
}

func (repo *fakeRepository) query() []Reminder {
	rems := make([]Reminder, 0, len(repo.table))
	for _, rem := range repo.table {
		rems = append(rems, *rem)
	}
	return rems
}

func (repo *fakeRepository) CreateReminder(rem Reminder) (Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	repo.createCalls++
	repo.pkCount++
	rem.ID = strconv.Itoa(repo.pkCount)
	repo.table[rem.ID] = &rem
	return rem, nil
}

func (repo *fakeRepository) GetReminderByID(id string) (Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	if rem, ok := repo.table[id]; ok {
		return *rem, nil
	}
	return Reminder{}, ErrNotFound
}

func (repo *fakeRepository) QueryAllReminders() ([]Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	return repo.query(), nil
}

func (repo *fakeRepository) QueryRemindersByUser(userID string) ([]Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	var rems []Reminder
	for _, rem := range repo.query() {
		if rem.UserID == userID {
			rems = append(rems, rem)
		}
	}
	return rems, nil
}

func (repo *fakeRepository) FilterReminders(filter QueryFilter, _ ...core.DBOrdering) ([]Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	var rems []Reminder
	for _, rem := range repo.query() {
		if filter.UserID != "" && rem.UserID != filter.UserID {
			continue
		}
		if filter.IsActive != nil && rem.IsActive != *filter.IsActive {
			continue
		}
		rems = append(rems, rem)
	}
	return rems, nil
}

func (repo *fakeRepository) UpdateReminder(rem Reminder, isActive *bool) (Reminder, error) {
	repo.Lock()
	defer repo.Unlock()
	repo.updateCalls++
	origRem, ok := repo.table[rem.ID]
	if !ok {
		return Reminder{}, ErrNotFound
	}
	rem.IsActive = origRem.IsActive
	if isActive != nil {
		rem.IsActive = *isActive
	}
	repo.table[rem.ID] = &rem
	return rem, nil
}

func (repo *fakeRepository) DeleteRemindersByID(ids ...string) error {
	repo.Lock()
	defer repo.Unlock()
	for _, id := range ids {
		delete(repo.table, id)
	}
	return nil
}

// fakeNotifier records dispatched notifications synchronously.
type fakeNotifier struct {
	sync.Mutex
	sent []core.Notification
}

func (n *fakeNotifier) Notify(notifications ...*core.Notification) {
	n.Lock()
	defer n.Unlock()
	for _, notif := range notifications {
		n.sent = append(n.sent, *notif)
	}
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	validate := core.NewValidator()
	RegisterValidators(validate)
	return validate
}

func setup(t *testing.T) (*Service, *fakeRepository, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc := NewService(newTestValidator(t), repo, notifier, nopLogger{}, 0)
	return svc, repo, notifier
}

func mockNow(t *testing.T, instant time.Time) {
	t.Helper()
	NowFunc = func() time.Time { return instant }
	t.Cleanup(func() { NowFunc = time.Now })
}

func createReminder(t *testing.T, repo *fakeRepository, userID string, occursAt time.Time, isActive, isRecurring bool, pattern string) Reminder {
	t.Helper()
	now := time.Now().UTC()
	rem, err := repo.CreateReminder(Reminder{
		UserID:      userID,
		Title:       "check in",
		Timezone:    "UTC",
		OccursAt:    occursAt,
		IsActive:    isActive,
		IsRecurring: isRecurring,
		Pattern:     pattern,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return rem
}

func TestServiceCreate(t *testing.T) {
	now := mustParse(t, "2024-01-01T08:00:00Z")
	mockNow(t, now)

	longString := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name     string
		input    NewReminder
		wantErr  bool
		wantVErr bool // expects a validation-shaped error, never a store call
	}{
		{
			name:  "ok one-shot",
			input: NewReminder{Title: "call student", Date: "2024-01-01", Time: "09:00", Timezone: "UTC"},
		},
		{
			name: "ok recurring",
			input: NewReminder{
				Title: "weekly review", Date: "2024-01-02", Time: "10:00", Timezone: "UTC",
				IsRecurring: true, Pattern: PatternWeekly,
			},
		},
		{
			name:  "ok full instant time",
			input: NewReminder{Title: "portfolio review", Date: "2024-01-01", Time: "2024-01-05T16:00:00Z", Timezone: "UTC"},
		},
		{
			name:     "empty title",
			input:    NewReminder{Title: "   ", Date: "2024-01-01", Time: "09:00", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name:     "title too long",
			input:    NewReminder{Title: longString(101), Date: "2024-01-01", Time: "09:00", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name: "description too long",
			input: NewReminder{
				Title: "t", Description: longString(501),
				Date: "2024-01-01", Time: "09:00", Timezone: "UTC",
			},
			wantVErr: true,
		},
		{
			name:     "missing date",
			input:    NewReminder{Title: "t", Time: "09:00", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name:     "missing time",
			input:    NewReminder{Title: "t", Date: "2024-01-01", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name:     "in the past",
			input:    NewReminder{Title: "t", Date: "2024-01-01", Time: "07:00", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name:     "exactly now is rejected",
			input:    NewReminder{Title: "t", Date: "2024-01-01", Time: "08:00", Timezone: "UTC"},
			wantVErr: true,
		},
		{
			name:     "recurring without pattern",
			input:    NewReminder{Title: "t", Date: "2024-01-01", Time: "09:00", Timezone: "UTC", IsRecurring: true},
			wantVErr: true,
		},
		{
			name: "bogus pattern",
			input: NewReminder{
				Title: "t", Date: "2024-01-01", Time: "09:00", Timezone: "UTC",
				IsRecurring: true, Pattern: "fortnightly",
			},
			wantVErr: true,
		},
		{
			name:     "bogus timezone",
			input:    NewReminder{Title: "t", Date: "2024-01-01", Time: "09:00", Timezone: "Mars/Olympus"},
			wantVErr: true,
		},
		{
			name:    "malformed time string",
			input:   NewReminder{Title: "t", Date: "2024-01-01", Time: "morning-ish", Timezone: "UTC"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier := setup(t)
			rem, err := svc.Create("usr1", tt.input)

			if tt.wantVErr || tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, repo.createCalls, "no store call on invalid input")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, rem.ID)
			assert.Equal(t, "usr1", rem.UserID)
			assert.True(t, rem.IsActive)
			assert.Equal(t, time.UTC, rem.OccursAt.Location())

			notifier.Lock()
			defer notifier.Unlock()
			require.Len(t, notifier.sent, 1)
			assert.Equal(t, "usr1", notifier.sent[0].UserID)
			assert.Equal(t, core.NotificationPriorityLow, notifier.sent[0].Priority)
		})
	}
}

func TestServiceCreateValidationErrorKinds(t *testing.T) {
	mockNow(t, mustParse(t, "2024-01-01T08:00:00Z"))
	svc, _, _ := setup(t)

	// a past reminder reports a field-level validation error
	_, err := svc.Create("usr1", NewReminder{Title: "t", Date: "2023-12-31", Time: "09:00", Timezone: "UTC"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "reminder_date", vErr.Fields[0].Field)

	// an unparseable time string is malformed input, not a validation error
	_, err = svc.Create("usr1", NewReminder{Title: "t", Date: "2024-01-01", Time: "whenever", Timezone: "UTC"})
	assert.True(t, core.IsMalformedInput(err))
}

func TestServiceDue(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)

	createReminder(t, repo, "usr1", now.Add(-time.Second), true, false, "")      // just missed
	soon := createReminder(t, repo, "usr1", now.Add(time.Second), true, false, "") // due
	createReminder(t, repo, "usr1", now.Add(10*time.Minute), true, false, "")    // too far out
	createReminder(t, repo, "usr1", now.Add(time.Second), false, false, "")      // inactive
	edge := createReminder(t, repo, "usr1", now.Add(5*time.Minute), true, false, "") // inclusive upper bound

	due, err := svc.Due()
	require.NoError(t, err)
	ids := make([]string, 0, len(due))
	for _, rem := range due {
		ids = append(ids, rem.ID)
	}
	assert.ElementsMatch(t, []string{soon.ID, edge.ID}, ids)
}

func TestServiceProcessDueRecurring(t *testing.T) {
	// scenario: a weekly reminder created for 2024-01-01 09:00 UTC fires and
	// rolls forward to 2024-01-08 09:00 UTC, staying active.
	occursAt := mustParse(t, "2024-01-01T09:00:00Z")
	mockNow(t, occursAt.Add(-time.Minute))
	svc, repo, notifier := setup(t)
	rem := createReminder(t, repo, "usr1", occursAt, true, true, PatternWeekly)

	res, err := svc.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, ProcessResult{Processed: 1, Sent: 1}, res)

	saved, err := repo.GetReminderByID(rem.ID)
	require.NoError(t, err)
	assert.True(t, saved.OccursAt.Equal(mustParse(t, "2024-01-08T09:00:00Z")),
		"got %s", saved.OccursAt)
	assert.True(t, saved.IsActive)

	local, err := saved.LocalOccurrence()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", local.Date)
	assert.Equal(t, "09:00", local.Clock)

	notifier.Lock()
	defer notifier.Unlock()
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, core.NotificationPriorityHigh, notifier.sent[0].Priority)
}

func TestServiceProcessDueOneShot(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)
	rem := createReminder(t, repo, "usr1", now.Add(time.Minute), true, false, "")

	res, err := svc.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, ProcessResult{Processed: 1, Sent: 1}, res)

	saved, err := repo.GetReminderByID(rem.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsActive, "a fired one-shot reminder goes inactive")
}

func TestServiceProcessDueIsolatesFailures(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, notifier := setup(t)

	// recurring reminder with a corrupt stored pattern: rollover fails but
	// the rest of the batch still runs
	bad := createReminder(t, repo, "usr1", now.Add(time.Minute), true, true, "fortnightly")
	good := createReminder(t, repo, "usr2", now.Add(2*time.Minute), true, true, PatternDaily)

	res, err := svc.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Sent)

	savedBad, err := repo.GetReminderByID(bad.ID)
	require.NoError(t, err)
	assert.True(t, savedBad.OccursAt.Equal(now.Add(time.Minute)), "bad reminder left untouched")

	savedGood, err := repo.GetReminderByID(good.ID)
	require.NoError(t, err)
	assert.True(t, savedGood.OccursAt.Equal(now.Add(2*time.Minute).AddDate(0, 0, 1)))

	notifier.Lock()
	defer notifier.Unlock()
	assert.Len(t, notifier.sent, 2)
}

func TestServiceUpdateCombinesDateAndTime(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)
	rem := createReminder(t, repo, "usr1", now.Add(time.Hour), true, false, "")

	// date alone does not move the occurrence
	updated, err := svc.Update(rem.ID, UpdateReminder{Date: "2024-07-01"})
	require.NoError(t, err)
	assert.True(t, updated.OccursAt.Equal(rem.OccursAt))

	// date + bare time are combined in the reminder's timezone
	updated, err = svc.Update(rem.ID, UpdateReminder{Date: "2024-07-01", Time: "09:30"})
	require.NoError(t, err)
	assert.True(t, updated.OccursAt.Equal(mustParse(t, "2024-07-01T09:30:00Z")))

	// a full instant in the time field wins outright
	updated, err = svc.Update(rem.ID, UpdateReminder{Date: "2024-07-01", Time: "2024-08-01T10:00:00Z"})
	require.NoError(t, err)
	assert.True(t, updated.OccursAt.Equal(mustParse(t, "2024-08-01T10:00:00Z")))
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Update("nope", UpdateReminder{Title: "x"})
	assert.Equal(t, ErrNotFound, err)
}

func TestServiceUpdateRecurringNeedsPattern(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)
	rem := createReminder(t, repo, "usr1", now.Add(time.Hour), true, false, "")

	recurring := true
	_, err := svc.Update(rem.ID, UpdateReminder{IsRecurring: &recurring})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Update(rem.ID, UpdateReminder{IsRecurring: &recurring, Pattern: PatternMonthly})
	require.NoError(t, err)
}

func TestServiceStats(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)

	createReminder(t, repo, "usr1", now.Add(time.Hour), true, false, "")                 // active, due today
	createReminder(t, repo, "usr1", now.Add(-time.Hour), true, true, PatternDaily)       // active, overdue, due today, recurring
	createReminder(t, repo, "usr1", now.AddDate(0, 0, 3), true, false, "")               // active, later
	createReminder(t, repo, "usr1", now.Add(-24*time.Hour), false, false, "")            // completed
	createReminder(t, repo, "usr2", now.Add(time.Hour), true, false, "")                 // other user

	stats, err := svc.Stats("usr1")
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Active: 3, Recurring: 1, DueToday: 2, Overdue: 1, Completed: 1}, stats)

	// subset invariants: overdue and dueToday never exceed active
	assert.LessOrEqual(t, stats.Overdue, stats.Active)
	assert.LessOrEqual(t, stats.DueToday, stats.Active)
}

func TestServiceDelete(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")
	mockNow(t, now)
	svc, repo, _ := setup(t)
	rem := createReminder(t, repo, "usr1", now.Add(time.Hour), true, false, "")

	require.NoError(t, svc.Delete(rem.ID))
	_, err := repo.GetReminderByID(rem.ID)
	assert.Equal(t, ErrNotFound, err)
}
