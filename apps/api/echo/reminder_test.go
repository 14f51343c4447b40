package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenswise/coachdesk/core/reminder"
	"github.com/lenswise/coachdesk/services/notification"
)

func TestReminderCreateAPI(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")

	tests := []httpTest{
		{
			name: "bare local time", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"title":         "Call the Dubois family",
				"reminder_date": "2024-06-02",
				"reminder_time": "09:30",
				"timezone":      "Europe/Paris",
			}),
			wantCode: http.StatusCreated,
		},
		{
			name: "full instant", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"title":         "Send gallery link",
				"reminder_date": "2024-06-02",
				"reminder_time": "2024-06-02T14:00:00Z",
			}),
			wantCode: http.StatusCreated,
		},
		{
			name: "missing user", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"title":         "orphan",
				"reminder_date": "2024-06-02",
				"reminder_time": "09:30",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"user_id": "this field is required"}),
		},
		{
			name: "missing title", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"reminder_date": "2024-06-02",
				"reminder_time": "09:30",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "in the past", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"title":         "too late",
				"reminder_date": "2024-05-01",
				"reminder_time": "09:30",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"reminder_date": "a reminder cannot be set in the past"}),
		},
		{
			name: "malformed time", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"title":         "bad clock",
				"reminder_date": "2024-06-02",
				"reminder_time": "9h30",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "malformed clock time, expected HH:MM or an RFC3339 instant"}),
		},
		{
			name: "recurring without pattern", method: http.MethodPost, path: "/v1/reminders",
			body: marshallObj(t, map[string]interface{}{
				"user_id":       usr.ID,
				"title":         "repeat me",
				"reminder_date": "2024-06-02",
				"reminder_time": "09:30",
				"is_recurring":  true,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"recurring_pattern": "a recurrence pattern is required for recurring reminders"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestReminderCreateNormalizesToUTC(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")

	body := marshallObj(t, map[string]interface{}{
		"user_id":       usr.ID,
		"title":         "Call the Dubois family",
		"reminder_date": "2024-06-02",
		"reminder_time": "09:30",
		"timezone":      "Europe/Paris", // UTC+2 in June
	})
	req, rec := newRequest(http.MethodPost, "/v1/reminders", body)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var rem reminder.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rem))
	assert.True(t, rem.OccursAt.Equal(time.Date(2024, time.June, 2, 7, 30, 0, 0, time.UTC)))
	assert.True(t, rem.IsActive)
}

func TestReminderDueAndProcessAPI(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")

	mk := func(title string, occursAt time.Time, recurring bool, pattern string) reminder.Reminder {
		rem, err := env.remRepo.CreateReminder(reminder.Reminder{
			UserID: usr.ID, Title: title, OccursAt: occursAt, Timezone: "UTC",
			IsActive: true, IsRecurring: recurring, Pattern: pattern,
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		return rem
	}

	soon := mk("due soon", now.Add(2*time.Minute), false, "")
	weekly := mk("weekly sync", now.Add(4*time.Minute), true, reminder.PatternWeekly)
	mk("later today", now.Add(2*time.Hour), false, "")

	// GET /due
	req, rec := newRequest(http.MethodGet, "/v1/reminders/due")
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var due []reminder.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Len(t, due, 2)

	// a wider window catches the third one
	req, rec = newRequest(http.MethodGet, "/v1/reminders/due?window=3h")
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Len(t, due, 3)

	// POST /process fires notifications and rolls/deactivates
	req, rec = newRequest(http.MethodPost, "/v1/reminders/process")
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res reminder.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, reminder.ProcessResult{Processed: 2, Sent: 2}, res)
	assert.Len(t, notifsvc.SentNotifications, 2)

	fired, err := env.remRepo.GetReminderByID(soon.ID)
	require.NoError(t, err)
	assert.False(t, fired.IsActive)

	rolled, err := env.remRepo.GetReminderByID(weekly.ID)
	require.NoError(t, err)
	assert.True(t, rolled.IsActive)
	assert.True(t, rolled.OccursAt.Equal(weekly.OccursAt.AddDate(0, 0, 7)))
}

func TestReminderStatsAPI(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")

	mk := func(occursAt time.Time, active, recurring bool) {
		_, err := env.remRepo.CreateReminder(reminder.Reminder{
			UserID: usr.ID, Title: "r", OccursAt: occursAt, Timezone: "UTC",
			IsActive: active, IsRecurring: recurring,
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}
	mk(now.Add(time.Hour), true, false)   // due today
	mk(now.Add(-time.Hour), true, true)   // overdue, today
	mk(now.AddDate(0, 0, 3), true, false) // later
	mk(now.Add(-time.Hour), false, false) // completed

	req, rec := newRequest(http.MethodGet, "/v1/reminders/stats?user_id="+usr.ID)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats reminder.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, reminder.Stats{
		Total: 4, Active: 3, Recurring: 1, DueToday: 2, Overdue: 1, Completed: 1,
	}, stats)

	// user_id is mandatory
	req, rec = newRequest(http.MethodGet, "/v1/reminders/stats")
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReminderDetailAPI(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")

	rem, err := env.remRepo.CreateReminder(reminder.Reminder{
		UserID: usr.ID, Title: "Edit wedding photos", OccursAt: now.Add(time.Hour),
		Timezone: "UTC", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	// retrieve
	req, rec := newRequest(http.MethodGet, "/v1/reminders/"+rem.ID)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// update title and move the occurrence
	body := marshallObj(t, map[string]interface{}{
		"title":         "Edit and deliver wedding photos",
		"reminder_date": "2024-06-03",
		"reminder_time": "10:00",
	})
	req, rec = newRequest(http.MethodPut, "/v1/reminders/"+rem.ID, body)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved reminder.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "Edit and deliver wedding photos", saved.Title)
	assert.True(t, saved.OccursAt.Equal(time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)))

	// unknown ID is a 404
	req, rec = newRequest(http.MethodGet, "/v1/reminders/nope")
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// delete
	req, rec = newRequest(http.MethodDelete, "/v1/reminders/"+rem.ID)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = env.remRepo.GetReminderByID(rem.ID)
	assert.Equal(t, reminder.ErrNotFound, err)
}

func TestReminderQueryAPI(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	env := setup(t)
	usr := env.createUser(t, "Jane Awesome", "jane@coachdesk.test")
	other := env.createUser(t, "Bob Studio", "bob@coachdesk.test")

	for i, uid := range []string{usr.ID, usr.ID, other.ID} {
		_, err := env.remRepo.CreateReminder(reminder.Reminder{
			UserID: uid, Title: fmt.Sprintf("reminder %d", i), OccursAt: now.Add(time.Hour),
			Timezone: "UTC", IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	req, rec := newRequest(http.MethodGet, "/v1/reminders?user_id="+usr.ID)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var rems []reminder.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rems))
	assert.Len(t, rems, 2)
}
