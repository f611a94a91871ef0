package services

import (
	"errors"
	"testing"
	"time"

	"conservation-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, s *EventService, organizerID string) *models.Event {
	t.Helper()
	event, err := s.CreateEvent(organizerID, CreateEventInput{
		Title:     "River Cleanup",
		Location:  "Willow Creek",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	return event
}

func TestCreateEvent_Validation(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)

	var verr *ValidationError
	_, err := events.CreateEvent("org-1", CreateEventInput{StartTime: time.Now()})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	_, err = events.CreateEvent("org-1", CreateEventInput{Title: "Cleanup"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "start_time", verr.Field)

	start := time.Now()
	_, err = events.CreateEvent("org-1", CreateEventInput{
		Title:     "Cleanup",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "end_time", verr.Field)
}

func TestCreateEvent_SlugIsUniquePerEvent(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)

	a := seedEvent(t, events, "org-1")
	b := seedEvent(t, events, "org-1")
	assert.NotEqual(t, a.Slug, b.Slug)
	assert.Contains(t, a.Slug, "river-cleanup")
}

func TestRegister_DuplicateIsBenign(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.Register(event.ID, "user-1")
	require.NoError(t, err)

	_, err = events.Register(event.ID, "user-1")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.True(t, conflict.Benign)
}

func TestRegister_ClosedAfterCompletion(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.CompleteEvent(event.ID, "org-1", nil)
	require.NoError(t, err)

	_, err = events.Register(event.ID, "user-1")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.False(t, conflict.Benign)
}

func TestMarkAttended_Permissions(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.Register(event.ID, "user-1")
	require.NoError(t, err)

	var perr *PermissionError
	err = events.MarkAttended(event.ID, "user-1", "stranger", nil)
	require.True(t, errors.As(err, &perr))

	// organizer may; repeating it is an idempotent no-op
	require.NoError(t, events.MarkAttended(event.ID, "user-1", "org-1", nil))
	require.NoError(t, events.MarkAttended(event.ID, "user-1", "org-1", nil))

	// admin role works without being the organizer
	_, err = events.Register(event.ID, "user-2")
	require.NoError(t, err)
	require.NoError(t, events.MarkAttended(event.ID, "user-2", "stranger", []string{"admin"}))
}

func TestCompleteEvent_PaysAttendedOnly(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.Register(event.ID, "attendee")
	require.NoError(t, err)
	_, err = events.Register(event.ID, "no-show")
	require.NoError(t, err)
	require.NoError(t, events.MarkAttended(event.ID, "attendee", "org-1", nil))

	summary, err := events.CompleteEvent(event.ID, "org-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ParticipantsRewarded)
	assert.Equal(t, rewards.Weights.EventXP, summary.XPPerParticipant)

	prog, err := rewards.EnsureProgressRecord("attendee")
	require.NoError(t, err)
	assert.Equal(t, rewards.Weights.EventXP, prog.TotalXP)
	assert.Equal(t, int64(1), prog.TotalEvents)

	// first completed event grants the badge
	var award models.BadgeAward
	require.NoError(t, rewards.DB.
		Where("external_user_id = ? AND badge_code = ?", "attendee", "FIRST_EVENT").
		First(&award).Error)

	// the no-show got nothing
	noShow, err := rewards.EnsureProgressRecord("no-show")
	require.NoError(t, err)
	assert.Equal(t, int64(0), noShow.TotalXP)

	// xp_awarded written on the participation row exactly once
	var p models.EventParticipation
	require.NoError(t, rewards.DB.
		Where("event_id = ? AND external_user_id = ?", event.ID, "attendee").
		First(&p).Error)
	assert.Equal(t, rewards.Weights.EventXP, p.XPAwarded)
}

func TestCompleteEvent_SecondCallIsHardConflict(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.Register(event.ID, "attendee")
	require.NoError(t, err)
	require.NoError(t, events.MarkAttended(event.ID, "attendee", "org-1", nil))

	_, err = events.CompleteEvent(event.ID, "org-1", nil)
	require.NoError(t, err)

	_, err = events.CompleteEvent(event.ID, "org-1", nil)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.False(t, conflict.Benign)

	// no double payout
	prog, err := rewards.EnsureProgressRecord("attendee")
	require.NoError(t, err)
	assert.Equal(t, rewards.Weights.EventXP, prog.TotalXP)
}

func TestCompleteEvent_RequiresOrganizerOrAdmin(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	var perr *PermissionError
	_, err := events.CompleteEvent(event.ID, "stranger", []string{"reviewer"})
	require.True(t, errors.As(err, &perr))

	_, err = events.CompleteEvent(event.ID, "stranger", []string{"admin"})
	require.NoError(t, err)
}

func TestActivateDueEvents(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)

	due := seedEvent(t, events, "org-1") // starts an hour ago
	future, err := events.CreateEvent("org-1", CreateEventInput{
		Title:     "Owl Survey",
		StartTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	n, err := events.ActivateDueEvents()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fresh, err := events.GetEvent(due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusActive, fresh.Status)

	fresh, err = events.GetEvent(future.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusUpcoming, fresh.Status)
}

func TestGetEvent_CountsParticipants(t *testing.T) {
	rewards := newTestRewards(t)
	events := NewEventService(rewards.DB, rewards)
	event := seedEvent(t, events, "org-1")

	_, err := events.Register(event.ID, "user-1")
	require.NoError(t, err)
	_, err = events.Register(event.ID, "user-2")
	require.NoError(t, err)

	fresh, err := events.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.ParticipantCount)
}
