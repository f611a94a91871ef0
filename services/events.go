package services

import (
	"log"
	"time"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// EventService owns group conservation events and the one-way completion flow
// that pays out participant XP.
type EventService struct {
	DB      *gorm.DB
	Rewards *RewardService
}

func NewEventService(db *gorm.DB, rewards *RewardService) *EventService {
	return &EventService{DB: db, Rewards: rewards}
}

// CreateEventInput is what the organizer supplies.
type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	Latitude    float64
	Longitude   float64
	StartTime   time.Time
	EndTime     time.Time
}

func (s *EventService) CreateEvent(organizerID string, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if in.StartTime.IsZero() {
		return nil, &ValidationError{Field: "start_time", Reason: "required"}
	}
	if !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		return nil, &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}

	id := uuid.NewString()
	event := models.Event{
		ID:          id,
		OrganizerID: organizerID,
		Title:       in.Title,
		Slug:        slug.Make(in.Title) + "-" + id[:8],
		Description: in.Description,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      models.EventStatusUpcoming,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		return nil, storeErr("create event", err)
	}
	log.Printf("📅 event created: %s (%s) by %s", event.Title, event.Slug, organizerID)
	return &event, nil
}

// Register adds a participant with status "registered". Registering twice is a
// benign conflict — the row already says what the caller wants it to say.
func (s *EventService) Register(eventID, externalUserID string) (*models.EventParticipation, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCancelled {
		return nil, &ConflictError{Resource: "event", Reason: "registration closed"}
	}

	p := models.EventParticipation{
		ID:             uuid.NewString(),
		EventID:        eventID,
		ExternalUserID: externalUserID,
		Status:         models.ParticipationRegistered,
	}
	if err := s.DB.Create(&p).Error; err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Resource: "participation", Reason: "already registered", Benign: true}
		}
		return nil, storeErr("create participation", err)
	}
	return &p, nil
}

// MarkAttended flips a registered participant to attended. Organizer/admin only,
// and never after the event has completed.
func (s *EventService) MarkAttended(eventID, participantID, callerID string, roles []string) error {
	event, err := s.getEvent(eventID)
	if err != nil {
		return err
	}
	if callerID != event.OrganizerID && !hasRole(roles, "admin") {
		return &PermissionError{Action: "mark attendance"}
	}
	if event.Status == models.EventStatusCompleted {
		return &ConflictError{Resource: "event", Reason: "event already completed"}
	}

	res := s.DB.Model(&models.EventParticipation{}).
		Where("event_id = ? AND external_user_id = ? AND status = ?",
			eventID, participantID, models.ParticipationRegistered).
		Update("status", models.ParticipationAttended)
	if res.Error != nil {
		return storeErr("mark attended", res.Error)
	}
	if res.RowsAffected == 0 {
		var p models.EventParticipation
		if err := s.DB.Where("event_id = ? AND external_user_id = ?", eventID, participantID).
			First(&p).Error; err != nil {
			return &NotFoundError{Resource: "participation", ID: participantID}
		}
		if p.Status == models.ParticipationAttended {
			return nil // already attended — idempotent
		}
		return &ConflictError{Resource: "participation", Reason: "participation is " + p.Status}
	}
	return nil
}

// CompletionSummary reports what event completion paid out.
type CompletionSummary struct {
	EventID              string `json:"event_id"`
	ParticipantsRewarded int    `json:"participants_rewarded"`
	XPPerParticipant     int64  `json:"xp_per_participant"`
}

// CompleteEvent performs the one-way upcoming/active → completed transition and
// awards the flat per-participant XP to attended participants only. The status
// transition is a conditional UPDATE — zero rows affected means someone already
// completed (or cancelled) it, which is a hard conflict, not a silent skip.
func (s *EventService) CompleteEvent(eventID, callerID string, roles []string) (*CompletionSummary, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if callerID != event.OrganizerID && !hasRole(roles, "admin") {
		return nil, &PermissionError{Action: "complete event"}
	}

	summary := &CompletionSummary{EventID: eventID, XPPerParticipant: s.Rewards.Weights.EventXP}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Event{}).
			Where("id = ? AND status IN ?", eventID,
				[]string{models.EventStatusUpcoming, models.EventStatusActive}).
			Updates(map[string]interface{}{
				"status":       models.EventStatusCompleted,
				"completed_at": now,
			})
		if res.Error != nil {
			return storeErr("complete event", res.Error)
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Resource: "event", Reason: "already completed or cancelled"}
		}

		var attendees []models.EventParticipation
		if err := tx.Where("event_id = ? AND status = ? AND xp_awarded = 0",
			eventID, models.ParticipationAttended).Find(&attendees).Error; err != nil {
			return storeErr("fetch attendees", err)
		}

		for _, p := range attendees {
			// xp_awarded is written exactly once; the guard in the WHERE clause
			// makes a replay of this loop a no-op for already-paid rows.
			res := tx.Model(&models.EventParticipation{}).
				Where("id = ? AND xp_awarded = 0", p.ID).
				Update("xp_awarded", s.Rewards.Weights.EventXP)
			if res.Error != nil {
				return storeErr("set participant xp", res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}

			if _, err := s.Rewards.ensureProgressTx(tx, p.ExternalUserID); err != nil {
				return err
			}
			if err := tx.Model(&models.UserProgress{}).
				Where("external_user_id = ?", p.ExternalUserID).
				UpdateColumn("total_events", gorm.Expr("total_events + 1")).Error; err != nil {
				return storeErr("bump event counter", err)
			}

			if _, err := s.Rewards.awardTx(tx, p.ExternalUserID, models.ActionEventCompleted,
				s.Rewards.Weights.EventXP, "Completed event: "+event.Title,
				map[string]interface{}{"event_id": eventID}); err != nil {
				return err
			}
			summary.ParticipantsRewarded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ event completed: %s — %d participant(s) rewarded", event.Title, summary.ParticipantsRewarded)
	return summary, nil
}

// ActivateDueEvents flips upcoming events whose start time has passed to
// active. Called from the scheduler.
func (s *EventService) ActivateDueEvents() (int64, error) {
	res := s.DB.Model(&models.Event{}).
		Where("status = ? AND start_time <= ?", models.EventStatusUpcoming, time.Now()).
		Update("status", models.EventStatusActive)
	if res.Error != nil {
		return 0, storeErr("activate events", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *EventService) getEvent(eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "event", ID: eventID}
		}
		return nil, storeErr("fetch event", err)
	}
	return &event, nil
}

// GetEvent returns an event with its participant count.
func (s *EventService) GetEvent(eventID string) (*models.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.EventParticipation{}).
		Where("event_id = ? AND status <> ?", eventID, models.ParticipationCancelled).
		Count(&event.ParticipantCount).Error; err != nil {
		return nil, storeErr("count participants", err)
	}
	return event, nil
}

// ListEvents returns events, optionally filtered by status.
func (s *EventService) ListEvents(status string) ([]models.Event, error) {
	q := s.DB.Order("start_time ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, storeErr("fetch events", err)
	}
	return events, nil
}
