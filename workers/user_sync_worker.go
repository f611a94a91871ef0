package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"conservation-tracker/models"
	"conservation-tracker/services"
	"conservation-tracker/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON response from the profile sync service.
type MirroredUserFromProfile struct {
	ID                string     `json:"id"`
	ExternalID        string     `json:"external_id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Bio               *string    `json:"bio,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	AccountStatus     string     `json:"account_status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// GetUserChangesResponse is the top-level structure of the sync service response.
type GetUserChangesResponse struct {
	Users []MirroredUserFromProfile `json:"users"`
}

// ProfileSyncWorker mirrors profile-service users into profile_users and makes
// sure each of them has a UserProgress row (xp=0, level=1 at account creation —
// the progress lifecycle starts here, not in any UI-facing call).
type ProfileSyncWorker struct {
	db           *gorm.DB
	rewards      *services.RewardService
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
}

func NewProfileSyncWorker(db *gorm.DB, rewards *services.RewardService, syncServiceBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		rewards:      rewards,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (profile service → profile_users)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM profile_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches user changes since the given time and upserts them locally.
func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid sync service URL '%s': %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.serviceToken)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sync service returned %d: %s", resp.StatusCode, body)
	}

	var payload GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode sync response: %w", err)
	}
	if len(payload.Users) == 0 {
		return nil
	}

	for _, u := range payload.Users {
		mirror := models.ProfileUser{
			ID:                u.ID,
			ExternalUserID:    u.ExternalID,
			Username:          u.Username,
			Email:             u.Email,
			Bio:               u.Bio,
			ProfilePictureURL: u.ProfilePictureURL,
			IsBanned:          u.AccountStatus == "banned",
		}
		err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "bio", "profile_picture_url", "is_banned", "updated_at",
			}),
		}).Create(&mirror).Error
		if err != nil {
			log.Printf("⚠️ upsert profile user %s failed: %v", u.ExternalID, err)
			continue
		}

		if _, err := w.rewards.EnsureProgressRecord(u.ExternalID); err != nil {
			log.Printf("⚠️ ensure progress for %s failed: %v", u.ExternalID, err)
		}
	}

	log.Printf("[SYNC] 👥 mirrored %d profile user(s)", len(payload.Users))
	return nil
}
