package services

import (
	"strings"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// ObservationService handles user-submitted sightings (the "content" surface)
// and the reviewer moderation flow.
type ObservationService struct {
	DB      *gorm.DB
	Rewards *RewardService
}

func NewObservationService(db *gorm.DB, rewards *RewardService) *ObservationService {
	return &ObservationService{DB: db, Rewards: rewards}
}

// SubmitInput carries an observation submission. Coordinates are pointers so a
// missing field is distinguishable from 0,0 (a real place in the Gulf of Guinea).
type SubmitInput struct {
	Title       string
	SpeciesName string
	Description string
	Latitude    *float64
	Longitude   *float64
	PhotoURL    string
}

var titleCaser = cases.Title(language.English)

// Submit validates, stores, and rewards an observation. Validation failures
// happen before any state change.
func (s *ObservationService) Submit(externalUserID string, in SubmitInput) (*models.Observation, *RewardResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(in.SpeciesName) == "" {
		return nil, nil, &ValidationError{Field: "species_name", Reason: "required"}
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, nil, &ValidationError{Field: "coordinates", Reason: "latitude and longitude are required"}
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return nil, nil, &ValidationError{Field: "latitude", Reason: "out of range"}
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return nil, nil, &ValidationError{Field: "longitude", Reason: "out of range"}
	}

	id := uuid.NewString()
	obs := models.Observation{
		ID:             id,
		ExternalUserID: externalUserID,
		Title:          strings.TrimSpace(in.Title),
		Slug:           slug.Make(in.Title) + "-" + id[:8],
		SpeciesName:    titleCaser.String(strings.ToLower(strings.TrimSpace(in.SpeciesName))),
		Description:    in.Description,
		Latitude:       *in.Latitude,
		Longitude:      *in.Longitude,
		PhotoURL:       in.PhotoURL,
		ReviewStatus:   models.ReviewStatusPending,
		XPEarned:       s.Rewards.Weights.ObservationXP,
	}

	var result *RewardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Rewards.ensureProgressTx(tx, externalUserID); err != nil {
			return err
		}
		if err := tx.Create(&obs).Error; err != nil {
			return storeErr("create observation", err)
		}
		if err := tx.Model(&models.UserProgress{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumn("total_observations", gorm.Expr("total_observations + 1")).Error; err != nil {
			return storeErr("bump observation counter", err)
		}
		r, err := s.Rewards.awardTx(tx, externalUserID, models.ActionContentSubmitted,
			s.Rewards.Weights.ObservationXP, "Submitted observation: "+obs.Title,
			map[string]interface{}{"observation_id": obs.ID, "species": obs.SpeciesName})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &obs, result, nil
}

// Review verdicts. "Rejected" and "disputed" are separate statuses on purpose:
// a reviewer turning a submission down is not the same thing as the submitter
// contesting that decision, and queries must be able to tell them apart.
const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
	VerdictDispute = "dispute"
)

// Review applies a moderation verdict. Allowed transitions:
// pending → approved/rejected/disputed; disputed → approved/rejected.
// Approved and rejected are terminal.
func (s *ObservationService) Review(observationID, reviewerID string, roles []string, verdict, note string) (*models.Observation, error) {
	if !hasRole(roles, "reviewer") && !hasRole(roles, "admin") {
		return nil, &PermissionError{Action: "review observations"}
	}

	var target string
	var allowedFrom []string
	switch verdict {
	case VerdictApprove:
		target = models.ReviewStatusApproved
		allowedFrom = []string{models.ReviewStatusPending, models.ReviewStatusDisputed}
	case VerdictReject:
		target = models.ReviewStatusRejected
		allowedFrom = []string{models.ReviewStatusPending, models.ReviewStatusDisputed}
	case VerdictDispute:
		target = models.ReviewStatusDisputed
		allowedFrom = []string{models.ReviewStatusPending}
	default:
		return nil, &ValidationError{Field: "verdict", Reason: "must be approve, reject or dispute"}
	}

	res := s.DB.Model(&models.Observation{}).
		Where("id = ? AND review_status IN ?", observationID, allowedFrom).
		Updates(map[string]interface{}{
			"review_status": target,
			"reviewed_by":   reviewerID,
			"review_note":   note,
		})
	if res.Error != nil {
		return nil, storeErr("update review status", res.Error)
	}
	if res.RowsAffected == 0 {
		var obs models.Observation
		if err := s.DB.Where("id = ?", observationID).First(&obs).Error; err != nil {
			return nil, &NotFoundError{Resource: "observation", ID: observationID}
		}
		return nil, &ConflictError{Resource: "observation", Reason: "review status is already " + obs.ReviewStatus}
	}

	var obs models.Observation
	if err := s.DB.Where("id = ?", observationID).First(&obs).Error; err != nil {
		return nil, storeErr("refetch observation", err)
	}
	return &obs, nil
}

// ListByUser returns a user's observations, newest first.
func (s *ObservationService) ListByUser(externalUserID string) ([]models.Observation, error) {
	var obs []models.Observation
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").Find(&obs).Error; err != nil {
		return nil, storeErr("fetch observations", err)
	}
	return obs, nil
}

// GetBySlug returns a single observation.
func (s *ObservationService) GetBySlug(slugStr string) (*models.Observation, error) {
	var obs models.Observation
	if err := s.DB.Where("slug = ?", slugStr).First(&obs).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "observation", ID: slugStr}
		}
		return nil, storeErr("fetch observation", err)
	}
	return &obs, nil
}
