package services

import (
	"log"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BadgeService compares a user's current statistics against the badge catalog
// and grants whatever newly qualifies. It is stateless beyond the badge_awards
// table; the (user, badge) unique index is the only dedupe it relies on.
type BadgeService struct{}

func NewBadgeService() *BadgeService {
	return &BadgeService{}
}

// EvaluateTx runs inside the distributor's transaction. It returns only the
// badges granted by THIS call — a concurrent evaluation may grant the same
// badge first, in which case the duplicate insert is a silent skip here and
// the other caller gets the notification.
func (s *BadgeService) EvaluateTx(tx *gorm.DB, prog *models.UserProgress) ([]models.BadgeDefinition, error) {
	var defs []models.BadgeDefinition
	if err := tx.Find(&defs).Error; err != nil {
		return nil, storeErr("fetch badge catalog", err)
	}

	earned := make(map[string]bool)
	var awards []models.BadgeAward
	if err := tx.Where("external_user_id = ?", prog.ExternalUserID).Find(&awards).Error; err != nil {
		return nil, storeErr("fetch badge awards", err)
	}
	for _, a := range awards {
		earned[a.BadgeCode] = true
	}

	var granted []models.BadgeDefinition
	for _, def := range defs {
		if earned[def.Code] || !s.meetsRequirement(&def, prog) {
			continue
		}

		award := models.BadgeAward{
			ID:             uuid.NewString(),
			ExternalUserID: prog.ExternalUserID,
			BadgeCode:      def.Code,
		}
		if err := tx.Create(&award).Error; err != nil {
			if isDuplicate(err) {
				continue // someone else granted it first — already done, not an error
			}
			return nil, storeErr("insert badge award", err)
		}

		entry := models.ActivityLedgerEntry{
			ID:             uuid.NewString(),
			ExternalUserID: prog.ExternalUserID,
			ActionType:     models.ActionBadgeAwarded,
			Description:    "Earned badge: " + def.Name,
			XPEarned:       0,
			Metadata:       metadataJSON(map[string]interface{}{"badge_code": def.Code}),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, storeErr("append ledger entry", err)
		}

		log.Printf("🎖️ Badge awarded: %s → %s", def.Code, prog.ExternalUserID)
		granted = append(granted, def)
	}
	return granted, nil
}

// meetsRequirement is the single table-driven predicate over the closed
// requirement-kind set. Unknown kinds never qualify.
func (s *BadgeService) meetsRequirement(def *models.BadgeDefinition, prog *models.UserProgress) bool {
	var stat int64
	switch def.RequirementKind {
	case models.RequirementLevel:
		stat = int64(prog.Level)
	case models.RequirementContentCount:
		stat = prog.TotalObservations
	case models.RequirementEventCount:
		stat = prog.TotalEvents
	case models.RequirementStreakLength:
		stat = int64(prog.StreakDays)
	default:
		return false
	}
	return stat >= def.RequirementThreshold
}

// SeedCatalog upserts the built-in badge definitions by code. Safe to run on
// every boot; existing rows are left untouched.
func SeedCatalog(db *gorm.DB) error {
	for _, def := range models.BadgeCatalog {
		var existing models.BadgeDefinition
		err := db.Where("code = ?", def.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return storeErr("fetch badge definition", err)
		}
		def.ID = uuid.NewString()
		if err := db.Create(&def).Error; err != nil && !isDuplicate(err) {
			return storeErr("seed badge definition", err)
		}
	}
	return nil
}
