package services

import (
	"fmt"
	"testing"

	"conservation-tracker/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory database with the same TranslateError
// setting production uses, so unique-violation branching behaves identically.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ProfileUser{},
		&models.UserProgress{},
		&models.BadgeDefinition{},
		&models.BadgeAward{},
		&models.ActivityLedgerEntry{},
		&models.StreakLedgerEntry{},
		&models.Quiz{},
		&models.QuizStreakState{},
		&models.Event{},
		&models.EventParticipation{},
		&models.Observation{},
		&models.Lesson{},
		&models.LessonCompletion{},
	))
	require.NoError(t, SeedCatalog(db))
	return db
}

func newTestRewards(t *testing.T) *RewardService {
	t.Helper()
	return NewRewardService(newTestDB(t))
}
