package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP_TierBoundaries(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 3, LevelForXP(250))

	// end of tier 1: levels 1-10 cost 100 each
	assert.Equal(t, 10, LevelForXP(900))
	assert.Equal(t, 11, LevelForXP(1000))

	// tier 2: 200 each through level 25
	assert.Equal(t, 25, LevelForXP(1000+14*200))
	assert.Equal(t, 26, LevelForXP(1000+15*200))
}

func TestLevelForXP_CapAt50(t *testing.T) {
	// 10*100 + 15*200 + 24*500 brings you to level 50
	threshold := int64(1000 + 3000 + 12000)
	assert.Equal(t, 50, LevelForXP(threshold))
	assert.Equal(t, 50, LevelForXP(threshold+1))
	assert.Equal(t, 50, LevelForXP(threshold+1_000_000))
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := 1
	for xp := int64(0); xp <= 20000; xp += 37 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
		assert.LessOrEqual(t, level, MaxLevel)
		prev = level
	}
}

func TestProgressWithinLevel(t *testing.T) {
	p := ProgressWithinLevel(250, 3)
	assert.Equal(t, int64(50), p.ConsumedSoFar)
	assert.Equal(t, int64(100), p.Required)

	// fresh level 11: tier 2 pricing kicks in
	p = ProgressWithinLevel(1000, 11)
	assert.Equal(t, int64(0), p.ConsumedSoFar)
	assert.Equal(t, int64(200), p.Required)
}

func TestRequiredXPForLevel(t *testing.T) {
	assert.Equal(t, int64(100), RequiredXPForLevel(1))
	assert.Equal(t, int64(100), RequiredXPForLevel(10))
	assert.Equal(t, int64(200), RequiredXPForLevel(11))
	assert.Equal(t, int64(200), RequiredXPForLevel(25))
	assert.Equal(t, int64(500), RequiredXPForLevel(26))
	assert.Equal(t, int64(500), RequiredXPForLevel(50))
}
