package services

import (
	"errors"
	"testing"

	"conservation-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmitInput() SubmitInput {
	lat, lng := 52.37, 4.89
	return SubmitInput{
		Title:       "Otter by the canal",
		SpeciesName: "eurasian OTTER",
		Latitude:    &lat,
		Longitude:   &lng,
	}
}

func TestSubmit_RewardsAndNormalizes(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)

	obs, result, err := observations.Submit("user-1", validSubmitInput())
	require.NoError(t, err)

	assert.Equal(t, "Eurasian Otter", obs.SpeciesName)
	assert.Equal(t, models.ReviewStatusPending, obs.ReviewStatus)
	assert.Contains(t, obs.Slug, "otter-by-the-canal")

	assert.Equal(t, rewards.Weights.ObservationXP, result.XPEarned)
	assert.Equal(t, int64(1), result.Progress.TotalObservations)
	assert.Contains(t, badgeCodes(result.NewBadges), "FIRST_OBSERVATION")
}

func TestSubmit_MissingCoordinatesRejectedBeforeAnyWrite(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)

	in := validSubmitInput()
	in.Longitude = nil

	_, _, err := observations.Submit("user-1", in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "coordinates", verr.Field)

	var obsCount, ledgerCount int64
	require.NoError(t, rewards.DB.Model(&models.Observation{}).Count(&obsCount).Error)
	require.NoError(t, rewards.DB.Model(&models.ActivityLedgerEntry{}).Count(&ledgerCount).Error)
	assert.Equal(t, int64(0), obsCount)
	assert.Equal(t, int64(0), ledgerCount)
}

func TestSubmit_CoordinateRange(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)

	var verr *ValidationError

	in := validSubmitInput()
	badLat := 91.0
	in.Latitude = &badLat
	_, _, err := observations.Submit("user-1", in)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "latitude", verr.Field)

	in = validSubmitInput()
	badLng := -181.0
	in.Longitude = &badLng
	_, _, err = observations.Submit("user-1", in)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "longitude", verr.Field)

	// 0,0 is a real coordinate, not a missing one
	in = validSubmitInput()
	zero := 0.0
	in.Latitude, in.Longitude = &zero, &zero
	_, _, err = observations.Submit("user-1", in)
	require.NoError(t, err)
}

func TestReview_RoleGate(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)

	obs, _, err := observations.Submit("user-1", validSubmitInput())
	require.NoError(t, err)

	var perr *PermissionError
	_, err = observations.Review(obs.ID, "user-2", nil, VerdictApprove, "")
	require.True(t, errors.As(err, &perr))

	reviewed, err := observations.Review(obs.ID, "rev-1", []string{"reviewer"}, VerdictApprove, "clear photo")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, reviewed.ReviewStatus)
	assert.Equal(t, "rev-1", reviewed.ReviewedBy)
	assert.Equal(t, "clear photo", reviewed.ReviewNote)
}

func TestReview_Transitions(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)
	roles := []string{"reviewer"}

	// pending → disputed → rejected is allowed
	obs, _, err := observations.Submit("user-1", validSubmitInput())
	require.NoError(t, err)

	reviewed, err := observations.Review(obs.ID, "rev-1", roles, VerdictDispute, "species unclear")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusDisputed, reviewed.ReviewStatus)

	reviewed, err = observations.Review(obs.ID, "rev-1", roles, VerdictReject, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, reviewed.ReviewStatus)

	// rejected is terminal
	var conflict *ConflictError
	_, err = observations.Review(obs.ID, "rev-1", roles, VerdictApprove, "")
	require.True(t, errors.As(err, &conflict))

	// disputing an approved observation is not allowed
	in := validSubmitInput()
	in.Title = "Heron nest"
	obs2, _, err := observations.Submit("user-1", in)
	require.NoError(t, err)
	_, err = observations.Review(obs2.ID, "rev-1", roles, VerdictApprove, "")
	require.NoError(t, err)
	_, err = observations.Review(obs2.ID, "rev-1", roles, VerdictDispute, "")
	require.True(t, errors.As(err, &conflict))
}

func TestReview_UnknownVerdictAndMissingObservation(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)
	roles := []string{"admin"}

	var verr *ValidationError
	_, err := observations.Review("whatever", "rev-1", roles, "promote", "")
	require.True(t, errors.As(err, &verr))

	var nferr *NotFoundError
	_, err = observations.Review("no-such-id", "rev-1", roles, VerdictApprove, "")
	require.True(t, errors.As(err, &nferr))
}

func TestListByUserAndGetBySlug(t *testing.T) {
	rewards := newTestRewards(t)
	observations := NewObservationService(rewards.DB, rewards)

	obs, _, err := observations.Submit("user-1", validSubmitInput())
	require.NoError(t, err)
	_, _, err = observations.Submit("user-2", validSubmitInput())
	require.NoError(t, err)

	mine, err := observations.ListByUser("user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	found, err := observations.GetBySlug(obs.Slug)
	require.NoError(t, err)
	assert.Equal(t, obs.ID, found.ID)

	var nferr *NotFoundError
	_, err = observations.GetBySlug("missing-slug")
	require.True(t, errors.As(err, &nferr))
}
