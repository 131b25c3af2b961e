package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// seedApplicant registers a client account and submits an application.
func seedApplicant(t *testing.T, store *fakeStore, service ports.VettingService) (auth.Identity, *domain.VettingApplication) {
	t.Helper()

	applicant := clientIdentity()
	store.users[applicant.UserID] = domain.User{
		ID:       applicant.UserID,
		Username: "applicant-" + applicant.UserID.String()[:8],
		Role:     domain.RoleClient,
	}

	app, err := service.Submit(context.Background(), applicant, ports.SubmitApplicationInput{
		StageName:       "The Great Zoltano",
		Bio:             "Twenty years of close-up magic.",
		PerformanceType: "magician",
		ExperienceYears: 20,
	})
	require.NoError(t, err)
	return applicant, app
}

func TestVettingService_Submit(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	_, app := seedApplicant(t, store, service)

	assert.Equal(t, domain.VettingPending, app.Status)
	assert.Nil(t, app.ReviewerID)
	require.Len(t, store.auditEntries, 1)
	assert.Equal(t, domain.AuditSubmitVetting, store.auditEntries[0].Action)
}

func TestVettingService_Submit_ClientsOnly(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	_, err := service.Submit(context.Background(), adminIdentity(), ports.SubmitApplicationInput{
		StageName:       "x",
		Bio:             "y",
		PerformanceType: "z",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVettingService_Review_ApprovePromotesApplicant(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	service := NewVettingService(store, notifier, testLogger())

	applicant, app := seedApplicant(t, store, service)
	admin := adminIdentity()

	result, err := service.Review(context.Background(), admin, app.ID, domain.ReviewApprove, "portfolio checks out")

	require.NoError(t, err)
	assert.Equal(t, domain.VettingApproved, result.Application.Status)
	require.NotNil(t, result.Application.ApprovalNotes)
	assert.Equal(t, "portfolio checks out", *result.Application.ApprovalNotes)
	require.NotNil(t, result.Application.ReviewerID)
	assert.Equal(t, admin.UserID, *result.Application.ReviewerID)

	// The performer profile exists, is verified, and the account role moved.
	require.NotNil(t, result.Performer)
	assert.True(t, result.Performer.Verified)
	assert.Equal(t, applicant.UserID, result.Performer.UserID)
	assert.Equal(t, domain.RolePerformer, store.users[applicant.UserID].Role)

	assert.Contains(t, notifier.kinds, "application_reviewed")
}

func TestVettingService_Review_Reject(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	applicant, app := seedApplicant(t, store, service)

	result, err := service.Review(context.Background(), adminIdentity(), app.ID, domain.ReviewReject, "portfolio too thin")

	require.NoError(t, err)
	assert.Equal(t, domain.VettingRejected, result.Application.Status)
	require.NotNil(t, result.Application.RejectionReason)
	assert.Equal(t, "portfolio too thin", *result.Application.RejectionReason)

	// No profile, no promotion.
	assert.Nil(t, result.Performer)
	assert.Empty(t, store.performers)
	assert.Equal(t, domain.RoleClient, store.users[applicant.UserID].Role)
}

func TestVettingService_Review_ApprovalRollsBackAtomically(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	applicant, app := seedApplicant(t, store, service)
	store.performerCreateErr = assert.AnError

	_, err := service.Review(context.Background(), adminIdentity(), app.ID, domain.ReviewApprove, "looks good")
	require.Error(t, err)

	// Nothing of the three-way write survives: the application is still
	// reviewable, no profile exists, the role is unchanged.
	stored := store.applications[app.ID]
	assert.Equal(t, domain.VettingPending, stored.Status)
	assert.Empty(t, store.performers)
	assert.Equal(t, domain.RoleClient, store.users[applicant.UserID].Role)

	// A later retry succeeds.
	store.performerCreateErr = nil
	result, err := service.Review(context.Background(), adminIdentity(), app.ID, domain.ReviewApprove, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.VettingApproved, result.Application.Status)
}

func TestVettingService_Review_TerminalStates(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	_, app := seedApplicant(t, store, service)
	admin := adminIdentity()

	_, err := service.Review(context.Background(), admin, app.ID, domain.ReviewReject, "no")
	require.NoError(t, err)

	_, err = service.Review(context.Background(), admin, app.ID, domain.ReviewApprove, "changed my mind")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored := store.applications[app.ID]
	assert.Equal(t, domain.VettingRejected, stored.Status)
}

func TestVettingService_Review_AdminOnly(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	applicant, app := seedApplicant(t, store, service)

	_, err := service.Review(context.Background(), applicant, app.ID, domain.ReviewApprove, "self-approval")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.Review(context.Background(), adminIdentity(), uuid.New(), domain.ReviewApprove, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVettingService_ExpireStale(t *testing.T) {
	store := newFakeStore()
	service := NewVettingService(store, &recordingNotifier{}, testLogger())

	_, stale := seedApplicant(t, store, service)
	_, fresh := seedApplicant(t, store, service)

	// Backdate one application past the cutoff.
	old := store.applications[stale.ID]
	old.CreatedAt = time.Now().UTC().Add(-40 * 24 * time.Hour)
	store.applications[stale.ID] = old

	count, err := service.ExpireStale(context.Background(), 30*24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, domain.VettingExpired, store.applications[stale.ID].Status)
	assert.Equal(t, domain.VettingPending, store.applications[fresh.ID].Status)

	// Expired applications can no longer be reviewed.
	_, err = service.Review(context.Background(), adminIdentity(), stale.ID, domain.ReviewApprove, "too late")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
