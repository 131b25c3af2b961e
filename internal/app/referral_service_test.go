package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performer-marketplace/internal/core/domain"
)

func seedReferral(store *fakeStore) domain.Referral {
	ref := domain.Referral{
		ID:          uuid.New(),
		BookingID:   uuid.New(),
		PerformerID: uuid.New(),
		Fee:         decimal.RequireFromString("4.50"),
		Status:      domain.ReferralPending,
		CreatedAt:   time.Now().UTC(),
	}
	store.referrals[ref.ID] = ref
	return ref
}

func TestReferralService_MarkPaid(t *testing.T) {
	store := newFakeStore()
	service := NewReferralService(store, testLogger())
	ref := seedReferral(store)

	receipt := "https://pay.example/settle/1"
	paid, err := service.MarkPaid(context.Background(), adminIdentity(), ref.ID, &receipt)

	require.NoError(t, err)
	assert.Equal(t, domain.ReferralPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.ReceiptURL)
	assert.Equal(t, receipt, *paid.ReceiptURL)

	require.Len(t, store.auditEntries, 1)
	assert.Equal(t, domain.AuditMarkReferralPaid, store.auditEntries[0].Action)
}

func TestReferralService_MarkPaid_WithoutReceipt(t *testing.T) {
	store := newFakeStore()
	service := NewReferralService(store, testLogger())
	ref := seedReferral(store)

	paid, err := service.MarkPaid(context.Background(), adminIdentity(), ref.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.ReferralPaid, paid.Status)
	assert.Nil(t, paid.ReceiptURL)
}

func TestReferralService_MarkPaid_AlreadySettled(t *testing.T) {
	store := newFakeStore()
	service := NewReferralService(store, testLogger())
	ref := seedReferral(store)
	admin := adminIdentity()

	_, err := service.MarkPaid(context.Background(), admin, ref.ID, nil)
	require.NoError(t, err)

	_, err = service.MarkPaid(context.Background(), admin, ref.ID, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestReferralService_MarkPaid_AdminOnly(t *testing.T) {
	store := newFakeStore()
	service := NewReferralService(store, testLogger())
	ref := seedReferral(store)

	_, err := service.MarkPaid(context.Background(), clientIdentity(), ref.ID, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.MarkPaid(context.Background(), adminIdentity(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
