package policy

import (
	"context"
	"strings"
	"testing"
	"time"

	businessRepo "kymaclub/database/repository/business"
	"kymaclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- In-memory fakes ---

type fakeBusinessRepo struct {
	businesses map[string]*models.Business
}

func (r *fakeBusinessRepo) GetByID(_ context.Context, id string) (*models.Business, error) {
	if b, ok := r.businesses[id]; ok {
		copy := *b
		return &copy, nil
	}
	return nil, businessRepo.ErrNotFound
}

func (r *fakeBusinessRepo) Create(_ context.Context, _ *models.Business) error { return nil }

func (r *fakeBusinessRepo) UpdateFeeStructure(_ context.Context, id string, fees models.FeeStructure) error {
	b, ok := r.businesses[id]
	if !ok {
		return businessRepo.ErrNotFound
	}
	b.Fees = fees
	return nil
}

type fakeAuditRepo struct {
	entries []models.AuditLogEntry
}

func (r *fakeAuditRepo) Insert(_ context.Context, entry *models.AuditLogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, entityType, entityID string, _ int64) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) ListByAction(_ context.Context, action models.AuditAction, _ int64) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) ListRecent(_ context.Context, _ int64) ([]models.AuditLogEntry, error) {
	return r.entries, nil
}

type fakeBookingRepo struct {
	bookings []models.Booking
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			copy := b
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *fakeBookingRepo) ListForBusinessCreatedBetween(_ context.Context, businessID string, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.BusinessID == businessID && !b.Deleted &&
			!b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountCheckInsBetween(_ context.Context, businessID string, from, to time.Time) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if b.BusinessID == businessID && !b.Deleted && b.CheckedInAt != nil &&
			!b.CheckedInAt.Before(from) && b.CheckedInAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func newTestPolicyService(rate float64) (*DefaultPolicyService, *fakeBusinessRepo, *fakeAuditRepo, *fakeBookingRepo) {
	businesses := &fakeBusinessRepo{businesses: map[string]*models.Business{
		"biz-1": {ID: "biz-1", Name: "Yoga Studio", Fees: models.FeeStructure{BaseFeeRate: rate}},
	}}
	audit := &fakeAuditRepo{}
	bookings := &fakeBookingRepo{}
	svc := &DefaultPolicyService{
		Businesses:    businesses,
		Bookings:      bookings,
		Audit:         audit,
		Logger:        zap.NewNop(),
		LegacyFeeRate: 0.20,
	}
	return svc, businesses, audit, bookings
}

// --- Tests ---

func TestUpdateFeeRate(t *testing.T) {
	svc, businesses, audit, _ := newTestPolicyService(0.20)
	actor := Actor{ID: "admin-1", Email: "admin@kymaclub.com"}

	res, err := svc.UpdateFeeRate(context.Background(), actor, "biz-1", 0.10, "negotiated launch discount")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0.20, res.PreviousRate)
	assert.Equal(t, 0.10, res.NewRate)
	assert.Equal(t, "Fee rate updated from 20% to 10%", res.Message)

	assert.Equal(t, 0.10, businesses.businesses["biz-1"].Fees.BaseFeeRate)
	assert.Equal(t, "admin-1", businesses.businesses["biz-1"].Fees.UpdatedBy)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditFeeRateUpdate, entry.Action)
	change, ok := entry.Change.(models.FeeRateChange)
	require.True(t, ok)
	assert.Equal(t, 0.20, change.Before)
	assert.Equal(t, 0.10, change.After)
}

func TestUpdateFeeRateNoOp(t *testing.T) {
	svc, _, audit, _ := newTestPolicyService(0.20)

	res, err := svc.UpdateFeeRate(context.Background(), Actor{ID: "admin-1"}, "biz-1", 0.20, "no change intended")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Fee rate unchanged", res.Message)
	// An unchanged rate writes no audit entry.
	assert.Empty(t, audit.entries)
}

func TestUpdateFeeRateValidation(t *testing.T) {
	svc, _, audit, _ := newTestPolicyService(0.20)
	ctx := context.Background()
	actor := Actor{ID: "admin-1"}

	_, err := svc.UpdateFeeRate(ctx, actor, "biz-1", 0.17, "odd rate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFeeRate)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "feeRate", fe.Field)

	_, err = svc.UpdateFeeRate(ctx, actor, "biz-1", 0.10, "  ")
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = svc.UpdateFeeRate(ctx, actor, "biz-1", 0.10, strings.Repeat("x", MaxReasonLength+1))
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = svc.UpdateFeeRate(ctx, actor, "missing-biz", 0.10, "valid reason")
	assert.ErrorIs(t, err, businessRepo.ErrNotFound)

	// Validation failures leave no audit residue.
	assert.Empty(t, audit.entries)
}
