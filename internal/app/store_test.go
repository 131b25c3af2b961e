package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// fakeStore is an in-memory ports.Store. WithTx snapshots all state and
// restores it when fn fails, mirroring the commit/rollback behavior of
// the real store so transactional paths can be tested with injected
// faults.
type fakeStore struct {
	users        map[uuid.UUID]domain.User
	services     map[uuid.UUID]domain.Service
	bookings     map[uuid.UUID]domain.Booking
	referrals    map[uuid.UUID]domain.Referral
	applications map[uuid.UUID]domain.VettingApplication
	performers   map[uuid.UUID]domain.Performer
	auditEntries []domain.AuditEntry

	performerCreateErr error
	referralCreateErr  error
	auditErr           error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[uuid.UUID]domain.User),
		services:     make(map[uuid.UUID]domain.Service),
		bookings:     make(map[uuid.UUID]domain.Booking),
		referrals:    make(map[uuid.UUID]domain.Referral),
		applications: make(map[uuid.UUID]domain.VettingApplication),
		performers:   make(map[uuid.UUID]domain.Performer),
	}
}

func (s *fakeStore) Users() ports.UserRepository           { return &fakeUserRepo{s} }
func (s *fakeStore) Services() ports.ServiceRepository     { return &fakeServiceRepo{s} }
func (s *fakeStore) Bookings() ports.BookingRepository     { return &fakeBookingRepo{s} }
func (s *fakeStore) Referrals() ports.ReferralRepository   { return &fakeReferralRepo{s} }
func (s *fakeStore) Vetting() ports.VettingRepository      { return &fakeVettingRepo{s} }
func (s *fakeStore) Performers() ports.PerformerRepository { return &fakePerformerRepo{s} }
func (s *fakeStore) Audit() ports.AuditRecorder            { return &fakeAuditRepo{s} }

func (s *fakeStore) WithTx(_ context.Context, fn func(ports.Store) error) error {
	snapshot := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeState struct {
	users        map[uuid.UUID]domain.User
	services     map[uuid.UUID]domain.Service
	bookings     map[uuid.UUID]domain.Booking
	referrals    map[uuid.UUID]domain.Referral
	applications map[uuid.UUID]domain.VettingApplication
	performers   map[uuid.UUID]domain.Performer
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) snapshot() storeState {
	return storeState{
		users:        copyMap(s.users),
		services:     copyMap(s.services),
		bookings:     copyMap(s.bookings),
		referrals:    copyMap(s.referrals),
		applications: copyMap(s.applications),
		performers:   copyMap(s.performers),
	}
}

func (s *fakeStore) restore(st storeState) {
	s.users = st.users
	s.services = st.services
	s.bookings = st.bookings
	s.referrals = st.referrals
	s.applications = st.applications
	s.performers = st.performers
}

// --- users ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, u domain.User) error {
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

// --- services ---

type fakeServiceRepo struct{ s *fakeStore }

func (r *fakeServiceRepo) Create(_ context.Context, svc domain.Service) error {
	r.s.services[svc.ID] = svc
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Service, error) {
	svc, ok := r.s.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &svc, nil
}

// --- bookings ---

type fakeBookingRepo struct{ s *fakeStore }

func (r *fakeBookingRepo) Create(_ context.Context, b domain.Booking) error {
	r.s.bookings[b.ID] = b
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) UpdateDecision(_ context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status != domain.BookingPending {
		return nil, domain.ErrInvalidState
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	r.s.bookings[id] = b
	return &b, nil
}

func (r *fakeBookingRepo) SetReceipt(_ context.Context, id uuid.UUID, receiptURL string) (*domain.Booking, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.PaymentStatus == domain.PaymentDepositPaid {
		return nil, domain.ErrInvalidState
	}
	b.DepositReceiptURL = &receiptURL
	b.DepositPendingReview = true
	b.PaymentStatus = domain.PaymentDepositPendingReview
	b.UpdatedAt = time.Now().UTC()
	r.s.bookings[id] = b
	return &b, nil
}

func (r *fakeBookingRepo) MarkDepositPaid(_ context.Context, id uuid.UUID, paidAt time.Time, etaMinutes *int, etaNote *string) (*domain.Booking, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.PaymentStatus == domain.PaymentDepositPaid {
		return nil, domain.ErrInvalidState
	}
	b.PaymentStatus = domain.PaymentDepositPaid
	b.DepositPendingReview = false
	b.DepositPaidAt = &paidAt
	if etaMinutes != nil {
		b.EtaMinutes = etaMinutes
	}
	if etaNote != nil {
		b.EtaNote = etaNote
	}
	b.UpdatedAt = time.Now().UTC()
	r.s.bookings[id] = b
	return &b, nil
}

// --- referrals ---

type fakeReferralRepo struct{ s *fakeStore }

func (r *fakeReferralRepo) Create(_ context.Context, ref domain.Referral) error {
	if r.s.referralCreateErr != nil {
		return r.s.referralCreateErr
	}
	r.s.referrals[ref.ID] = ref
	return nil
}

func (r *fakeReferralRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Referral, error) {
	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ref, nil
}

func (r *fakeReferralRepo) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time, receiptURL *string) (*domain.Referral, error) {
	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ref.Status != domain.ReferralPending {
		return nil, domain.ErrAlreadySettled
	}
	ref.Status = domain.ReferralPaid
	ref.PaidAt = &paidAt
	ref.ReceiptURL = receiptURL
	r.s.referrals[id] = ref
	return &ref, nil
}

// --- vetting ---

type fakeVettingRepo struct{ s *fakeStore }

func (r *fakeVettingRepo) Create(_ context.Context, a domain.VettingApplication) error {
	r.s.applications[a.ID] = a
	return nil
}

func (r *fakeVettingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.VettingApplication, error) {
	a, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *fakeVettingRepo) MarkReviewed(_ context.Context, id, reviewerID uuid.UUID, status domain.VettingStatus, notes string, reviewedAt time.Time) (*domain.VettingApplication, error) {
	a, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !a.Status.Reviewable() {
		return nil, domain.ErrInvalidState
	}
	a.Status = status
	a.ReviewerID = &reviewerID
	a.ReviewedAt = &reviewedAt
	switch status {
	case domain.VettingApproved:
		a.ApprovalNotes = &notes
	case domain.VettingRejected:
		a.RejectionReason = &notes
	}
	r.s.applications[id] = a
	return &a, nil
}

func (r *fakeVettingRepo) ExpireBefore(_ context.Context, cutoff time.Time) ([]domain.VettingApplication, error) {
	var expired []domain.VettingApplication
	for id, a := range r.s.applications {
		if a.Status.Reviewable() && a.CreatedAt.Before(cutoff) {
			a.Status = domain.VettingExpired
			r.s.applications[id] = a
			expired = append(expired, a)
		}
	}
	return expired, nil
}

// --- performers ---

type fakePerformerRepo struct{ s *fakeStore }

func (r *fakePerformerRepo) Create(_ context.Context, p domain.Performer) error {
	if r.s.performerCreateErr != nil {
		return r.s.performerCreateErr
	}
	r.s.performers[p.ID] = p
	return nil
}

// --- audit ---

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Record(_ context.Context, e domain.AuditEntry) error {
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.s.auditEntries = append(r.s.auditEntries, e)
	return nil
}

// --- notifier ---

// recordingNotifier collects published notifications; failAll makes every
// publish return an error so fire-and-forget behavior can be asserted.
type recordingNotifier struct {
	kinds   []string
	failAll bool
}

func (n *recordingNotifier) publish(kind string) error {
	if n.failAll {
		return errors.New("broker down")
	}
	n.kinds = append(n.kinds, kind)
	return nil
}

func (n *recordingNotifier) BookingCreated(context.Context, *domain.Booking) error {
	return n.publish("booking_created")
}

func (n *recordingNotifier) BookingDecided(context.Context, *domain.Booking) error {
	return n.publish("booking_decided")
}

func (n *recordingNotifier) DepositVerified(context.Context, *domain.Booking) error {
	return n.publish("deposit_verified")
}

func (n *recordingNotifier) ApplicationReviewed(context.Context, *domain.VettingApplication) error {
	return n.publish("application_reviewed")
}
