package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// SERVICE - Operations over an injected Store
// =============================================================================

// Service is the entry point for user-facing operations. It applies strict
// validation to user input and delegates persistence to the Store.
type Service struct {
	store Store
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now, for tests and fixed reference dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Create validates in strictly and adds a bill.
func (s *Service) Create(ctx context.Context, in BillInput) (*Bill, error) {
	if err := ValidateStrict(in); err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("add bill: %w", err)
	}
	s.log.Debug().Int64("bill_id", int64(id)).Str("title", in.Title).Msg("bill created")
	return s.Get(ctx, id)
}

// Update validates the present patch fields strictly and merges them.
func (s *Service) Update(ctx context.Context, id BillID, patch BillPatch) (*Bill, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.Debug().Int64("bill_id", int64(id)).Msg("bill updated")
	return s.Get(ctx, id)
}

// Delete removes a bill.
func (s *Service) Delete(ctx context.Context, id BillID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	s.log.Debug().Int64("bill_id", int64(id)).Msg("bill deleted")
	return nil
}

// Get returns a bill or a NotFoundError.
func (s *Service) Get(ctx context.Context, id BillID) (*Bill, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %d: %w", id, err)
	}
	if b == nil {
		return nil, &NotFoundError{ID: id}
	}
	return b, nil
}

// List returns all bills in due-day order.
func (s *Service) List(ctx context.Context) ([]Bill, error) {
	bills, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// Dashboard classifies every stored bill against ref.
func (s *Service) Dashboard(ctx context.Context, ref time.Time, soonDays int) (Classification, error) {
	bills, err := s.List(ctx)
	if err != nil {
		return Classification{}, err
	}
	return Classify(bills, ref, soonDays), nil
}

// =============================================================================
// PAYMENT RECONCILIATION
// =============================================================================

// MarkPaid records payment of bill id for cycle, stamping the current time.
// Repeating the call for the same cycle only refreshes LastPaidAt.
//
// The cycle is trusted: it is not compared with the bill's current cycle, so
// a caller may mark a past or future month. Pass CurrentCycle(ref) for the
// usual case, or use MarkPaidCurrent.
func (s *Service) MarkPaid(ctx context.Context, id BillID, cycle Cycle) error {
	at := s.now()
	if err := s.store.MarkPaid(ctx, id, cycle, at); err != nil {
		return err
	}
	s.log.Info().Int64("bill_id", int64(id)).Str("cycle", string(cycle)).Msg("payment confirmed")
	return nil
}

// MarkPaidCurrent marks bill id paid for the cycle containing the service
// clock's current time and returns that cycle.
func (s *Service) MarkPaidCurrent(ctx context.Context, id BillID) (Cycle, error) {
	cycle := CurrentCycle(s.now())
	return cycle, s.MarkPaid(ctx, id, cycle)
}
