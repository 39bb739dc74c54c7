// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/bill-tracker/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	bills  map[billing.BillID]billing.Bill
	nextID billing.BillID
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		bills:  make(map[billing.BillID]billing.Bill),
		nextID: 1,
		now:    time.Now,
	}
}

// NewMemoryWithClock uses now for CreatedAt stamps.
func NewMemoryWithClock(now func() time.Time) *Memory {
	m := NewMemory()
	m.now = now
	return m
}

func (m *Memory) Add(_ context.Context, in billing.BillInput) (billing.BillID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in = billing.Normalize(in)
	id := m.nextID
	m.nextID++
	m.bills[id] = billing.Bill{
		ID:         id,
		Title:      in.Title,
		Amount:     in.Amount,
		IssueDay:   in.IssueDay,
		DueDay:     in.DueDay,
		RemindDays: in.RemindDays,
		CreatedAt:  m.now().UTC(),
	}
	return id, nil
}

func (m *Memory) Update(_ context.Context, id billing.BillID, patch billing.BillPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bills[id]
	if !ok {
		return &billing.NotFoundError{ID: id}
	}
	billing.NormalizePatch(patch).Apply(&b)
	m.bills[id] = b
	return nil
}

func (m *Memory) Delete(_ context.Context, id billing.BillID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bills, id)
	return nil
}

func (m *Memory) Get(_ context.Context, id billing.BillID) (*billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bills[id]
	if !ok {
		return nil, nil
	}
	b = clone(b)
	return &b, nil
}

func (m *Memory) List(_ context.Context) ([]billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		result = append(result, clone(b))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DueDay != result[j].DueDay {
			return result[i].DueDay < result[j].DueDay
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ReplaceAll swaps the whole collection under the write lock, so readers see
// either the old set or the new one.
func (m *Memory) ReplaceAll(_ context.Context, bills []billing.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[billing.BillID]billing.Bill, len(bills))
	var maxID billing.BillID
	for _, b := range billing.AssignMissingIDs(bills) {
		next[b.ID] = clone(b)
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	m.bills = next
	m.nextID = maxID + 1
	return nil
}

func (m *Memory) MarkPaid(_ context.Context, id billing.BillID, cycle billing.Cycle, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bills[id]
	if !ok {
		return &billing.NotFoundError{ID: id}
	}
	paidAt := at.UTC()
	b.LastPaidCycle = billing.CyclePtr(cycle)
	b.LastPaidAt = &paidAt
	m.bills[id] = b
	return nil
}

// clone detaches pointer fields so callers can't mutate stored state.
func clone(b billing.Bill) billing.Bill {
	if b.LastPaidCycle != nil {
		b.LastPaidCycle = billing.CyclePtr(*b.LastPaidCycle)
	}
	if b.LastPaidAt != nil {
		t := *b.LastPaidAt
		b.LastPaidAt = &t
	}
	return b
}

var _ billing.Store = (*Memory)(nil)
