/*
scheduler.go - Periodic payment reminders

PURPOSE:
  Periodically checks every bill against today's date and logs a reminder
  for each unpaid bill that is overdue or inside its own remind-days window.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each run gets a UUID so its log lines can be grouped
  - Read-only: never mutates bills
  - The last run is kept for inspection (LastRun)

USAGE:
  scheduler := NewReminderScheduler(svc, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/bill-tracker/billing"
)

// ReminderRun summarizes one scheduler pass.
type ReminderRun struct {
	ID        string
	At        time.Time
	Reminders []billing.Reminder
	Err       error
}

// ReminderScheduler logs reminders for bills that need attention.
type ReminderScheduler struct {
	Service       *billing.Service
	Log           zerolog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun *ReminderRun
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(svc *billing.Service, log zerolog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		Service:       svc,
		Log:           log.With().Str("component", "reminders").Logger(),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Info().Msg("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	rs.Log.Info().Dur("interval", rs.CheckInterval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight run.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	ticker, stop := rs.ticker, rs.stop
	rs.ticker, rs.stop = nil, nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	rs.wg.Wait()
	rs.Log.Info().Msg("stopped")
}

func (rs *ReminderScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one check and returns its summary.
func (rs *ReminderScheduler) RunNow(ctx context.Context) ReminderRun {
	run := ReminderRun{ID: uuid.NewString(), At: rs.Service.Now()}
	log := rs.Log.With().Str("run_id", run.ID).Logger()

	bills, err := rs.Service.List(ctx)
	if err != nil {
		run.Err = err
		log.Error().Err(err).Msg("failed to list bills")
		rs.setLastRun(run)
		return run
	}

	run.Reminders = billing.Reminders(bills, run.At)
	for _, rem := range run.Reminders {
		log.Warn().
			Int64("bill_id", int64(rem.Bill.ID)).
			Str("title", rem.Bill.Title).
			Str("status", string(rem.Status)).
			Int("days_until_due", rem.DaysUntilDue).
			Str("amount", FormatBRL(rem.Bill.Amount)).
			Msg("payment reminder")
	}
	log.Debug().Int("bills", len(bills)).Int("reminders", len(run.Reminders)).Msg("check complete")

	rs.setLastRun(run)
	return run
}

// LastRun returns the most recent run, or nil before the first one.
func (rs *ReminderScheduler) LastRun() *ReminderRun {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.lastRun == nil {
		return nil
	}
	r := *rs.lastRun
	return &r
}

func (rs *ReminderScheduler) setLastRun(run ReminderRun) {
	rs.mu.Lock()
	rs.lastRun = &run
	rs.mu.Unlock()
}
