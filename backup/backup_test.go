package backup_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bill-tracker/backup"
	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/billing/store"
)

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()
	for _, in := range []billing.BillInput{
		{Title: "Rent", Amount: decimal.NewFromInt(1200), IssueDay: 1, DueDay: 5},
		{Title: "Power", Amount: decimal.RequireFromString("189.90"), IssueDay: 10, DueDay: 20, RemindDays: 4},
	} {
		_, err := m.Add(ctx, in)
		require.NoError(t, err)
	}
	require.NoError(t, m.MarkPaid(ctx, 1, "2024-03", time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)))
	return m
}

func TestExportImport_RoundTrip(t *testing.T) {
	// GIVEN: a store with two bills, one paid
	src := seeded(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	doc, err := backup.Export(ctx, src, now)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, backup.Write(&buf, doc))

	// WHEN: importing into a store holding unrelated data
	dst := store.NewMemory()
	_, err = dst.Add(ctx, billing.BillInput{Title: "stale", IssueDay: 1, DueDay: 1})
	require.NoError(t, err)

	n, err := backup.Import(ctx, &buf, dst)
	require.NoError(t, err)

	// THEN: the destination equals the source
	assert.Equal(t, 2, n)
	want, err := src.List(ctx)
	require.NoError(t, err)
	got, err := dst.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].DueDay, got[i].DueDay)
		assert.Equal(t, want[i].RemindDays, got[i].RemindDays)
		assert.Equal(t, want[i].LastPaidCycle, got[i].LastPaidCycle)
	}
}

func TestWrite_Format(t *testing.T) {
	doc := backup.Document{
		ExportedAt: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		Bills:      []billing.Bill{},
	}
	var buf bytes.Buffer

	require.NoError(t, backup.Write(&buf, doc))

	out := buf.String()
	assert.Contains(t, out, "\n  \"exportedAt\": \"2024-03-10T12:00:00Z\"")
	assert.Contains(t, out, "\"bills\": []")
}

func TestImport_RejectsMissingBills(t *testing.T) {
	for _, body := range []string{`{}`, `{"bills": {}}`, `{"bills": "x"}`, `[]`, `{"bills": null}`} {
		t.Run(body, func(t *testing.T) {
			dst := seeded(t)
			ctx := context.Background()

			_, err := backup.Import(ctx, strings.NewReader(body), dst)

			assert.ErrorIs(t, err, backup.ErrInvalidBackup)
			bills, err := dst.List(ctx)
			require.NoError(t, err)
			assert.Len(t, bills, 2, "store untouched")
		})
	}
}

func TestImport_RejectsCorruptJSON(t *testing.T) {
	dst := seeded(t)
	ctx := context.Background()

	_, err := backup.Import(ctx, strings.NewReader(`{"bills": [`), dst)

	assert.ErrorIs(t, err, backup.ErrCorruptBackup)
	bills, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bills, 2)
}

func TestImport_TypeMismatchIsCorrupt(t *testing.T) {
	_, err := backup.Parse(strings.NewReader(`{"bills": [{"id": 1, "dueDay": "soon"}]}`))

	assert.ErrorIs(t, err, backup.ErrCorruptBackup)
}

func TestImport_EmptyArrayClearsStore(t *testing.T) {
	dst := seeded(t)
	ctx := context.Background()

	n, err := backup.Import(ctx, strings.NewReader(`{"bills": []}`), dst)

	require.NoError(t, err)
	assert.Zero(t, n)
	bills, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestImport_KeepsRecordsUnvalidated(t *testing.T) {
	// Records go in exactly as written, including out-of-range values.
	body := `{"bills": [
		{"id": 3, "title": "", "amount": -5, "issueDay": 0, "dueDay": 45},
		{"title": "no id", "amount": "10.50", "issueDay": 1, "dueDay": 2}
	]}`
	dst := store.NewMemory()
	ctx := context.Background()

	n, err := backup.Import(ctx, strings.NewReader(body), dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bills, err := dst.List(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	assert.Equal(t, billing.BillID(4), bills[0].ID)
	assert.Equal(t, "10.5", bills[0].Amount.String())

	assert.Equal(t, billing.BillID(3), bills[1].ID)
	assert.Equal(t, 45, bills[1].DueDay)
	assert.Equal(t, "", bills[1].Title)
	assert.True(t, bills[1].Amount.IsNegative())
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, time.March, 9, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "bills-backup-2024-03-09.json", backup.FileName(now))
}
