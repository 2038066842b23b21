package export

import (
	"bytes"
	"testing"
	"time"

	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/domain/underwriting"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture(t *testing.T) (*loan.LoanRequest, []loan.Installment) {
	t.Helper()
	start := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	schedule, err := loan.GenerateSchedule(1_000_000, 12, 2.5, start)
	require.NoError(t, err)

	req := &loan.LoanRequest{
		ID:           uuid.New(),
		Amount:       1_000_000,
		TermMonths:   12,
		InterestRate: 2.5,
		Status:       underwriting.StatusInReview,
		RequestedAt:  start,
		Schedule:     schedule,
	}
	return req, schedule
}

func TestBuildSchedulePDF(t *testing.T) {
	req, schedule := fixture(t)

	out, err := BuildSchedulePDF(req, schedule)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestBuildScheduleXLSX(t *testing.T) {
	req, schedule := fixture(t)

	out, err := BuildScheduleXLSX(req, schedule)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("schedule")
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, scheduleHeaders, rows[0])
	assert.Equal(t, "2025-02-28", rows[1][1])
	assert.Equal(t, "pending", rows[12][6])

	id, err := f.GetCellValue("summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, req.ID.String(), id)

	status, err := f.GetCellValue("summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "in_review", status)
}

func TestBuildScheduleXLSX_EmptySchedule(t *testing.T) {
	req := &loan.LoanRequest{ID: uuid.New(), Status: underwriting.StatusRejected}

	out, err := BuildScheduleXLSX(req, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("schedule")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
