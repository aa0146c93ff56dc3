package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityRepositoryListExceptionsInRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	start, end := "10:00:00", "12:00:00"
	rows := sqlmock.NewRows([]string{"id", "technician_id", "exception_date", "is_available", "start_time", "end_time", "reason", "created_at"}).
		AddRow("ex-1", "tech-1", from, false, nil, nil, "vacation", time.Now()).
		AddRow("ex-2", "tech-2", from.AddDate(0, 0, 1), false, start, end, "appointment", time.Now())
	mock.ExpectQuery("SELECT id, technician_id, exception_date, is_available, start_time, end_time, reason, created_at").
		WithArgs(from, to).
		WillReturnRows(rows)

	exceptions, err := repo.ListExceptionsInRange(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, exceptions, 2)
	assert.True(t, exceptions[0].FullDay())
	assert.False(t, exceptions[1].FullDay())
	require.NotNil(t, exceptions[1].StartTime)
	assert.Equal(t, "10:00:00", *exceptions[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
