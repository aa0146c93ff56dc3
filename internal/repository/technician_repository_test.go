package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnicianRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "home_address_id", "assigned_van_id", "active", "created_at", "updated_at"}).
		AddRow("tech-1", "Tech One", "addr-9", "van-1", true, time.Now(), time.Now()).
		AddRow("tech-2", "Tech Two", "addr-8", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, home_address_id, assigned_van_id, active, created_at, updated_at FROM technicians WHERE active = TRUE ORDER BY id")).
		WillReturnRows(rows)

	techs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, techs, 2)
	require.NotNil(t, techs[0].AssignedVanID)
	assert.Equal(t, "van-1", *techs[0].AssignedVanID)
	assert.Nil(t, techs[1].AssignedVanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryListDefaultHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	rows := sqlmock.NewRows([]string{"id", "technician_id", "day_of_week", "start_time", "end_time"}).
		AddRow("h1", "tech-1", 1, "09:00:00", "17:00:00").
		AddRow("h2", "tech-2", 1, "08:00:00", "16:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, technician_id, day_of_week, start_time, end_time FROM technician_default_hours WHERE technician_id IN ($1, $2) ORDER BY technician_id, day_of_week, start_time")).
		WithArgs("tech-1", "tech-2").
		WillReturnRows(rows)

	hours, err := repo.ListDefaultHours(context.Background(), []string{"tech-1", "tech-2"})
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, "09:00:00", hours[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryListDefaultHoursEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	hours, err := repo.ListDefaultHours(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, hours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
