package offices

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"campusbook/internal/scheduling"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM offices WHERE office_id = $1")).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWrapsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("FROM offices ORDER BY office_name")).
		WillReturnError(boom)

	_, err = NewRepository(mock).List(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list offices")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficeView(t *testing.T) {
	o := &Office{
		ID:                  1,
		Name:                "Registrar",
		OpeningTime:         scheduling.NewClock(8, 0),
		ClosingTime:         scheduling.NewClock(17, 30),
		SlotIntervalMinutes: 30,
	}

	v := o.View()
	assert.Equal(t, "8:00 AM", v.OpeningTime)
	assert.Equal(t, "5:30 PM", v.ClosingTime)

	h := o.Hours()
	assert.Equal(t, int64(1), h.OfficeID)
	assert.Equal(t, 30, h.IntervalMinutes)
}
