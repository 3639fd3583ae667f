package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]Clock{
		"09:00":    NewClock(9, 0),
		"09:30:00": NewClock(9, 30),
		"9:30 AM":  NewClock(9, 30),
		"12:00 PM": NewClock(12, 0),
		"12:15 am": NewClock(0, 15),
		"3:04PM":   NewClock(15, 4),
		"24:00":    Clock(minutesPerDay),
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "25:00", "9", "13:00 PM", "noon"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockFormatting(t *testing.T) {
	assert.Equal(t, "09:00:00", NewClock(9, 0).String())
	assert.Equal(t, "9:00 AM", NewClock(9, 0).Format12())
	assert.Equal(t, "12:30 PM", NewClock(12, 30).Format12())
	assert.Equal(t, "3:30 PM", NewClock(15, 30).Format12())
	assert.Equal(t, "12:00 AM", NewClock(0, 0).Format12())
}

func TestGridSlots(t *testing.T) {
	grid, err := NewGrid(NewClock(9, 0), NewClock(16, 0), 30)
	require.NoError(t, err)

	slots := grid.Slots()
	require.Len(t, slots, 14)
	assert.Equal(t, NewClock(9, 0), slots[0])
	assert.Equal(t, NewClock(15, 30), slots[13])
	assert.NotContains(t, slots, NewClock(16, 0))

	// pure: calling again yields the same sequence
	assert.Equal(t, slots, grid.Slots())
}

func TestGridDefaultsAndEdges(t *testing.T) {
	grid, err := NewGrid(NewClock(9, 0), NewClock(10, 0), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervalMinutes, grid.Interval)
	assert.Len(t, grid.Slots(), 2)

	grid, err = NewGrid(NewClock(9, 0), NewClock(10, 0), 90)
	require.NoError(t, err)
	assert.Equal(t, []Clock{NewClock(9, 0)}, grid.Slots())

	// trailing partial interval: 9:00, 9:45 only
	grid, err = NewGrid(NewClock(9, 0), NewClock(10, 10), 45)
	require.NoError(t, err)
	assert.Equal(t, []Clock{NewClock(9, 0), NewClock(9, 45)}, grid.Slots())

	_, err = NewGrid(NewClock(16, 0), NewClock(9, 0), 30)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	_, err = NewGrid(NewClock(9, 0), NewClock(9, 0), 30)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestGridContains(t *testing.T) {
	grid, err := NewGrid(NewClock(9, 0), NewClock(16, 0), 30)
	require.NoError(t, err)

	assert.True(t, grid.Contains(NewClock(9, 30)))
	assert.False(t, grid.Contains(NewClock(9, 15)))
	assert.False(t, grid.Contains(NewClock(16, 0)))
	assert.False(t, grid.Contains(NewClock(8, 30)))
}

func TestResolveBlockedHalfOpen(t *testing.T) {
	for _, interval := range []int{10, 15, 20, 30, 60} {
		grid, err := NewGrid(NewClock(9, 0), NewClock(16, 0), interval)
		require.NoError(t, err)

		slots := Resolve(grid, nil, []Block{{Start: NewClock(13, 0), End: NewClock(14, 0)}})
		times := clocks(slots)

		assert.NotContains(t, times, NewClock(13, 0), "interval %d", interval)
		assert.Contains(t, times, NewClock(14, 0), "interval %d", interval)
		if interval <= 30 {
			assert.NotContains(t, times, NewClock(13, 30), "interval %d", interval)
		}
	}
}

func TestResolveOverlappingBlocks(t *testing.T) {
	grid, err := NewGrid(NewClock(9, 0), NewClock(12, 0), 30)
	require.NoError(t, err)

	slots := Resolve(grid, []Clock{NewClock(9, 0)}, []Block{
		{Start: NewClock(10, 0), End: NewClock(11, 0)},
		{Start: NewClock(10, 30), End: NewClock(11, 30)},
	})
	assert.Equal(t, []Clock{NewClock(9, 30), NewClock(11, 30)}, clocks(slots))
}

type fakeSource struct {
	hours  OfficeHours
	booked map[string][]Clock
	blocks map[string][]Block
	calls  []string
}

func (f *fakeSource) OfficeHours(_ context.Context, officeID int64) (OfficeHours, error) {
	if officeID != f.hours.OfficeID {
		return OfficeHours{}, errors.New("office not found")
	}
	return f.hours, nil
}

func (f *fakeSource) ActiveTimes(_ context.Context, _ int64, date time.Time) ([]Clock, error) {
	f.calls = append(f.calls, date.Format(DateLayout))
	return f.booked[date.Format(DateLayout)], nil
}

func (f *fakeSource) Blocks(_ context.Context, _ int64, date time.Time) ([]Block, error) {
	return f.blocks[date.Format(DateLayout)], nil
}

func registrar() *fakeSource {
	return &fakeSource{
		hours: OfficeHours{
			OfficeID:        1,
			OfficeName:      "Registrar's Office",
			Open:            NewClock(9, 0),
			Close:           NewClock(16, 0),
			IntervalMinutes: 30,
		},
		booked: map[string][]Clock{},
		blocks: map[string][]Block{},
	}
}

func TestAvailabilityScenarios(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty day", func(t *testing.T) {
		r := NewResolver(registrar(), 1)
		avail, err := r.Availability(ctx, 1, date)
		require.NoError(t, err)
		require.Len(t, avail.Slots, 14)
		assert.Equal(t, "9:00 AM", avail.Slots[0].Formatted)
		assert.Equal(t, "09:00:00", avail.Slots[0].Time)
		assert.True(t, avail.Slots[0].Available)
	})

	t.Run("existing booking", func(t *testing.T) {
		src := registrar()
		src.booked["2024-03-01"] = []Clock{NewClock(9, 30)}
		r := NewResolver(src, 1)

		avail, err := r.Availability(ctx, 1, date)
		require.NoError(t, err)
		times := clocks(avail.Slots)
		assert.NotContains(t, times, NewClock(9, 30))
		assert.Contains(t, times, NewClock(9, 0))
		assert.Contains(t, times, NewClock(10, 0))
	})

	t.Run("idempotent", func(t *testing.T) {
		src := registrar()
		src.blocks["2024-03-01"] = []Block{{Start: NewClock(12, 0), End: NewClock(13, 0)}}
		r := NewResolver(src, 1)

		first, err := r.Availability(ctx, 1, date)
		require.NoError(t, err)
		second, err := r.Availability(ctx, 1, date)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("invalid hours", func(t *testing.T) {
		src := registrar()
		src.hours.Open, src.hours.Close = NewClock(16, 0), NewClock(9, 0)
		_, err := NewResolver(src, 1).Availability(ctx, 1, date)
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
}

func TestFindNextAvailable(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fullDay := []Block{{Start: NewClock(0, 0), End: Clock(minutesPerDay)}}

	t.Run("same day", func(t *testing.T) {
		src := registrar()
		src.booked["2024-03-01"] = []Clock{NewClock(9, 0)}

		avail, slot, err := NewResolver(src, 1).FindNextAvailable(ctx, 1, date)
		require.NoError(t, err)
		assert.Equal(t, date, avail.Date)
		assert.Equal(t, NewClock(9, 30), slot.Clock)
	})

	t.Run("falls through to next day", func(t *testing.T) {
		src := registrar()
		src.blocks["2024-03-01"] = fullDay

		avail, slot, err := NewResolver(src, 1).FindNextAvailable(ctx, 1, date)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-02", avail.Date.Format(DateLayout))
		assert.Equal(t, NewClock(9, 0), slot.Clock)
	})

	t.Run("stops at horizon", func(t *testing.T) {
		src := registrar()
		src.blocks["2024-03-01"] = fullDay
		src.blocks["2024-03-02"] = fullDay

		_, _, err := NewResolver(src, 1).FindNextAvailable(ctx, 1, date)
		assert.ErrorIs(t, err, ErrNoSlotAvailable)
		assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, src.calls)
	})

	t.Run("configurable horizon", func(t *testing.T) {
		src := registrar()
		src.blocks["2024-03-01"] = fullDay
		src.blocks["2024-03-02"] = fullDay

		avail, _, err := NewResolver(src, 2).FindNextAvailable(ctx, 1, date)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-03", avail.Date.Format(DateLayout))
	})
}

func clocks(slots []Slot) []Clock {
	out := make([]Clock, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Clock)
	}
	return out
}
