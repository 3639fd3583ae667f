package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoSlotAvailable = errors.New("no available slot")

// Block is an administrator declared unavailability window [Start, End).
type Block struct {
	Start  Clock
	End    Clock
	Reason string
}

// Contains uses half-open bounds: a slot starting at End is free.
func (b Block) Contains(c Clock) bool {
	return c >= b.Start && c < b.End
}

// Slot is a bookable start time. It is derived on every query and never stored.
type Slot struct {
	Clock     Clock  `json:"-"`
	Time      string `json:"time"`
	Formatted string `json:"time_formatted"`
	Available bool   `json:"available"`
}

func newSlot(c Clock) Slot {
	return Slot{Clock: c, Time: c.String(), Formatted: c.Format12(), Available: true}
}

// Resolve returns the grid slots that are neither booked nor blocked, in grid order.
func Resolve(grid Grid, booked []Clock, blocks []Block) []Slot {
	taken := make(map[Clock]struct{}, len(booked))
	for _, c := range booked {
		taken[c] = struct{}{}
	}

	out := []Slot{}
	for _, c := range grid.Slots() {
		if _, ok := taken[c]; ok {
			continue
		}
		if blocked(c, blocks) {
			continue
		}
		out = append(out, newSlot(c))
	}
	return out
}

func blocked(c Clock, blocks []Block) bool {
	for _, b := range blocks {
		if b.Contains(c) {
			return true
		}
	}
	return false
}

// OfficeHours is the slice of office configuration the resolver needs.
type OfficeHours struct {
	OfficeID        int64
	OfficeName      string
	Open            Clock
	Close           Clock
	IntervalMinutes int
}

// Source loads the inputs of an availability query.
type Source interface {
	OfficeHours(ctx context.Context, officeID int64) (OfficeHours, error)
	ActiveTimes(ctx context.Context, officeID int64, date time.Time) ([]Clock, error)
	Blocks(ctx context.Context, officeID int64, date time.Time) ([]Block, error)
}

// Availability is the resolved day of one office.
type Availability struct {
	OfficeID   int64     `json:"office_id"`
	OfficeName string    `json:"office_name"`
	Date       time.Time `json:"-"`
	Slots      []Slot    `json:"available_slots"`
}

// First returns the earliest open slot of the day.
func (a Availability) First() (Slot, bool) {
	if len(a.Slots) == 0 {
		return Slot{}, false
	}
	return a.Slots[0], true
}

type Resolver struct {
	source    Source
	lookahead int
}

// NewResolver builds a resolver. lookahead is the number of extra days
// FindNextAvailable may try after the requested date; negative means 0.
func NewResolver(source Source, lookahead int) *Resolver {
	if lookahead < 0 {
		lookahead = 0
	}
	return &Resolver{source: source, lookahead: lookahead}
}

func (r *Resolver) Lookahead() int { return r.lookahead }

// Availability resolves the open slots of an office on date.
func (r *Resolver) Availability(ctx context.Context, officeID int64, date time.Time) (Availability, error) {
	hours, err := r.source.OfficeHours(ctx, officeID)
	if err != nil {
		return Availability{}, err
	}
	return r.resolveDay(ctx, hours, DateOf(date))
}

func (r *Resolver) resolveDay(ctx context.Context, hours OfficeHours, date time.Time) (Availability, error) {
	grid, err := NewGrid(hours.Open, hours.Close, hours.IntervalMinutes)
	if err != nil {
		return Availability{}, fmt.Errorf("office %d: %w", hours.OfficeID, err)
	}

	booked, err := r.source.ActiveTimes(ctx, hours.OfficeID, date)
	if err != nil {
		return Availability{}, fmt.Errorf("loading booked slots: %w", err)
	}

	blocks, err := r.source.Blocks(ctx, hours.OfficeID, date)
	if err != nil {
		return Availability{}, fmt.Errorf("loading blocked ranges: %w", err)
	}

	return Availability{
		OfficeID:   hours.OfficeID,
		OfficeName: hours.OfficeName,
		Date:       date,
		Slots:      Resolve(grid, booked, blocks),
	}, nil
}

// FindNextAvailable returns the first open slot on date, then on each of the
// following lookahead days. It stops at the horizon and reports
// ErrNoSlotAvailable instead of searching further.
func (r *Resolver) FindNextAvailable(ctx context.Context, officeID int64, date time.Time) (Availability, Slot, error) {
	hours, err := r.source.OfficeHours(ctx, officeID)
	if err != nil {
		return Availability{}, Slot{}, err
	}

	day := DateOf(date)
	for i := 0; i <= r.lookahead; i++ {
		avail, err := r.resolveDay(ctx, hours, day)
		if err != nil {
			return Availability{}, Slot{}, err
		}
		if slot, ok := avail.First(); ok {
			return avail, slot, nil
		}
		day = day.AddDate(0, 0, 1)
	}

	return Availability{}, Slot{}, fmt.Errorf("%w for %s from %s", ErrNoSlotAvailable, hours.OfficeName, DateOf(date).Format(DateLayout))
}
