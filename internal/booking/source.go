package booking

import (
	"context"
	"time"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/scheduling"
)

// storeSource feeds the resolver from the office and booking repositories.
type storeSource struct {
	offices  offices.Store
	bookings bookings.Store
}

func (s storeSource) OfficeHours(ctx context.Context, officeID int64) (scheduling.OfficeHours, error) {
	o, err := s.offices.GetByID(ctx, officeID)
	if err != nil {
		return scheduling.OfficeHours{}, err
	}
	return o.Hours(), nil
}

func (s storeSource) ActiveTimes(ctx context.Context, officeID int64, date time.Time) ([]scheduling.Clock, error) {
	return s.bookings.ActiveTimes(ctx, officeID, date)
}

func (s storeSource) Blocks(ctx context.Context, officeID int64, date time.Time) ([]scheduling.Block, error) {
	ranges, err := s.bookings.BlockedRanges(ctx, officeID, date)
	if err != nil {
		return nil, err
	}
	out := make([]scheduling.Block, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.Block)
	}
	return out, nil
}
