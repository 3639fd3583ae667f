package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/scheduling"

	"go.uber.org/zap"
)

// Transactor runs fn against a bookings store bound to one database
// transaction. storage.Container implements it.
type Transactor interface {
	WithBookingTx(ctx context.Context, fn func(s bookings.Store) error) error
}

// Request is a single slot commit.
type Request struct {
	OfficeID int64
	Date     time.Time
	Time     scheduling.Clock
	UserID   int64
	Concern  string
}

// Committer creates a booking after re-checking blackouts and duplicates at
// commit time. With a Transactor the checks and both inserts share one
// transaction behind an advisory lock on the slot; without one they run as
// sequential statements and a failed office assignment is undone with a
// compensating delete.
type Committer struct {
	store  bookings.Store
	tx     Transactor
	logger *zap.SugaredLogger
}

func NewCommitter(store bookings.Store, tx Transactor, logger *zap.SugaredLogger) *Committer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Committer{store: store, tx: tx, logger: logger}
}

// Commit returns the new booking ID. Business failures are ErrSlotBlocked
// and ErrDuplicateBooking; anything else is a storage failure.
func (c *Committer) Commit(ctx context.Context, req Request) (int64, error) {
	req.Date = scheduling.DateOf(req.Date)

	if c.tx == nil {
		return c.insert(ctx, c.store, req, true)
	}

	var id int64
	err := c.tx.WithBookingTx(ctx, func(s bookings.Store) error {
		if err := s.LockSlot(ctx, req.OfficeID, req.Date, req.Time); err != nil {
			return err
		}
		var err error
		id, err = c.insert(ctx, s, req, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Committer) insert(ctx context.Context, s bookings.Store, req Request, compensate bool) (int64, error) {
	blocked, err := s.IsBlocked(ctx, req.OfficeID, req.Date, req.Time)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, ErrSlotBlocked
	}

	dup, err := s.HasActiveBooking(ctx, req.UserID, req.OfficeID, req.Date, req.Time)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, ErrDuplicateBooking
	}

	b := &bookings.Booking{
		UserID:  req.UserID,
		Date:    req.Date,
		Time:    req.Time,
		Concern: req.Concern,
		Status:  bookings.StatusPending,
	}
	id, err := s.CreateBooking(ctx, b)
	if err != nil {
		return 0, err
	}

	assignErr := s.CreateOfficeAssignment(ctx, &bookings.OfficeAssignment{
		BookingID: id,
		OfficeID:  req.OfficeID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    bookings.AssignmentPending,
	})
	if assignErr == nil {
		return id, nil
	}

	if compensate {
		if err := c.compensate(ctx, s, id); err != nil {
			assignErr = errors.Join(assignErr, err)
		}
	}

	if errors.Is(assignErr, bookings.ErrSlotTaken) {
		return 0, fmt.Errorf("%w: %w", ErrDuplicateBooking, assignErr)
	}
	return 0, fmt.Errorf("assign office: %w", assignErr)
}

// compensate deletes a booking left without an office assignment. It runs
// even when the caller's context is already done.
func (c *Committer) compensate(ctx context.Context, s bookings.Store, bookingID int64) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookings.QueryTimeoutDuration)
	defer cancel()

	if err := s.DeleteBooking(ctx, bookingID); err != nil {
		c.logger.Errorw("compensating delete failed, orphaned booking left behind",
			"booking_id", bookingID, "error", err.Error())
		return fmt.Errorf("compensating delete of booking %d: %w", bookingID, err)
	}

	c.logger.Warnw("booking rolled back after office assignment failed", "booking_id", bookingID)
	return nil
}
