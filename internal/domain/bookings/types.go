package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusbook/internal/scheduling"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned when the active-slot unique index rejects an
	// office assignment.
	ErrSlotTaken         = errors.New("slot already has an active booking")
	QueryTimeoutDuration = time.Second * 5
)

// Booking statuses. Appointments keep the capitalized values of the
// original schema default; office assignments use lowercase.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"

	AssignmentPending  = "pending"
	AssignmentApproved = "approved"
)

// IsActive reports whether a booking with this status still holds its slot.
func IsActive(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "cancelled":
		return false
	}
	return true
}

// Booking is an appointment row.
type Booking struct {
	ID        int64            `json:"booking_id"`
	UserID    int64            `json:"user_id"`
	Date      time.Time        `json:"-"`
	Time      scheduling.Clock `json:"-"`
	Concern   string           `json:"concern"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// OfficeAssignment links a booking to an office with its own status. Date
// and Time are copied from the booking so the active-slot index can live on
// this table.
type OfficeAssignment struct {
	BookingID int64
	OfficeID  int64
	Date      time.Time
	Time      scheduling.Clock
	Status    string
}

// BlockedRange is an administrator blackout window for one office and date.
type BlockedRange struct {
	ID       int64
	OfficeID int64
	Date     time.Time
	scheduling.Block
}

// BookingDetail is a booking joined with its office assignment.
type BookingDetail struct {
	Booking
	OfficeID         int64  `json:"office_id"`
	OfficeName       string `json:"office_name"`
	AssignmentStatus string `json:"office_status"`
}

// UserBooking is a row of a requester's recent appointments.
type UserBooking struct {
	BookingID  int64            `json:"booking_id"`
	OfficeID   int64            `json:"office_id"`
	OfficeName string           `json:"office_name"`
	Date       time.Time        `json:"-"`
	Time       scheduling.Clock `json:"-"`
	Concern    string           `json:"concern"`
	Status     string           `json:"status"`
}

type Store interface {
	ActiveTimes(ctx context.Context, officeID int64, date time.Time) ([]scheduling.Clock, error)
	BlockedRanges(ctx context.Context, officeID int64, date time.Time) ([]BlockedRange, error)
	IsBlocked(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) (bool, error)
	HasActiveBooking(ctx context.Context, userID, officeID int64, date time.Time, at scheduling.Clock) (bool, error)
	LockSlot(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) error
	CreateBooking(ctx context.Context, b *Booking) (int64, error)
	CreateOfficeAssignment(ctx context.Context, a *OfficeAssignment) error
	DeleteBooking(ctx context.Context, bookingID int64) error
	GetByID(ctx context.Context, bookingID int64) (*BookingDetail, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]UserBooking, error)
}
