package booking

import (
	"errors"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/scheduling"
)

var (
	ErrSlotBlocked      = errors.New("slot falls inside a blocked range")
	ErrDuplicateBooking = errors.New("active booking already exists for this slot")
	ErrInvalidSlot      = errors.New("time is not a slot of the office grid")
	ErrOfficeNotFound   = offices.ErrNotFound
	ErrNoSlotAvailable  = scheduling.ErrNoSlotAvailable
	ErrConfigInvalid    = scheduling.ErrConfigInvalid
)

// Kind classifies a booking outcome. Every kind except KindStorageFailure is
// an expected business result.
type Kind string

const (
	KindNone             Kind = ""
	KindConfigInvalid    Kind = "config_invalid"
	KindOfficeNotFound   Kind = "office_not_found"
	KindSlotBlocked      Kind = "slot_blocked"
	KindDuplicateBooking Kind = "duplicate_booking"
	KindNoSlotAvailable  Kind = "no_slot_available"
	KindInvalidSlot      Kind = "invalid_slot"
	KindStorageFailure   Kind = "storage_failure"
)

// KindOf maps an error returned by this package to its kind. Anything
// unrecognized, timeouts included, is a storage failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfigInvalid):
		return KindConfigInvalid
	case errors.Is(err, ErrOfficeNotFound):
		return KindOfficeNotFound
	case errors.Is(err, ErrSlotBlocked):
		return KindSlotBlocked
	case errors.Is(err, ErrDuplicateBooking), errors.Is(err, bookings.ErrSlotTaken):
		return KindDuplicateBooking
	case errors.Is(err, ErrNoSlotAvailable):
		return KindNoSlotAvailable
	case errors.Is(err, ErrInvalidSlot):
		return KindInvalidSlot
	default:
		return KindStorageFailure
	}
}

// IsBusiness reports whether the kind is a normal outcome rather than a fault.
func (k Kind) IsBusiness() bool {
	return k != KindNone && k != KindStorageFailure
}

// Message is the user facing sentence for the kind.
func (k Kind) Message() string {
	switch k {
	case KindConfigInvalid:
		return "Could not check available slots. Please try booking manually."
	case KindOfficeNotFound:
		return "Office not found. Please specify a valid office name."
	case KindSlotBlocked:
		return "This time slot is unavailable due to an office event."
	case KindDuplicateBooking:
		return "You already have an appointment at this time."
	case KindNoSlotAvailable:
		return "No available slots found. Please try a different date or book manually."
	case KindInvalidSlot:
		return "That time is not one of the office's appointment slots."
	case KindStorageFailure:
		return "Failed to book appointment. Please try manually."
	}
	return ""
}
