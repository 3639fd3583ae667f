package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusbook/internal/infra/dbx"
	"campusbook/internal/scheduling"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ActiveSlotIndex is the partial unique index that allows one active
// assignment per office, date and time.
const ActiveSlotIndex = "uq_appointment_offices_active_slot"

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

// ActiveTimes lists the times on date that carry a booking which is neither
// completed nor cancelled.
func (r *Repository) ActiveTimes(ctx context.Context, officeID int64, date time.Time) ([]scheduling.Clock, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT DISTINCT a.appointment_time
		FROM appointments a
		INNER JOIN appointment_offices ao ON a.appointment_id = ao.appointment_id
		WHERE ao.office_id = $1
		  AND a.appointment_date = $2
		  AND COALESCE(LOWER(a.status), '') NOT IN ('completed', 'cancelled')
		ORDER BY a.appointment_time`

	rows, err := r.db.Query(ctx, q, officeID, date)
	if err != nil {
		return nil, fmt.Errorf("query booked slots: %w", err)
	}
	defer rows.Close()

	var out []scheduling.Clock
	for rows.Next() {
		var t pgtype.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, scheduling.Clock(dbx.Minutes(t)))
	}
	return out, rows.Err()
}

func (r *Repository) BlockedRanges(ctx context.Context, officeID int64, date time.Time) ([]BlockedRange, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT id, start_time, end_time, COALESCE(reason, '')
		FROM office_blocked_slots
		WHERE office_id = $1
		  AND block_date = $2
		ORDER BY start_time ASC`

	rows, err := r.db.Query(ctx, q, officeID, date)
	if err != nil {
		return nil, fmt.Errorf("query blocked ranges: %w", err)
	}
	defer rows.Close()

	var out []BlockedRange
	for rows.Next() {
		var (
			br         BlockedRange
			start, end pgtype.Time
		)
		if err := rows.Scan(&br.ID, &start, &end, &br.Reason); err != nil {
			return nil, err
		}
		br.OfficeID = officeID
		br.Date = date
		br.Start = scheduling.Clock(dbx.Minutes(start))
		br.End = scheduling.Clock(dbx.Minutes(end))
		out = append(out, br)
	}
	return out, rows.Err()
}

// IsBlocked reports whether at falls inside [start_time, end_time) of any
// blackout for the office and date.
func (r *Repository) IsBlocked(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM office_blocked_slots
			WHERE office_id = $1
			  AND block_date = $2
			  AND start_time <= $3::time
			  AND end_time > $3::time
		)`

	var blocked bool
	if err := r.db.QueryRow(ctx, q, officeID, date, at.String()).Scan(&blocked); err != nil {
		return false, fmt.Errorf("check blocked slot: %w", err)
	}
	return blocked, nil
}

// HasActiveBooking checks the requester-scoped duplicate: the same user
// already holding an active booking at this office, date and time.
func (r *Repository) HasActiveBooking(ctx context.Context, userID, officeID int64, date time.Time, at scheduling.Clock) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM appointments a
			INNER JOIN appointment_offices ao ON a.appointment_id = ao.appointment_id
			WHERE a.user_id = $1
			  AND ao.office_id = $2
			  AND a.appointment_date = $3
			  AND a.appointment_time = $4::time
			  AND LOWER(a.status) NOT IN ('completed', 'cancelled')
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, userID, officeID, date, at.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check duplicate booking: %w", err)
	}
	return exists, nil
}

// LockSlot takes a transaction scoped advisory lock on the slot. It only
// serializes anything when the repository runs on a pgx.Tx.
func (r *Repository) LockSlot(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	key := fmt.Sprintf("office:%d:%s:%s", officeID, date.Format(scheduling.DateLayout), at)
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}
	return nil
}

// CreateBooking inserts the appointment row and fills ID and CreatedAt.
func (r *Repository) CreateBooking(ctx context.Context, b *Booking) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO appointments (user_id, appointment_date, appointment_time, concern, status)
		VALUES ($1, $2, $3::time, $4, $5)
		RETURNING appointment_id, created_at`

	err := r.db.QueryRow(ctx, q, b.UserID, b.Date, b.Time.String(), b.Concern, b.Status).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return b.ID, nil
}

func (r *Repository) CreateOfficeAssignment(ctx context.Context, a *OfficeAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO appointment_offices (appointment_id, office_id, status, appointment_date, appointment_time)
		VALUES ($1, $2, $3, $4, $5::time)`

	if _, err := r.db.Exec(ctx, q, a.BookingID, a.OfficeID, a.Status, a.Date, a.Time.String()); err != nil {
		if dbx.IsUniqueViolation(err, ActiveSlotIndex) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert office assignment: %w", err)
	}
	return nil
}

func (r *Repository) DeleteBooking(ctx context.Context, bookingID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("delete appointment %d: %w", bookingID, err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, bookingID int64) (*BookingDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT
			a.appointment_id, a.user_id, a.appointment_date, a.appointment_time,
			COALESCE(a.concern, ''), a.status, a.created_at,
			ao.office_id, o.office_name, ao.status
		FROM appointments a
		INNER JOIN appointment_offices ao ON a.appointment_id = ao.appointment_id
		INNER JOIN offices o ON ao.office_id = o.office_id
		WHERE a.appointment_id = $1
		LIMIT 1`

	var (
		d  BookingDetail
		at pgtype.Time
	)
	err := r.db.QueryRow(ctx, q, bookingID).Scan(
		&d.ID,
		&d.UserID,
		&d.Date,
		&at,
		&d.Concern,
		&d.Status,
		&d.CreatedAt,
		&d.OfficeID,
		&d.OfficeName,
		&d.AssignmentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}
	d.Time = scheduling.Clock(dbx.Minutes(at))
	return &d, nil
}

// RecentByUser returns the requester's latest appointments, newest first.
func (r *Repository) RecentByUser(ctx context.Context, userID int64, limit int) ([]UserBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT
			a.appointment_id, o.office_id, o.office_name,
			a.appointment_date, a.appointment_time,
			COALESCE(a.concern, ''), a.status
		FROM appointments a
		INNER JOIN appointment_offices ao ON a.appointment_id = ao.appointment_id
		INNER JOIN offices o ON ao.office_id = o.office_id
		WHERE a.user_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent appointments: %w", err)
	}
	defer rows.Close()

	var out []UserBooking
	for rows.Next() {
		var (
			ub UserBooking
			at pgtype.Time
		)
		if err := rows.Scan(&ub.BookingID, &ub.OfficeID, &ub.OfficeName, &ub.Date, &at, &ub.Concern, &ub.Status); err != nil {
			return nil, err
		}
		ub.Time = scheduling.Clock(dbx.Minutes(at))
		out = append(out, ub)
	}
	return out, rows.Err()
}
