package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/scheduling"
)

// memStore is an in-memory offices.Store and bookings.Store. Office
// assignments enforce the active-slot uniqueness the database index gives.
type memStore struct {
	mu sync.Mutex

	offices  map[int64]offices.Office
	nextID   int64
	rows     map[int64]bookings.Booking
	assigns  map[int64]bookings.OfficeAssignment
	blocks   []bookings.BlockedRange
	deleted  []int64
	listErr  error
	getErr   error
	assignFn func(a *bookings.OfficeAssignment) error
	deleteFn func(ctx context.Context, id int64) error
}

func newMemStore(list ...offices.Office) *memStore {
	s := &memStore{
		offices: map[int64]offices.Office{},
		rows:    map[int64]bookings.Booking{},
		assigns: map[int64]bookings.OfficeAssignment{},
	}
	for _, o := range list {
		s.offices[o.ID] = o
	}
	return s
}

func (s *memStore) block(officeID int64, date time.Time, start, end scheduling.Clock) {
	s.blocks = append(s.blocks, bookings.BlockedRange{
		OfficeID: officeID,
		Date:     date,
		Block:    scheduling.Block{Start: start, End: end, Reason: "event"},
	})
}

// seed inserts an already committed booking.
func (s *memStore) seed(userID, officeID int64, date time.Time, at scheduling.Clock, status string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.rows[id] = bookings.Booking{ID: id, UserID: userID, Date: date, Time: at, Status: status}
	s.assigns[id] = bookings.OfficeAssignment{BookingID: id, OfficeID: officeID, Date: date, Time: at, Status: bookings.AssignmentPending}
	return id
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memStore) snapshot() (map[int64]bookings.Booking, map[int64]bookings.OfficeAssignment, int64) {
	rows := make(map[int64]bookings.Booking, len(s.rows))
	for k, v := range s.rows {
		rows[k] = v
	}
	assigns := make(map[int64]bookings.OfficeAssignment, len(s.assigns))
	for k, v := range s.assigns {
		assigns[k] = v
	}
	return rows, assigns, s.nextID
}

func (s *memStore) List(ctx context.Context) ([]offices.Office, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]offices.Office, 0, len(s.offices))
	for _, o := range s.offices {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, officeID int64) (*offices.Office, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	o, ok := s.offices[officeID]
	if !ok {
		return nil, offices.ErrNotFound
	}
	return &o, nil
}

func (s *memStore) ActiveTimes(ctx context.Context, officeID int64, date time.Time) ([]scheduling.Clock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []scheduling.Clock
	for id, a := range s.assigns {
		b := s.rows[id]
		if a.OfficeID == officeID && b.Date.Equal(date) && bookings.IsActive(b.Status) {
			out = append(out, b.Time)
		}
	}
	return out, nil
}

func (s *memStore) BlockedRanges(ctx context.Context, officeID int64, date time.Time) ([]bookings.BlockedRange, error) {
	var out []bookings.BlockedRange
	for _, br := range s.blocks {
		if br.OfficeID == officeID && br.Date.Equal(date) {
			out = append(out, br)
		}
	}
	return out, nil
}

func (s *memStore) IsBlocked(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) (bool, error) {
	for _, br := range s.blocks {
		if br.OfficeID == officeID && br.Date.Equal(date) && br.Contains(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) HasActiveBooking(ctx context.Context, userID, officeID int64, date time.Time, at scheduling.Clock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.assigns {
		b := s.rows[id]
		if b.UserID == userID && a.OfficeID == officeID && b.Date.Equal(date) && b.Time == at && bookings.IsActive(b.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) LockSlot(ctx context.Context, officeID int64, date time.Time, at scheduling.Clock) error {
	return nil
}

func (s *memStore) CreateBooking(ctx context.Context, b *bookings.Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now()
	s.rows[b.ID] = *b
	return b.ID, nil
}

func (s *memStore) CreateOfficeAssignment(ctx context.Context, a *bookings.OfficeAssignment) error {
	if s.assignFn != nil {
		if err := s.assignFn(a); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.assigns {
		if other.OfficeID == a.OfficeID && other.Date.Equal(a.Date) && other.Time == a.Time && bookings.IsActive(s.rows[id].Status) {
			return bookings.ErrSlotTaken
		}
	}
	s.assigns[a.BookingID] = *a
	return nil
}

func (s *memStore) DeleteBooking(ctx context.Context, bookingID int64) error {
	if s.deleteFn != nil {
		if err := s.deleteFn(ctx, bookingID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[bookingID]; !ok {
		return bookings.ErrNotFound
	}
	delete(s.rows, bookingID)
	delete(s.assigns, bookingID)
	s.deleted = append(s.deleted, bookingID)
	return nil
}

func (s *memStore) GetBooking(ctx context.Context, bookingID int64) (*bookings.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[bookingID]
	if !ok {
		return nil, bookings.ErrNotFound
	}
	a := s.assigns[bookingID]
	return &bookings.BookingDetail{
		Booking:          b,
		OfficeID:         a.OfficeID,
		OfficeName:       s.offices[a.OfficeID].Name,
		AssignmentStatus: a.Status,
	}, nil
}

func (s *memStore) RecentByUser(ctx context.Context, userID int64, limit int) ([]bookings.UserBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bookings.UserBooking
	for id, b := range s.rows {
		if b.UserID != userID {
			continue
		}
		a := s.assigns[id]
		out = append(out, bookings.UserBooking{
			BookingID:  id,
			OfficeID:   a.OfficeID,
			OfficeName: s.offices[a.OfficeID].Name,
			Date:       b.Date,
			Time:       b.Time,
			Concern:    b.Concern,
			Status:     b.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID > out[j].BookingID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// bookingView adapts memStore to bookings.Store; GetByID clashes with the
// offices.Store method of the same name.
type bookingView struct{ *memStore }

func (v bookingView) GetByID(ctx context.Context, bookingID int64) (*bookings.BookingDetail, error) {
	return v.memStore.GetBooking(ctx, bookingID)
}

// memTx serializes units of work like the slot advisory lock and restores
// the store when fn fails.
type memTx struct {
	mu    sync.Mutex
	store *memStore
}

func (t *memTx) WithBookingTx(ctx context.Context, fn func(s bookings.Store) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store.mu.Lock()
	rows, assigns, next := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(bookingView{t.store}); err != nil {
		t.store.mu.Lock()
		t.store.rows, t.store.assigns, t.store.nextID = rows, assigns, next
		t.store.mu.Unlock()
		return err
	}
	return nil
}

var errBoom = errors.New("connection reset")
