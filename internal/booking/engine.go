// Package booking is the facade over slot resolution, intent extraction and
// the conflict-safe commit of a booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/intent"
	"campusbook/internal/reference"
	"campusbook/internal/scheduling"

	"go.uber.org/zap"
)

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	Lookahead      int
	DefaultConcern string
	Now            func() time.Time
}

const DefaultConcern = "AI-assisted booking"

// Result is the outcome of a booking attempt. Business failures come back
// as a Result with Success false; only storage failures are errors.
type Result struct {
	Success    bool   `json:"success"`
	BookingID  int64  `json:"booking_id,omitempty"`
	Reference  string `json:"reference,omitempty"`
	OfficeID   int64  `json:"office_id,omitempty"`
	OfficeName string `json:"office_name,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	// TimeFormatted is Time as shown to users, "9:30 AM".
	TimeFormatted string `json:"time_formatted,omitempty"`
	Concern       string `json:"concern,omitempty"`
	Kind          Kind   `json:"kind,omitempty"`
	Error         string `json:"error,omitempty"`
}

func failure(kind Kind, msg string) *Result {
	if msg == "" {
		msg = kind.Message()
	}
	return &Result{Success: false, Kind: kind, Error: msg}
}

// BookRequest books one explicit slot.
type BookRequest struct {
	OfficeID int64
	Date     time.Time
	Time     scheduling.Clock
	UserID   int64
	Concern  string
}

type Engine struct {
	offices   offices.Store
	bookings  bookings.Store
	resolver  *scheduling.Resolver
	committer *Committer
	extractor *intent.Extractor
	refs      *reference.Encoder
	concern   string
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewEngine wires the engine. tx may be nil, in which case commits run as
// sequential statements with compensation. refs may be nil.
func NewEngine(
	officeStore offices.Store,
	bookingStore bookings.Store,
	tx Transactor,
	refs *reference.Encoder,
	logger *zap.SugaredLogger,
	cfg Config,
) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if strings.TrimSpace(cfg.DefaultConcern) == "" {
		cfg.DefaultConcern = DefaultConcern
	}

	src := storeSource{offices: officeStore, bookings: bookingStore}
	return &Engine{
		offices:   officeStore,
		bookings:  bookingStore,
		resolver:  scheduling.NewResolver(src, cfg.Lookahead),
		committer: NewCommitter(bookingStore, tx, logger),
		extractor: intent.New(cfg.Now),
		refs:      refs,
		concern:   cfg.DefaultConcern,
		now:       cfg.Now,
		logger:    logger,
	}
}

// Today is the current calendar date in the engine's clock.
func (e *Engine) Today() time.Time { return scheduling.DateOf(e.now()) }

func (e *Engine) DefaultConcern() string { return e.concern }

func (e *Engine) Offices(ctx context.Context) ([]offices.Office, error) {
	return e.offices.List(ctx)
}

func (e *Engine) Office(ctx context.Context, officeID int64) (*offices.Office, error) {
	return e.offices.GetByID(ctx, officeID)
}

// FindOffice resolves a display name, as returned by the intent extractor,
// to the office record. Matching is case-insensitive and falls back to a
// substring match.
func (e *Engine) FindOffice(ctx context.Context, name string) (*offices.Office, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrOfficeNotFound
	}

	list, err := e.offices.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if strings.ToLower(list[i].Name) == name {
			return &list[i], nil
		}
	}
	for i := range list {
		if strings.Contains(strings.ToLower(list[i].Name), name) {
			return &list[i], nil
		}
	}
	return nil, ErrOfficeNotFound
}

// ClassifyIntent runs the keyword extractor against the current office list.
func (e *Engine) ClassifyIntent(ctx context.Context, message string) (intent.Intent, error) {
	list, err := e.offices.List(ctx)
	if err != nil {
		return intent.Intent{}, fmt.Errorf("loading offices: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, o := range list {
		names = append(names, o.Name)
	}
	return e.extractor.Classify(message, names), nil
}

// GetAvailability lists the open slots of an office on date.
func (e *Engine) GetAvailability(ctx context.Context, officeID int64, date time.Time) (scheduling.Availability, error) {
	return e.resolver.Availability(ctx, officeID, date)
}

// Book commits an explicit slot. The time must be on the office grid.
func (e *Engine) Book(ctx context.Context, req BookRequest) (*Result, error) {
	office, err := e.offices.GetByID(ctx, req.OfficeID)
	if err != nil {
		return e.classify(err, req.OfficeID)
	}

	grid, err := scheduling.NewGrid(office.OpeningTime, office.ClosingTime, office.SlotIntervalMinutes)
	if err != nil {
		return e.classify(fmt.Errorf("office %d: %w", office.ID, err), office.ID)
	}
	if !grid.Contains(req.Time) {
		return failure(KindInvalidSlot, ""), nil
	}

	return e.commit(ctx, office, req)
}

// AutoBook books the first open slot on date or within the lookahead days
// after it.
func (e *Engine) AutoBook(ctx context.Context, userID, officeID int64, date time.Time, concern string) (*Result, error) {
	avail, slot, err := e.resolver.FindNextAvailable(ctx, officeID, date)
	if err != nil {
		if errors.Is(err, ErrNoSlotAvailable) {
			name := avail.OfficeName
			if name == "" {
				if o, lookupErr := e.offices.GetByID(ctx, officeID); lookupErr == nil {
					name = o.Name
				}
			}
			return failure(KindNoSlotAvailable, noSlotMessage(name)), nil
		}
		return e.classify(err, officeID)
	}

	office := &offices.Office{ID: avail.OfficeID, Name: avail.OfficeName}
	return e.commit(ctx, office, BookRequest{
		OfficeID: officeID,
		Date:     avail.Date,
		Time:     slot.Clock,
		UserID:   userID,
		Concern:  concern,
	})
}

func noSlotMessage(office string) string {
	if office == "" {
		return KindNoSlotAvailable.Message()
	}
	return fmt.Sprintf("No available slots found for %s. Please try a different date or book manually.", office)
}

func (e *Engine) commit(ctx context.Context, office *offices.Office, req BookRequest) (*Result, error) {
	concern := strings.TrimSpace(req.Concern)
	if concern == "" {
		concern = e.concern
	}
	date := scheduling.DateOf(req.Date)

	id, err := e.committer.Commit(ctx, Request{
		OfficeID: office.ID,
		Date:     date,
		Time:     req.Time,
		UserID:   req.UserID,
		Concern:  concern,
	})
	if err != nil {
		return e.classify(err, office.ID)
	}

	res := &Result{
		Success:    true,
		BookingID:  id,
		OfficeID:   office.ID,
		OfficeName: office.Name,
		Date:       date.Format(scheduling.DateLayout),
		Time:       req.Time.String(),
		Concern:    concern,

		TimeFormatted: req.Time.Format12(),
	}
	if e.refs != nil {
		ref, err := e.refs.Encode(id)
		if err != nil {
			e.logger.Warnw("could not encode booking reference", "booking_id", id, "error", err.Error())
		} else {
			res.Reference = ref
		}
	}

	e.logger.Infow("booking created",
		"booking_id", id,
		"office_id", office.ID,
		"date", res.Date,
		"time", res.Time,
		"user_id", req.UserID,
	)
	return res, nil
}

// classify turns business errors into a failed Result and passes storage
// failures through.
func (e *Engine) classify(err error, officeID int64) (*Result, error) {
	kind := KindOf(err)
	if !kind.IsBusiness() {
		e.logger.Errorw("booking storage failure", "office_id", officeID, "error", err.Error())
		return nil, err
	}
	if kind == KindConfigInvalid {
		e.logger.Warnw("office has invalid hours", "office_id", officeID, "error", err.Error())
	}
	return failure(kind, ""), nil
}

// Lookup returns a booking by its public reference.
func (e *Engine) Lookup(ctx context.Context, ref string) (*bookings.BookingDetail, error) {
	if e.refs == nil {
		return nil, reference.ErrInvalid
	}
	id, err := e.refs.Decode(ref)
	if err != nil {
		return nil, err
	}
	return e.bookings.GetByID(ctx, id)
}

// Recent returns the requester's latest bookings.
func (e *Engine) Recent(ctx context.Context, userID int64, limit int) ([]bookings.UserBooking, error) {
	return e.bookings.RecentByUser(ctx, userID, limit)
}
