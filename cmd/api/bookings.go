package main

import (
	"errors"
	"net/http"

	"campusbook/internal/booking"
	"campusbook/internal/domain/bookings"
	"campusbook/internal/reference"
	"campusbook/internal/scheduling"

	"github.com/go-chi/chi/v5"
)

type CreateBookingPayload struct {
	Date    string `json:"date" validate:"required,isodate"`
	Time    string `json:"time" validate:"required,clock"`
	Concern string `json:"concern" validate:"max=500"`
}

// bookingStatus maps a failed booking to its HTTP status.
func bookingStatus(kind booking.Kind) int {
	switch kind {
	case booking.KindOfficeNotFound:
		return http.StatusNotFound
	case booking.KindSlotBlocked, booking.KindDuplicateBooking, booking.KindNoSlotAvailable:
		return http.StatusConflict
	case booking.KindInvalidSlot, booking.KindConfigInvalid:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// createBookingHandler godoc
//
//	@Summary		Book a slot
//	@Description	Creates a pending booking. The slot is re-checked against blocked ranges and active bookings at commit time.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			officeID	path		int						true	"Office ID"
//	@Param			payload		body		CreateBookingPayload	true	"Slot"
//	@Success		201			{object}	booking.Result
//	@Failure		409			{object}	booking.Result	"Slot blocked or already booked"
//	@Failure		422			{object}	booking.Result	"Time is not on the office grid"
//	@Security		ApiKeyAuth
//	@Router			/offices/{officeID}/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("missing requester"))
		return
	}

	officeID, err := officeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// both already passed validation
	date, _ := scheduling.ParseDate(payload.Date)
	at, _ := scheduling.ParseClock(payload.Time)

	res, err := app.engine.Book(r.Context(), booking.BookRequest{
		OfficeID: officeID,
		Date:     date,
		Time:     at,
		UserID:   userID,
		Concern:  payload.Concern,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Success {
		status = bookingStatus(res.Kind)
	}
	if err := app.jsonResponse(w, status, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

type bookingView struct {
	*bookings.BookingDetail
	Reference string `json:"reference"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := getUserIDFromContext(r)
	ref := chi.URLParam(r, "reference")

	d, err := app.engine.Lookup(r.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, reference.ErrInvalid), errors.Is(err, bookings.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// other requesters' bookings are reported as missing
	if d.UserID != userID {
		app.notFoundResponse(w, r, bookings.ErrNotFound)
		return
	}

	view := bookingView{
		BookingDetail: d,
		Reference:     ref,
		Date:          d.Date.Format(scheduling.DateLayout),
		Time:          d.Time.String(),
	}
	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

type userBookingView struct {
	bookings.UserBooking
	Date string `json:"date"`
	Time string `json:"time"`
}

func (app *application) listMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := getUserIDFromContext(r)

	list, err := app.engine.Recent(r.Context(), userID, 20)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	views := make([]userBookingView, 0, len(list))
	for _, b := range list {
		views = append(views, userBookingView{
			UserBooking: b,
			Date:        b.Date.Format(scheduling.DateLayout),
			Time:        b.Time.String(),
		})
	}
	if err := app.jsonResponse(w, http.StatusOK, views); err != nil {
		app.internalServerError(w, r, err)
	}
}
