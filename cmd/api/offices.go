package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"campusbook/internal/booking"
	"campusbook/internal/domain/offices"
	"campusbook/internal/scheduling"

	"github.com/go-chi/chi/v5"
)

func officeIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "officeID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid office ID")
	}
	return id, nil
}

// listOfficesHandler godoc
//
//	@Summary	List offices
//	@Tags		Offices
//	@Produce	json
//	@Success	200	{array}	offices.OfficeView
//	@Router		/offices [get]
func (app *application) listOfficesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.engine.Offices(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	views := make([]offices.OfficeView, 0, len(list))
	for i := range list {
		views = append(views, list[i].View())
	}

	if err := app.jsonResponse(w, http.StatusOK, views); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getOfficeHandler(w http.ResponseWriter, r *http.Request) {
	officeID, err := officeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	office, err := app.engine.Office(r.Context(), officeID)
	if err != nil {
		if errors.Is(err, offices.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, office.View()); err != nil {
		app.internalServerError(w, r, err)
	}
}

type availabilityResponse struct {
	scheduling.Availability
	Date          string           `json:"date"`
	Count         int              `json:"count"`
	NextAvailable *scheduling.Slot `json:"next_available"`
}

func newAvailabilityResponse(avail scheduling.Availability) availabilityResponse {
	if avail.Slots == nil {
		avail.Slots = []scheduling.Slot{}
	}
	resp := availabilityResponse{
		Availability: avail,
		Date:         avail.Date.Format(scheduling.DateLayout),
		Count:        len(avail.Slots),
	}
	if first, ok := avail.First(); ok {
		resp.NextAvailable = &first
	}
	return resp
}

// availableSlotsHandler godoc
//
//	@Summary		List open slots of an office
//	@Description	Slots on the office grid that are neither booked nor inside a blocked range.
//	@Tags			Offices
//	@Produce		json
//	@Param			officeID	path		int		true	"Office ID"
//	@Param			date		query		string	true	"Date in YYYY-MM-DD format"
//	@Success		200			{object}	availabilityResponse
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Router			/offices/{officeID}/available-slots [get]
func (app *application) availableSlotsHandler(w http.ResponseWriter, r *http.Request) {
	officeID, err := officeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing date"))
		return
	}
	date, err := scheduling.ParseDate(dateStr)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	avail, err := app.engine.GetAvailability(r.Context(), officeID, date)
	if err != nil {
		switch kind := booking.KindOf(err); kind {
		case booking.KindOfficeNotFound:
			app.notFoundResponse(w, r, err)
		case booking.KindConfigInvalid:
			app.logger.Warnw("office hours misconfigured", "office_id", officeID, "error", err.Error())
			app.unprocessableEntityResponse(w, r, kind.Message())
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newAvailabilityResponse(avail)); err != nil {
		app.internalServerError(w, r, err)
	}
}
