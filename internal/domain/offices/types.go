package offices

import (
	"context"
	"errors"
	"time"

	"campusbook/internal/scheduling"
)

var (
	ErrNotFound          = errors.New("office not found")
	QueryTimeoutDuration = time.Second * 5
)

// Office is a bookable department with its own hours and slot interval.
type Office struct {
	ID                  int64            `json:"office_id"`
	Name                string           `json:"office_name"`
	Location            *string          `json:"location,omitempty"`
	Description         *string          `json:"description,omitempty"`
	OpeningTime         scheduling.Clock `json:"-"`
	ClosingTime         scheduling.Clock `json:"-"`
	SlotIntervalMinutes int              `json:"slot_interval_minutes"`
}

// Hours is the scheduling view of the office.
func (o *Office) Hours() scheduling.OfficeHours {
	return scheduling.OfficeHours{
		OfficeID:        o.ID,
		OfficeName:      o.Name,
		Open:            o.OpeningTime,
		Close:           o.ClosingTime,
		IntervalMinutes: o.SlotIntervalMinutes,
	}
}

// OfficeView is the JSON shape returned to clients.
type OfficeView struct {
	*Office
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

func (o *Office) View() OfficeView {
	return OfficeView{Office: o, OpeningTime: o.OpeningTime.Format12(), ClosingTime: o.ClosingTime.Format12()}
}

type Store interface {
	List(ctx context.Context) ([]Office, error)
	GetByID(ctx context.Context, officeID int64) (*Office, error)
}
