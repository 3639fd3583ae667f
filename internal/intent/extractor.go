// Package intent decides whether a chat message asks for a booking and pulls
// out the office, preferred date and concern using fixed keyword tables.
package intent

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campusbook/internal/scheduling"
)

var (
	numericDatePattern  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	relativeDatePattern = regexp.MustCompile(`(\d+)\s*(day|days)\s*(from now|later)`)
	stopWordPattern     = regexp.MustCompile(`(?i)\b(` + strings.Join(ConcernStopWords, "|") + `)\b`)
)

// Intent is the outcome of classifying one message. Empty Office, nil Date
// and nil Concern mean the message did not specify them.
type Intent struct {
	IsBooking bool       `json:"is_booking"`
	Office    string     `json:"office,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Concern   *string    `json:"concern,omitempty"`
}

// MarshalJSON writes Date as a calendar date, "2006-01-02".
func (in Intent) MarshalJSON() ([]byte, error) {
	type plain Intent
	out := struct {
		plain
		Date *string `json:"date,omitempty"`
	}{plain: plain(in)}
	if in.Date != nil {
		d := in.Date.Format(scheduling.DateLayout)
		out.Date = &d
	}
	return json.Marshal(out)
}

func (in *Intent) UnmarshalJSON(data []byte) error {
	type plain Intent
	aux := struct {
		*plain
		Date *string `json:"date"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	in.Date = nil
	if aux.Date != nil {
		d, err := scheduling.ParseDate(*aux.Date)
		if err != nil {
			return err
		}
		in.Date = &d
	}
	return nil
}

// Extractor holds no state besides its time source.
type Extractor struct {
	now func() time.Time
}

// New returns an Extractor. now supplies "today" in the organization's
// time zone; nil means time.Now.
func New(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Classify runs booking detection, office, date and concern extraction.
// offices are the known office display names.
func (e *Extractor) Classify(message string, offices []string) Intent {
	in := Intent{
		IsBooking: IsBookingRequest(message),
		Office:    ExtractOffice(message, offices),
		Concern:   ExtractConcern(message),
	}
	if d, ok := e.ExtractDate(message); ok {
		in.Date = &d
	}
	return in
}

// IsBookingRequest reports whether message contains any booking keyword.
func IsBookingRequest(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range BookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractOffice returns the matched office name or "" when none is mentioned.
func ExtractOffice(message string, offices []string) string {
	lower := strings.ToLower(message)

	for _, topic := range OfficeTopics {
		for _, kw := range topic.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			for _, name := range offices {
				if strings.Contains(strings.ToLower(name), topic.Token) {
					return name
				}
			}
		}
	}

	for _, name := range offices {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

// ExtractDate tries M/D/YYYY, "today", "tomorrow" and "N days from now|later"
// in that order. The returned date is a calendar date (midnight UTC).
func (e *Extractor) ExtractDate(message string) (time.Time, bool) {
	lower := strings.ToLower(message)
	today := scheduling.DateOf(e.now())

	if m := numericDatePattern.FindStringSubmatch(message); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, ok := calendarDate(year, month, day); ok {
			return d, true
		}
	}

	if strings.Contains(lower, "today") {
		return today, true
	}
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1), true
	}
	if m := relativeDatePattern.FindStringSubmatch(lower); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days <= MaxRelativeDays {
			return today.AddDate(0, 0, days), true
		}
	}

	return time.Time{}, false
}

// calendarDate rejects dates time.Date would silently normalize, like 2/30.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// ExtractConcern strips stop words and keeps the remainder when it is at
// least MinConcernLength characters long.
func ExtractConcern(message string) *string {
	concern := strings.TrimSpace(stopWordPattern.ReplaceAllString(message, ""))
	if len(concern) < MinConcernLength {
		return nil
	}
	return &concern
}
