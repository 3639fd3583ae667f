package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"campusbook/internal/booking"
	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/intent"
	"campusbook/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type autoBookCall struct {
	userID   int64
	officeID int64
	date     time.Time
	concern  string
}

type fakeEngine struct {
	offices   []offices.Office
	recent    []bookings.UserBooking
	recentErr error
	result    *booking.Result
	bookErr   error
	calls     []autoBookCall
}

func strPtr(s string) *string { return &s }

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		offices: []offices.Office{
			{ID: 1, Name: "Cashier's Office", Location: strPtr("Admin Building")},
			{ID: 2, Name: "Clinic"},
			{ID: 3, Name: "Registrar's Office", Description: strPtr("student records and transcripts")},
		},
	}
}

func (f *fakeEngine) Offices(ctx context.Context) ([]offices.Office, error) { return f.offices, nil }

func (f *fakeEngine) ClassifyIntent(ctx context.Context, message string) (intent.Intent, error) {
	names := make([]string, 0, len(f.offices))
	for _, o := range f.offices {
		names = append(names, o.Name)
	}
	return intent.New(func() time.Time { return today }).Classify(message, names), nil
}

func (f *fakeEngine) FindOffice(ctx context.Context, name string) (*offices.Office, error) {
	for i := range f.offices {
		if strings.EqualFold(f.offices[i].Name, name) {
			return &f.offices[i], nil
		}
	}
	return nil, booking.ErrOfficeNotFound
}

func (f *fakeEngine) AutoBook(ctx context.Context, userID, officeID int64, date time.Time, concern string) (*booking.Result, error) {
	f.calls = append(f.calls, autoBookCall{userID, officeID, date, concern})
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	if f.result != nil {
		return f.result, nil
	}
	if concern == "" {
		concern = booking.DefaultConcern
	}
	var name string
	for _, o := range f.offices {
		if o.ID == officeID {
			name = o.Name
		}
	}
	return &booking.Result{
		Success:    true,
		BookingID:  41,
		OfficeID:   officeID,
		OfficeName: name,
		Date:       date.Format(scheduling.DateLayout),
		Time:       "09:00:00",
		Concern:    concern,
	}, nil
}

func (f *fakeEngine) Recent(ctx context.Context, userID int64, limit int) ([]bookings.UserBooking, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeEngine) Today() time.Time { return today }

func user(id int64) *int64 { return &id }

func TestReplyRejectsEmptyMessage(t *testing.T) {
	svc := NewService(newFakeEngine(), nil)
	_, err := svc.Reply(context.Background(), Request{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAutoBookingFromMessage(t *testing.T) {
	eng := newFakeEngine()
	svc := NewService(eng, nil)

	reply, err := svc.Reply(context.Background(), Request{
		Message: "I want to book an appointment with Registrar for my transcript tomorrow",
		UserID:  user(7),
	})
	require.NoError(t, err)

	require.Len(t, eng.calls, 1)
	call := eng.calls[0]
	assert.Equal(t, int64(7), call.userID)
	assert.Equal(t, int64(3), call.officeID)
	assert.Equal(t, today.AddDate(0, 0, 1), call.date)
	assert.Contains(t, call.concern, "transcript")

	assert.True(t, reply.Success)
	assert.Equal(t, SourceAutoBooking, reply.Source)
	require.NotNil(t, reply.Booking)
	assert.Contains(t, reply.Response, "Appointment booked successfully!")
	assert.Contains(t, reply.Response, "**Office:** Registrar's Office")
	assert.Contains(t, reply.Response, "**Date:** March 2, 2024")
	assert.Contains(t, reply.Response, "**Time:** 9:00 AM")
	assert.Contains(t, reply.Response, "pending approval")
}

func TestAutoBookingDefaultsToTomorrow(t *testing.T) {
	eng := newFakeEngine()
	svc := NewService(eng, nil)

	_, err := svc.Reply(context.Background(), Request{Message: "please book the clinic", UserID: user(7)})
	require.NoError(t, err)

	require.Len(t, eng.calls, 1)
	assert.Equal(t, int64(2), eng.calls[0].officeID)
	assert.Equal(t, today.AddDate(0, 0, 1), eng.calls[0].date)
	assert.Equal(t, "please  the clinic", eng.calls[0].concern)
}

func TestAnonymousBookingGetsRuleReply(t *testing.T) {
	eng := newFakeEngine()
	svc := NewService(eng, nil)

	reply, err := svc.Reply(context.Background(), Request{Message: "book me with the registrar for my transcript"})
	require.NoError(t, err)

	assert.Empty(t, eng.calls)
	assert.True(t, reply.Success)
	assert.Equal(t, SourceRules, reply.Source)
	assert.Contains(t, reply.Response, "Registrar's Office")
	assert.Contains(t, reply.Response, "They handle: student records and transcripts.")
}

func TestAutoBookingNeedsOffice(t *testing.T) {
	eng := newFakeEngine()
	svc := NewService(eng, nil)

	reply, err := svc.Reply(context.Background(), Request{Message: "can you schedule something for me", UserID: user(7)})
	require.NoError(t, err)

	assert.Empty(t, eng.calls)
	assert.False(t, reply.Success)
	assert.Equal(t, "Please specify which office you want to book with.", reply.Response)
}

func TestAutoBookingOfficeFromHistory(t *testing.T) {
	eng := newFakeEngine()
	svc := NewService(eng, nil)

	history := []Message{
		{Role: "user", Content: "I need to go to the clinic"},
		{Role: "assistant", Content: "The Cashier's Office handles payments."},
	}
	reply, err := svc.Reply(context.Background(), Request{
		Message: "ok schedule it today",
		History: history,
		UserID:  user(7),
	})
	require.NoError(t, err)

	require.Len(t, eng.calls, 1)
	// assistant turns are ignored, the user's clinic mention wins
	assert.Equal(t, int64(2), eng.calls[0].officeID)
	assert.Equal(t, today, eng.calls[0].date)
	assert.True(t, reply.Success)
}

func TestAutoBookingFailureIsReply(t *testing.T) {
	eng := newFakeEngine()
	eng.result = &booking.Result{
		Success: false,
		Kind:    booking.KindNoSlotAvailable,
		Error:   "No available slots found for Clinic. Please try a different date or book manually.",
	}
	svc := NewService(eng, nil)

	reply, err := svc.Reply(context.Background(), Request{Message: "book clinic", UserID: user(7)})
	require.NoError(t, err)

	assert.False(t, reply.Success)
	assert.Equal(t, eng.result.Error, reply.Response)
	assert.Equal(t, booking.KindNoSlotAvailable, reply.Booking.Kind)
}

func TestAutoBookingStorageFailureIsError(t *testing.T) {
	eng := newFakeEngine()
	eng.bookErr = errors.New("connection refused")
	svc := NewService(eng, nil)

	_, err := svc.Reply(context.Background(), Request{Message: "book clinic", UserID: user(7)})
	assert.ErrorIs(t, err, eng.bookErr)
}

func TestRecentFailureDoesNotBreakReply(t *testing.T) {
	eng := newFakeEngine()
	eng.recentErr = errors.New("timeout")
	svc := NewService(eng, nil)

	reply, err := svc.Reply(context.Background(), Request{Message: "hello", UserID: user(7)})
	require.NoError(t, err)
	assert.False(t, reply.HasContext)
	assert.Contains(t, reply.Response, "Hello!")
}

func TestRuleReplies(t *testing.T) {
	eng := newFakeEngine()
	eng.recent = []bookings.UserBooking{
		{BookingID: 9, OfficeName: "Clinic", Date: today, Time: scheduling.NewClock(13, 30), Status: "Pending"},
		{BookingID: 8, OfficeName: "Registrar's Office", Date: today.AddDate(0, 0, -3), Time: scheduling.NewClock(9, 0), Status: "Approved"},
	}
	svc := NewService(eng, nil)

	cases := []struct {
		msg  string
		want []string
	}{
		{"good morning", []string{"Hello!", "**Clinic** on March 1, 2024 at 1:30 PM"}},
		{"what is the status of my request", []string{"⏳ **Clinic**", "✅ **Registrar's Office**", "Time: 9:00 AM"}},
		{"how much is the tuition fee", []string{"you should book with the **Cashier's Office**", "'book me with Cashier's Office'"}},
		{"I feel a lot of stress", []string{"contact the **Guidance Office**", "'book me with Guidance'"}},
		{"when do you open", []string{"9:00 AM to 4:00 PM"}},
		{"steps to get started", []string{"Option 2: Manual booking"}},
		{"which offices exist", []string{"• **Cashier's Office** - Admin Building", "• **Clinic**\n"}},
		{"xyz", []string{`asking about: "xyz"`}},
	}
	for _, tc := range cases {
		reply, err := svc.Reply(context.Background(), Request{Message: tc.msg, UserID: user(7)})
		require.NoError(t, err, tc.msg)
		assert.True(t, reply.Success, tc.msg)
		assert.True(t, reply.HasContext, tc.msg)
		for _, w := range tc.want {
			assert.Contains(t, reply.Response, w, tc.msg)
		}
	}
}

func TestStatusWithoutAppointments(t *testing.T) {
	svc := NewService(newFakeEngine(), nil)

	reply, err := svc.Reply(context.Background(), Request{Message: "check my appointments"})
	require.NoError(t, err)
	assert.Equal(t, "You don't have any appointments yet. Would you like me to help you book one?", reply.Response)
}

func TestTrimHistory(t *testing.T) {
	var h []Message
	for i := 0; i < 15; i++ {
		h = append(h, Message{Role: "user", Content: fmt.Sprint(i)})
	}
	got := TrimHistory(h)
	require.Len(t, got, MaxHistory)
	assert.Equal(t, "5", got[0].Content)
	assert.Equal(t, "14", got[MaxHistory-1].Content)

	assert.Len(t, TrimHistory(h[:3]), 3)
}
