// Package assistant answers chat messages. Booking requests from a known
// requester are booked on the spot; everything else gets a rule-based reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbook/internal/booking"
	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/intent"
	"campusbook/internal/scheduling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxHistory is how many prior messages are kept from a conversation.
	MaxHistory  = 10
	recentLimit = 5

	SourceAutoBooking = "auto_booking"
	SourceRules       = "rules"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// Engine is the part of booking.Engine the assistant needs.
type Engine interface {
	Offices(ctx context.Context) ([]offices.Office, error)
	ClassifyIntent(ctx context.Context, message string) (intent.Intent, error)
	FindOffice(ctx context.Context, name string) (*offices.Office, error)
	AutoBook(ctx context.Context, userID, officeID int64, date time.Time, concern string) (*booking.Result, error)
	Recent(ctx context.Context, userID int64, limit int) ([]bookings.UserBooking, error)
	Today() time.Time
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Message string
	History []Message
	// UserID is nil for anonymous callers, which disables auto-booking.
	UserID *int64
}

type Reply struct {
	Success    bool            `json:"success"`
	Response   string          `json:"response"`
	Source     string          `json:"source"`
	HasContext bool            `json:"has_context"`
	Booking    *booking.Result `json:"booking,omitempty"`
}

type Service struct {
	engine Engine
	logger *zap.SugaredLogger
}

func NewService(engine Engine, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{engine: engine, logger: logger}
}

// TrimHistory keeps the last MaxHistory messages.
func TrimHistory(history []Message) []Message {
	if len(history) <= MaxHistory {
		return history
	}
	return history[len(history)-MaxHistory:]
}

// Reply answers one message. Booking failures are replies with Success
// false; an error is returned only for an empty message or a storage failure.
func (s *Service) Reply(ctx context.Context, req Request) (*Reply, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	history := TrimHistory(req.History)

	in, err := s.engine.ClassifyIntent(ctx, msg)
	if err != nil {
		return nil, err
	}

	var recent []bookings.UserBooking
	if req.UserID != nil {
		recent, err = s.engine.Recent(ctx, *req.UserID, recentLimit)
		if err != nil {
			// replies still work without the requester's history
			s.logger.Warnw("could not load recent appointments", "user_id", *req.UserID, "error", err.Error())
			recent = nil
		}
	}

	if in.IsBooking && req.UserID != nil {
		reply, err := s.autoBook(ctx, *req.UserID, in, history)
		if err != nil {
			return nil, err
		}
		reply.HasContext = len(recent) > 0
		return reply, nil
	}

	list, err := s.engine.Offices(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading offices: %w", err)
	}
	return &Reply{
		Success:    true,
		Response:   rules.respond(msg, list, recent),
		Source:     SourceRules,
		HasContext: len(recent) > 0,
	}, nil
}

func (s *Service) autoBook(ctx context.Context, userID int64, in intent.Intent, history []Message) (*Reply, error) {
	attempt := uuid.NewString()
	log := s.logger.With("attempt_id", attempt, "user_id", userID)

	name := in.Office
	if name == "" {
		var err error
		name, err = s.officeFromHistory(ctx, history)
		if err != nil {
			return nil, err
		}
	}
	if name == "" {
		log.Infow("auto-booking skipped, no office in message")
		return failed("Please specify which office you want to book with.", nil), nil
	}

	office, err := s.engine.FindOffice(ctx, name)
	if err != nil {
		if errors.Is(err, booking.ErrOfficeNotFound) {
			return failed(booking.KindOfficeNotFound.Message(), nil), nil
		}
		return nil, err
	}

	date := s.engine.Today().AddDate(0, 0, 1)
	if in.Date != nil {
		date = *in.Date
	}
	concern := ""
	if in.Concern != nil {
		concern = *in.Concern
	}

	log.Infow("auto-booking", "office_id", office.ID, "date", date.Format(time.DateOnly))
	res, err := s.engine.AutoBook(ctx, userID, office.ID, date, concern)
	if err != nil {
		log.Errorw("auto-booking failed", "office_id", office.ID, "error", err.Error())
		return nil, err
	}
	if !res.Success {
		log.Infow("auto-booking rejected", "office_id", office.ID, "kind", res.Kind)
		return failed(res.Error, res), nil
	}

	return &Reply{
		Success:  true,
		Response: bookedMessage(res),
		Source:   SourceAutoBooking,
		Booking:  res,
	}, nil
}

// officeFromHistory looks for an office mentioned in earlier user messages,
// newest first.
func (s *Service) officeFromHistory(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", nil
	}
	list, err := s.engine.Offices(ctx)
	if err != nil {
		return "", fmt.Errorf("loading offices: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, o := range list {
		names = append(names, o.Name)
	}

	for i := len(history) - 1; i >= 0; i-- {
		if !strings.EqualFold(history[i].Role, "user") {
			continue
		}
		if name := intent.ExtractOffice(history[i].Content, names); name != "" {
			return name, nil
		}
	}
	return "", nil
}

func failed(msg string, res *booking.Result) *Reply {
	return &Reply{Success: false, Response: msg, Source: SourceAutoBooking, Booking: res}
}

func bookedMessage(res *booking.Result) string {
	date := res.Date
	if d, err := scheduling.ParseDate(res.Date); err == nil {
		date = d.Format(displayDateLayout)
	}
	at := res.TimeFormatted
	if at == "" {
		at = res.Time
		if c, err := scheduling.ParseClock(res.Time); err == nil {
			at = c.Format12()
		}
	}

	return "✅ **Appointment booked successfully!**\n\n" +
		fmt.Sprintf("**Office:** %s\n", res.OfficeName) +
		fmt.Sprintf("**Date:** %s\n", date) +
		fmt.Sprintf("**Time:** %s\n", at) +
		fmt.Sprintf("**Concern:** %s\n\n", res.Concern) +
		"Your appointment is now pending approval. You'll receive updates on the status."
}
