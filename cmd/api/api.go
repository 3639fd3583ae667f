package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusbook/internal/assistant"
	"campusbook/internal/auth"
	"campusbook/internal/booking"
	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/intent"
	"campusbook/internal/ratelimiter"
	"campusbook/internal/scheduling"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// bookingEngine is implemented by *booking.Engine.
type bookingEngine interface {
	Offices(ctx context.Context) ([]offices.Office, error)
	Office(ctx context.Context, officeID int64) (*offices.Office, error)
	GetAvailability(ctx context.Context, officeID int64, date time.Time) (scheduling.Availability, error)
	Book(ctx context.Context, req booking.BookRequest) (*booking.Result, error)
	ClassifyIntent(ctx context.Context, message string) (intent.Intent, error)
	Lookup(ctx context.Context, ref string) (*bookings.BookingDetail, error)
	Recent(ctx context.Context, userID int64, limit int) ([]bookings.UserBooking, error)
}

type chatService interface {
	Reply(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

type application struct {
	config        config
	logger        *zap.SugaredLogger
	engine        bookingEngine
	assistant     chatService
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	dbPing        func(ctx context.Context) error
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	auth        authConfig
	booking     bookingConfig
	rateLimiter ratelimiter.Config
	cors        corsConfig
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type bookingConfig struct {
	lookaheadDays  int
	defaultConcern string
	location       *time.Location
	hashidsSalt    string
}

type corsConfig struct {
	allowedOrigins []string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := app.config.cors.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/offices", func(r chi.Router) {
			r.Get("/", app.listOfficesHandler)
			r.Route("/{officeID}", func(r chi.Router) {
				r.Get("/", app.getOfficeHandler)
				r.Get("/available-slots", app.availableSlotsHandler)
				r.With(app.AuthTokenMiddleware).Post("/bookings", app.createBookingHandler)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.listMyBookingsHandler)
			r.Get("/{reference}", app.getBookingHandler)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Use(app.OptionalAuthMiddleware)
			r.Use(app.RateLimiterMiddleware)
			r.Post("/chat", app.chatHandler)
			r.Post("/classify", app.classifyHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
