package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"campusbook/internal/assistant"
	"campusbook/internal/auth"
	"campusbook/internal/booking"
	"campusbook/internal/db"
	"campusbook/internal/domain/storage"
	"campusbook/internal/ratelimiter"
	"campusbook/internal/reference"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 30
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// LoadBookingConfig reads the booking policy knobs.
func LoadBookingConfig() (bookingConfig, error) {
	cfg := bookingConfig{
		lookaheadDays:  1,
		defaultConcern: os.Getenv("BOOKING_DEFAULT_CONCERN"),
		location:       time.Local,
		hashidsSalt:    os.Getenv("HASHIDS_SALT"),
	}

	if val, exists := os.LookupEnv("BOOKING_LOOKAHEAD_DAYS"); exists {
		days, err := strconv.Atoi(val)
		if err != nil || days < 0 {
			return cfg, fmt.Errorf("invalid BOOKING_LOOKAHEAD_DAYS %q", val)
		}
		cfg.lookaheadDays = days
	}

	if tz := os.Getenv("BOOKING_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
		}
		cfg.location = loc
	}

	return cfg, nil
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.3.0"

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	maxConns := int32(10)
	if val := os.Getenv("DB_MAX_CONNS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
		}
		maxConns = int32(n)
	}

	maxIdleTime := os.Getenv("DB_MAX_IDLE_TIME")
	if maxIdleTime == "" {
		maxIdleTime = "15m"
	}

	bookingCfg, err := LoadBookingConfig()
	if err != nil {
		log.Fatal(err)
	}

	cfg := config{
		addr: os.Getenv("ADDR"),
		env:  os.Getenv("ENV"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    maxConns,
			maxIdleTime: maxIdleTime,
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				iss:    os.Getenv("AUTH_TOKEN_ISS"),
			},
		},
		booking:     bookingCfg,
		rateLimiter: LoadRateLimiterConfig(),
		cors:        corsConfig{allowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGIN"))},
	}
	if cfg.addr == "" {
		cfg.addr = ":8080"
	}
	if cfg.auth.token.iss == "" {
		cfg.auth.token.iss = "campusbook"
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET must be set")
	}

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	container := storage.NewContainer(pool)

	refs, err := reference.New(cfg.booking.hashidsSalt)
	if err != nil {
		logger.Fatal(err)
	}

	loc := cfg.booking.location
	engine := booking.NewEngine(container.Offices, container.Bookings, container, refs, logger, booking.Config{
		Lookahead:      cfg.booking.lookaheadDays,
		DefaultConcern: cfg.booking.defaultConcern,
		Now:            func() time.Time { return time.Now().In(loc) },
	})

	rateLimiter := ratelimiter.NewTokenBucketLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		engine:        engine,
		assistant:     assistant.NewService(engine, logger),
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		dbPing:        pool.Ping,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
