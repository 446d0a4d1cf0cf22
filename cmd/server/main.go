package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/cache"
	"github.com/iliyamo/cowork-booking/internal/config"
	"github.com/iliyamo/cowork-booking/internal/database"
	"github.com/iliyamo/cowork-booking/internal/handler"
	"github.com/iliyamo/cowork-booking/internal/queue"
	"github.com/iliyamo/cowork-booking/internal/router"
	"github.com/iliyamo/cowork-booking/internal/rpc"
	"github.com/iliyamo/cowork-booking/internal/service"
	"github.com/iliyamo/cowork-booking/internal/session"
	"github.com/iliyamo/cowork-booking/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)
	log := logrus.WithField("app", "cowork-booking")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	var c cache.Cache = cache.NewMemory(clock)
	if cacheCfg.Backend == "redis" && rdb != nil {
		c = cache.NewRedis(rdb, cacheCfg.Namespace)
	}

	authority := rpc.New(rpc.Options{
		BaseURL: cfg.AuthorityURL,
		APIKey:  cfg.AuthorityAnonKey,
		Timeout: cfg.AuthorityTimeout,
		Logger:  log,
	})
	reservations := service.NewReservationService(authority, log)
	otp := service.NewOtpService(authority, log)

	st, db, err := openStore(ctx, cfg, rdb)
	if err != nil {
		log.WithError(err).Fatal("restore store unavailable")
	}
	if db != nil {
		defer db.Close()
	}

	var pub queue.Publisher = queue.Nop{}
	if cfg.AMQPURL != "" {
		pub = queue.NewAMQPPublisher(cfg.AMQPURL, cfg.HoldQueue, log)
	}

	reg := session.NewRegistry(session.Deps{
		Reservations:  reservations,
		OTP:           otp,
		Store:         st,
		Publisher:     pub,
		Clock:         clock,
		Log:           log,
		To12Hour:      cfg.To12Hour,
		CancelOnClose: cfg.CancelOnClose,
	}, cfg.SessionIdleTTL)
	go reg.Run(ctx, cfg.SessionSweep)

	checks := map[string]handler.Pinger{}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	if db != nil {
		checks["mysql"] = db
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(log))

	router.Register(e, router.Deps{
		Health: &handler.HealthHandler{Checks: checks, Sessions: reg.Len},
		Browse: &handler.BrowseHandler{
			Catalog:      service.NewCatalogService(authority, c, log),
			Locations:    service.NewLocationsService(authority, c, cacheCfg.LocationsTTL, clock, log),
			Availability: service.NewAvailabilityService(authority, log),
			Log:          log.WithField("component", "browse-handler"),
		},
		Hold:      &handler.HoldHandler{Log: log.WithField("component", "hold-handler")},
		Otp:       &handler.OtpHandler{},
		Sessions:  reg,
		JWTSecret: cfg.JWTSecret,
		Secure:    cfg.IsProd(),
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     cacheCfg,
		Log:       log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreBackend}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	reg.Close(shutdownCtx)
	log.Info("server stopped")
}

func setupLogging(cfg config.Config) {
	if cfg.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

// openStore selects the restore-record backend.  The *sql.DB is returned
// for the mysql backend so main can close it and health-check it.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Store, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		if rdb == nil {
			return nil, nil, errors.New("STORE_BACKEND=redis but redis is unreachable")
		}
		return store.NewRedisStore(rdb, "restore", cfg.StoreTTL), nil, nil
	case config.StoreMySQL:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		ms := store.NewMySQLStore(db)
		if err := ms.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return ms, db, nil
	default:
		fs, err := store.NewFileStore(cfg.StoreDir)
		return fs, nil, err
	}
}

func requestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
