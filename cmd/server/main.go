package main // Entry point: wires storage, services, handlers and starts the API

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/config"
	"github.com/tiffarshi-web/pswdirect/internal/database"
	"github.com/tiffarshi-web/pswdirect/internal/eligibility"
	"github.com/tiffarshi-web/pswdirect/internal/handler"
	"github.com/tiffarshi-web/pswdirect/internal/logging"
	"github.com/tiffarshi-web/pswdirect/internal/queue"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
	"github.com/tiffarshi-web/pswdirect/internal/router"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logging.Log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional: without it the posting log, response cache
	// and rate limiter all degrade gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logging.Log.Warn("redis unavailable; posting log, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shifts := repository.NewShiftRepo(db)
	workers := repository.NewWorkerRepo(db)
	bookings := repository.NewBookingRepo(db)
	payrollRepo := repository.NewPayrollRepo(db)
	alerts := repository.NewAlertRepo(db)
	settings := repository.NewSettingsRepo(db, config.DefaultSettings())

	var postingLog eligibility.PostingLog
	if rdb != nil {
		postingLog = repository.NewRedisPostingLog(rdb)
	}

	// The filter re-reads the radius and reopen window per request, so
	// settings edits apply without a restart.
	filter := eligibility.NewDynamicFilter(settings, postingLog)

	lifecycle := service.NewLifecycle(shifts, workers, settings, postingLog, queue.Publisher{})
	payroll := service.NewPayroll(shifts, payrollRepo, settings)
	scanner := service.NewRiskScanner(shifts, payrollRepo, workers, alerts)

	// The consumer turns shift events into notification records; a
	// broker outage only pauses notifications, never shift flow.
	go func() {
		if err := queue.StartShiftConsumer(); err != nil {
			logging.Log.WithError(err).Error("shift event consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Worker:   handler.NewWorkerShiftHandler(lifecycle, shifts, workers, filter),
		Profile:  handler.NewWorkerProfileHandler(workers),
		Admin:    handler.NewAdminShiftHandler(lifecycle, shifts, users),
		Booking:  handler.NewBookingHandler(bookings, lifecycle),
		Payroll:  handler.NewPayrollHandler(payroll),
		Alerts:   handler.NewAlertHandler(scanner),
		Settings: handler.NewSettingsHandler(settings),
	})

	addr := ":" + cfg.Port
	logging.Log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		logging.Log.WithError(err).Fatal("server stopped")
	}
}
