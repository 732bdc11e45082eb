package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/booking"
	intconfig "bookingflow/internal/config"
	"bookingflow/internal/domain"
	api "bookingflow/internal/http"
	"bookingflow/internal/repositories"
	"bookingflow/internal/services"
	"bookingflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// sessionStores picks the MySQL store when DB_DSN is set, else memory.
func sessionStores(env intconfig.Env, log logrus.FieldLogger) (func(owner string) booking.SessionStore, services.SessionPurger) {
	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		log.WithError(err).Warn("database tidak tersedia, sesi disimpan di memori")
	}
	if db != nil {
		repo := repositories.SessionRepository{DB: sqlx.NewDb(db, "mysql")}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.EnsureTable(ctx); err != nil {
			log.WithError(err).Warn("gagal menyiapkan tabel sesi, sesi disimpan di memori")
		} else {
			return func(owner string) booking.SessionStore { return repo.ForOwner(owner) }, repo
		}
	}
	mem := &services.MemorySessions{}
	return func(owner string) booking.SessionStore { return mem.ForOwner(owner) }, nil
}

func main() {
	env := intconfig.LoadEnv()
	log := newLogger(env.LogLevel)
	utils.SetLogger(log)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	storeFor, purger := sessionStores(env, log)
	defer intconfig.CloseDB()

	client := apiclient.New(env.TravelAPIBaseURL, env.TravelAPITimeout, log)
	cfg := booking.Config{
		MaxSeats:     env.MaxSeats,
		PollInterval: env.PaymentPollInterval,
		Paid:         booking.NewPaidPredicate(env.PaidStatusTokens, env.CashImpliesPaid),
		AdminFees: map[string]int64{
			domain.MethodTransfer: env.AdminFeeTransfer,
			domain.MethodQRIS:     env.AdminFeeQRIS,
		},
	}

	reg := services.NewFlowRegistry(func(owner string, n booking.Notifier) *booking.Flow {
		return booking.NewFlow(booking.Deps{
			Backend:  client,
			Status:   booking.NewStatusChain(client),
			Store:    storeFor(owner),
			Notifier: n,
			Logger:   log.WithField("owner", owner),
		}, cfg)
	}, env.SessionIdleTTL, log)
	if purger != nil {
		reg.WithPurger(purger, env.SessionRetention)
	}
	if err := reg.StartSweeper("@every 1m"); err != nil {
		log.WithError(err).Fatal("gagal menjalankan sweeper")
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           api.NewRouter(env, reg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Gagal menjalankan server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Mematikan server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown server gagal")
	}
	reg.Shutdown()

	log.Info("Server berhenti dengan aman.")
}
