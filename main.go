package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/assets"
	"github.com/robalobadob/crwordle/internal/casino"
	"github.com/robalobadob/crwordle/internal/catalog"
	"github.com/robalobadob/crwordle/internal/config"
	"github.com/robalobadob/crwordle/internal/gamelog"
	"github.com/robalobadob/crwordle/internal/httpserver"
	"github.com/robalobadob/crwordle/internal/ledger"
	"github.com/robalobadob/crwordle/internal/sqldb"
	"github.com/robalobadob/crwordle/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.InsecureSecret() {
		if cfg.Production {
			log.Fatal().Msg("JWT_SECRET must be set in production")
		}
		log.Warn().Msg("using development JWT secret")
	}

	// Balances and payouts go over the wire as numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cat, err := catalog.Open(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("failed to load card catalog")
	}

	db, err := sqldb.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sqldb.Migrate(ctx, db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	glog := gamelog.NewStore(db)
	sink := gamelog.NewSink(glog, 256)
	book := ledger.NewBook(ledger.NewSQLite(db), glog.TotalScore)
	cas := casino.New(book, casino.WithTick(cfg.CrashTick), casino.WithWagerLog(glog))
	sessions := store.NewMemoryStore(cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	srv := httpserver.New(httpserver.Deps{
		Config:  cfg,
		DB:      db,
		Catalog: cat,
		Store:   sessions,
		Book:    book,
		Log:     glog,
		Sink:    sink,
		Casino:  cas,
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Int("cards", cat.Len()).Msg("starting crwordle server")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	cas.Close()
	sink.Close()
}
