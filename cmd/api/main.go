package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dongmun.org/internal/bylaws"
	"dongmun.org/internal/config"
	"dongmun.org/internal/httpapi"
	"dongmun.org/internal/ledger"
	"dongmun.org/internal/member"
	"dongmun.org/internal/obs"
	"dongmun.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg := config.Load()

	var (
		ledgerSvc ledger.Service
		bylawsSvc bylaws.Service
		roster    member.Store
		probe     httpapi.ReadyProbe
		store     *pg.Store
	)
	if cfg.DatabaseDSN != "" {
		var err error
		store, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		ledgerSvc = store.Ledger()
		bylawsSvc = store.Bylaws()
		roster = store.Members()
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		// No DSN: run fully in memory for local development.
		log.Println("DONGMUN_PG_DSN not set, using in-memory stores")
		ledgerSvc = ledger.NewInMemory()
		bylawsSvc = bylaws.NewInMemory()
		roster = member.NewInMemory()
	}

	api := httpapi.New(httpapi.Options{
		Ready:      probe,
		Version:    version,
		Members:    member.NewService(roster),
		Ledger:     ledgerSvc,
		Bylaws:     bylawsSvc,
		TokenTTL:   cfg.TokenTTL,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
		MaxBody:    cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dongmun-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}
