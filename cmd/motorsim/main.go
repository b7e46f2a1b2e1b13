// Command motorsim drives the synthetic-data engine from the command line:
// load configuration, build the engine, run the configured mode to
// completion (or until a shutdown signal), and exit with a code that
// distinguishes a clean batch completion from one that stopped early.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/motorsim/internal/alerts"
	"github.com/savegress/motorsim/internal/api"
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/engine"
)

const (
	exitOK           = 0
	exitConfigError  = 1
	exitRuntimeError = 2
	exitExhausted    = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var cfg *config.Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Printf("failed to load config: %v", err)
			return exitConfigError
		}
		cfg = loaded
	} else {
		cfg = config.LoadFromEnv()
	}

	log.Printf("starting motorsim — run_id=%s mode=%s seed=%d num_motors=%d",
		cfg.Run.RunID, cfg.Run.Mode, cfg.Run.Seed, cfg.Run.NumMotors)

	eng := engine.New()
	if err := eng.Init(cfg); err != nil {
		log.Printf("engine init failed: %v", err)
		return exitConfigError
	}

	dispatcher := alerts.NewDispatcherFromConfig(cfg.Notify)
	eng.SetAlertDispatcher(dispatcher)

	httpServer := startInspectionServer(eng)
	defer shutdownInspectionServer(httpServer)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Run.Mode {
	case config.ModeBatch:
		return runBatch(eng, sigCh)
	case config.ModeLive:
		return runLive(eng, cfg, sigCh)
	default:
		log.Printf("unrecognized mode %q", cfg.Run.Mode)
		return exitConfigError
	}
}

func startInspectionServer(eng *engine.Engine) *http.Server {
	addr := ":8090"
	if v := os.Getenv("INSPECTION_ADDR"); v != "" {
		addr = v
	}
	server := api.NewServer(eng)
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}

	go func() {
		log.Printf("inspection surface listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("inspection server error: %v", err)
		}
	}()
	return httpServer
}

func shutdownInspectionServer(httpServer *http.Server) {
	_ = httpServer.Close()
}

func runBatch(eng *engine.Engine, sigCh chan os.Signal) int {
	done := make(chan struct{})
	var result *engine.BatchResult
	var genErr error

	go func() {
		result, genErr = eng.GenerateBatch()
		close(done)
	}()

	select {
	case <-sigCh:
		log.Printf("shutdown signal received, waiting for in-flight batch generation to return")
		<-done
	case <-done:
	}

	if genErr != nil {
		log.Printf("batch generation failed: %v", genErr)
		return exitRuntimeError
	}

	log.Printf("batch generation finished: reason=%s records=%d", result.Reason, len(result.Records))
	if result.Reason != engine.ReasonCompleted {
		return exitExhausted
	}
	return exitOK
}

func runLive(eng *engine.Engine, cfg *config.Config, sigCh chan os.Signal) int {
	_ = cfg
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	statusEvery := 100
	tick := 0

	for {
		select {
		case <-sigCh:
			log.Printf("shutdown signal received at tick %d", tick)
			logFinalStatus(eng)
			return exitOK
		case <-ticker.C:
			if _, err := eng.Step(1); err != nil {
				log.Printf("live step failed: %v", err)
				return exitRuntimeError
			}
			tick++
			if tick%statusEvery == 0 {
				logFinalStatus(eng)
			}
		}
	}
}

func logFinalStatus(eng *engine.Engine) {
	status := eng.Status()
	log.Printf("status: tick=%d pending_decisions=%d failed_motors=%d history_len=%d",
		status.Tick, status.PendingDecisions, status.FailedMotors, status.HistoryLen)
	for _, id := range eng.PendingDecisions() {
		fmt.Printf("motor %d is pending a maintenance decision\n", id)
	}
}
