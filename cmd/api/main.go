package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nmburu/supportprobe/internal/config"
	"github.com/nmburu/supportprobe/internal/handler"
	"github.com/nmburu/supportprobe/internal/model/faq"
	"github.com/nmburu/supportprobe/internal/service/ai"
	convoservice "github.com/nmburu/supportprobe/internal/service/convo"
	"github.com/nmburu/supportprobe/internal/service/record"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize the FAQ table
	entries := faq.Seed()
	if cfg.FAQFile != "" {
		entries, err = faq.LoadFile(cfg.FAQFile)
		if err != nil {
			log.Fatalf("failed to load FAQ file: %v", err)
		}
		log.Printf("loaded %d FAQ entries from %s", len(entries), cfg.FAQFile)
	}
	faqStore := faq.NewMemoryStore(entries)

	// Initialize the response generator
	var generator convoservice.Generator
	if cfg.AI.Enabled() {
		provider, err := cfg.AI.ResolveProvider()
		if err != nil {
			log.Fatalf("failed to resolve generator provider: %v", err)
		}
		switch provider {
		case config.ProviderArk:
			generator, err = ai.NewArkGenerator(ctx, cfg.AI)
			if err != nil {
				log.Printf("warning: failed to initialize ark generator: %v", err)
				log.Println("continuing without a generator - FAQ answers and the apology reply remain available")
			} else {
				log.Println("ark generator initialized successfully")
			}
		case config.ProviderGroq:
			generator = ai.NewGroqGenerator(cfg.AI)
			log.Println("groq generator initialized successfully")
		}
	} else {
		log.Println("no generator credentials configured, skipping generator initialization")
	}

	// Initialize the transcript recorder
	var recorder convoservice.Recorder
	if cfg.Recorder.Enabled() {
		sheetsRecorder, err := record.NewSheetsRecorder(ctx, cfg.Recorder)
		if err != nil {
			log.Printf("warning: failed to initialize sheets recorder: %v", err)
			log.Println("continuing with log-only transcript recording")
			recorder = record.LogRecorder{}
		} else {
			log.Println("sheets recorder initialized successfully")
			recorder = sheetsRecorder
		}
	} else {
		log.Println("spreadsheet credentials not configured, transcripts will be logged only")
		recorder = record.LogRecorder{}
	}

	convoSvc := convoservice.NewService(faqStore, generator, recorder, cfg.Session)
	go convoSvc.Supervise(ctx)

	router := handler.NewRouter(faqStore, convoSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("supportprobe backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
