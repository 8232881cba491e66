package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/marketloop/negotiator/internal/config"
	"github.com/marketloop/negotiator/internal/handler"
	listingHandler "github.com/marketloop/negotiator/internal/handler/listing"
	negotiationHandler "github.com/marketloop/negotiator/internal/handler/negotiation"
	listingModel "github.com/marketloop/negotiator/internal/model/listing"
	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/ai"
	negotiationService "github.com/marketloop/negotiator/internal/service/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
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

	listings, transcripts, cleanup := buildStores(cfg.Store)
	defer cleanup()

	generator := buildGenerator(ctx, cfg.AI)

	engine := negotiationService.NewEngine(generator, nil, transcripts, cfg.Negotiation.TurnTimeout)
	svc := negotiationService.NewService(engine, transcripts)

	router := handler.NewRouter(
		listingHandler.New(listings),
		negotiationHandler.New(svc, listings, cfg.Negotiation),
	)

	startServer(ctx, cfg.Server, router)
}

// buildStores selects the persistence backend for listings and transcripts.
func buildStores(cfg config.StoreConfig) (listingModel.Store, transcript.Store, func()) {
	cleanup := func() {}

	switch cfg.Backend {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to open mysql: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("failed to connect to mysql: %v", err)
		}
		log.Println("mysql store initialized")
		return listingModel.NewSQLStore(db), transcript.NewSQLStore(db), func() { _ = db.Close() }

	case "csv":
		store, err := transcript.NewCSVStore(cfg.TranscriptDir)
		if err != nil {
			log.Fatalf("failed to initialize csv transcript store: %v", err)
		}
		log.Printf("csv transcript store initialized at %s", cfg.TranscriptDir)
		return listingModel.NewMemoryStore(listingModel.Seed()), store, cleanup

	default:
		return listingModel.NewMemoryStore(listingModel.Seed()), transcript.NewMemoryStore(), cleanup
	}
}

// buildGenerator prefers the Ark-backed collaborator, falling back to the
// deterministic rule-based one when no credentials are configured.
func buildGenerator(ctx context.Context, cfg config.AIConfig) model.Generator {
	if !cfg.Enabled() {
		log.Println("Ark credentials not configured, using rule-based generator")
		return negotiationService.RuleBased{}
	}

	aiService, err := ai.NewService(ctx, cfg)
	if err != nil {
		log.Printf("warning: failed to initialize AI service: %v", err)
		log.Println("falling back to rule-based generator")
		return negotiationService.RuleBased{}
	}
	log.Println("AI service initialized successfully")
	return aiService
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("negotiator backend listening on %s", addr)
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
