package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	handler "github.com/hivestarter/governance/internal/adapters/handler/http"
	"github.com/hivestarter/governance/internal/adapters/identity"
	"github.com/hivestarter/governance/internal/adapters/notify"
	"github.com/hivestarter/governance/internal/adapters/repository/jsonfile"
	"github.com/hivestarter/governance/internal/adapters/repository/postgres"
	"github.com/hivestarter/governance/internal/core/ports"
	"github.com/hivestarter/governance/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("Warning: JWT_SECRET not set")
	}

	service, cleanup, err := buildService()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	proposalHandler := handler.NewProposalHandler(service)
	voteHandler := handler.NewVoteHandler(service)
	authMiddleware := handler.AuthMiddleware(identity.NewVerifier(secret))
	router := handler.NewHandler(proposalHandler, voteHandler, authMiddleware)

	server := &stdhttp.Server{Addr: "0.0.0.0:8080", Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

// buildService wires the governance service against postgres when
// POSTGRES_HOST is set, or against the single-file JSON store
// otherwise (the original app kept everything browser-local).
func buildService() (ports.GovernanceService, func(), error) {
	notifier := notify.NewLogNotifier()

	dbHost := os.Getenv("POSTGRES_HOST")
	if dbHost == "" {
		path := os.Getenv("GOVERNANCE_STORE_FILE")
		if path == "" {
			path = "governance.json"
		}
		log.Printf("No database configured, using file store at %s", path)
		store := jsonfile.NewStore(path)
		return services.NewGovernanceService(store, store, store, store, notifier), func() {}, nil
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
		dbHost, os.Getenv("POSTGRES_PORT"), os.Getenv("POSTGRES_DB"))
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	service := services.NewGovernanceService(
		postgres.NewProposalRepository(db),
		postgres.NewVoteRepository(db),
		postgres.NewOwnershipRepository(db),
		postgres.NewTokenBalanceRepository(db),
		notifier,
	)
	return service, func() { db.Close() }, nil
}
