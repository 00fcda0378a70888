package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/hivestarter/governance/internal/adapters/handler/http"
	"github.com/hivestarter/governance/internal/adapters/identity"
	"github.com/hivestarter/governance/internal/adapters/notify"
	repo "github.com/hivestarter/governance/internal/adapters/repository/postgres"
	"github.com/hivestarter/governance/internal/core/services"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T) *TestApp {
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	proposalRepo := repo.NewProposalRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	ownershipRepo := repo.NewOwnershipRepository(db)
	balanceRepo := repo.NewTokenBalanceRepository(db)

	svc := services.NewGovernanceService(proposalRepo, voteRepo, ownershipRepo, balanceRepo, notify.NewLogNotifier())

	proposalHandler := handler.NewProposalHandler(svc)
	voteHandler := handler.NewVoteHandler(svc)
	authMiddleware := handler.AuthMiddleware(identity.NewVerifier(testJWTSecret))
	router := handler.NewHandler(proposalHandler, voteHandler, authMiddleware)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func (app *TestApp) SeedOwner(t *testing.T, projectID, username string) {
	t.Helper()
	_, err := app.DB.Exec("INSERT INTO project_owners (project_id, username) VALUES ($1, $2)", projectID, username)
	require.NoError(t, err)
}

func (app *TestApp) SeedTokens(t *testing.T, projectID, username string, balance int64) {
	t.Helper()
	_, err := app.DB.Exec("INSERT INTO governance_tokens (project_id, username, balance) VALUES ($1, $2, $3)", projectID, username, balance)
	require.NoError(t, err)
}

func accessToken(t *testing.T, username string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}
