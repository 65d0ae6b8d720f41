package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/broadcast-overlay/internal/api"
	"github.com/dom/broadcast-overlay/internal/assets"
	"github.com/dom/broadcast-overlay/internal/config"
	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository"
	"github.com/dom/broadcast-overlay/internal/repository/memory"
	"github.com/dom/broadcast-overlay/internal/store"
	"github.com/dom/broadcast-overlay/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_overlay"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.StateRecord{},
		&domain.Asset{},
		&domain.Preset{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "0", // Random port
		Environment:       "test",
		DebounceWindow:    50 * time.Millisecond, // Fast windows for tests
		SuppressionWindow: 100 * time.Millisecond,
		MaxAssetBytes:     1024 * 1024,
	}
}

// TestServer holds all components for integration testing. Persistence is
// in-memory so sync tests run without a database.
type TestServer struct {
	Server *httptest.Server
	Repos  *repository.Repositories
	Store  *store.Store
	Hub    *websocket.Hub
	Cache  *assets.Cache
	Config *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	repos := memory.NewRepositories()

	st := store.New(repos.State)
	st.LoadOrInit(context.Background())

	cache := assets.NewCache(repos.Asset, cfg.MaxAssetBytes)
	cache.Load(context.Background())

	hub := websocket.NewHub(st)
	st.SetListener(hub)
	go hub.Run()

	router := api.NewRouter(st, hub, cache, repos, cfg)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server: server,
		Repos:  repos,
		Store:  st,
		Hub:    hub,
		Cache:  cache,
		Config: cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL
func (ts *TestServer) WebSocketURL() string {
	return "ws" + ts.Server.URL[4:] + "/api/v1/ws"
}
