package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msomdec/credlog/internal/handler"
	"github.com/msomdec/credlog/internal/password"
	"github.com/msomdec/credlog/internal/repository/sqlite"
	"github.com/msomdec/credlog/internal/service"
)

type testEnv struct {
	db  *sqlite.DB
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	passwords, err := password.NewAuthenticator(password.Config{Algorithm: password.Bcrypt, BcryptCost: 4})
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	reg := prometheus.NewRegistry()
	auth, err := service.NewAuthService(db, passwords, service.NewMetrics(reg))
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, service.NewAuditService(db), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := httptest.NewServer(handler.Wrap(mux, "*"))
	t.Cleanup(srv.Close)
	return &testEnv{db: db, srv: srv}
}
