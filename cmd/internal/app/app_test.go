package app

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "commerce/cmd/internal/auth/api"
	"commerce/cmd/internal/auth/nonce"
	"commerce/cmd/internal/auth/session"
	"commerce/cmd/internal/catalog"
	"commerce/cmd/internal/identity"
)

func testMux(t *testing.T, cfg Config) *http.ServeMux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	registerHTTP(mux, log, cfg, nil, false, nil)
	return mux
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	mux := testMux(t, Config{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if rr.Body.String() != "ok\n" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestReadyz_NoDBRequired(t *testing.T) {
	t.Parallel()

	mux := testMux(t, Config{ReadinessRequireDB: false})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestReadyz_DBRequiredButDisabled(t *testing.T) {
	t.Parallel()

	mux := testMux(t, Config{ReadinessRequireDB: true})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

// TestRegisterHTTP_AuthRoutesWired runs the full wiring path with memory
// stores: the auth handler registered through registerHTTP must serve the
// nonce route and set a session cookie.
func TestRegisterHTTP_AuthRoutesWired(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessCfg := session.DefaultConfig([]byte(strings.Repeat("s", 32)))

	sessions, err := session.NewMemoryStore(sessCfg)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	engine, err := nonce.NewEngine(nonce.NewMemoryStore(sessions), []byte(strings.Repeat("d", 32)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	authCfg := api.LoadConfigFromEnv()
	jwtSecret := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{0x5a}, 32))

	auth, err := api.NewHandler(log, authCfg, sessCfg, sessions,
		engine, identity.NewMemoryStore(authCfg.DefaultRole), catalog.NewMemoryStore(), jwtSecret)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	mux := http.NewServeMux()
	registerHTTP(mux, log, Config{}, nil, false, auth)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/auth/nonce", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var body struct {
		Nonce string `json:"nonce"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Nonce == "" {
		t.Fatalf("expected a nonce tag")
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Fatalf("expected a session cookie")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	mux := testMux(t, Config{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
