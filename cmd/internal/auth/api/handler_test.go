package authapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"commerce/cmd/internal/auth/nonce"
	"commerce/cmd/internal/auth/session"
	"commerce/cmd/internal/auth/token"
	"commerce/cmd/internal/catalog"
	"commerce/cmd/internal/identity"
)

type testEnv struct {
	handler  *Handler
	mux      *http.ServeMux
	users    *identity.MemoryStore
	sessions *session.MemoryStore
	secret   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := LoadConfigFromEnv()
	sessCfg := session.DefaultConfig([]byte(strings.Repeat("s", 32)))

	sessions, err := session.NewMemoryStore(sessCfg)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	engine, err := nonce.NewEngine(nonce.NewMemoryStore(sessions), []byte(strings.Repeat("d", 32)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	users := identity.NewMemoryStore(cfg.DefaultRole)
	jwtSecret := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{0x5a}, 32))

	h, err := NewHandler(nil, cfg, sessCfg, sessions, engine, users, catalog.NewMemoryStore(), jwtSecret)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)

	return &testEnv{handler: h, mux: mux, users: users, sessions: sessions, secret: jwtSecret}
}

// do runs one request, carrying the session cookie when set.
func (e *testEnv) do(t *testing.T, method, path, cookie string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rd)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("expected a session cookie")
	return ""
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (e *testEnv) fetchNonce(t *testing.T, cookie string) (tag, newCookie string) {
	t.Helper()

	w := e.do(t, http.MethodGet, "/api/v1/auth/nonce", cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("nonce: status %d", w.Code)
	}
	resp := decodeBody[nonceResponse](t, w)
	if resp.Nonce == "" {
		t.Fatal("expected a nonce tag")
	}
	return resp.Nonce, sessionCookie(t, w)
}

func TestSignin_FullScenario(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	user, err := e.users.Create(t.Context(), "shopper@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// No cookie: the nonce endpoint mints a session and guarantees its row.
	tag, cookie := e.fetchNonce(t, "")
	if e.sessions.Len() != 1 {
		t.Fatalf("expected one session row, got %d", e.sessions.Len())
	}

	// Correct credentials and tag within the window.
	w := e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email:    "shopper@example.com",
		Password: "correct horse",
		Nonce:    tag,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signin: status %d, body %s", w.Code, w.Body.String())
	}
	signed := decodeBody[signinResponse](t, w).Token

	claims, err := token.Decode(e.secret, signed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Sub != user.UUID || claims.Role != user.Role {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	// The session now carries the identity.
	loaded, err := e.sessions.Load(t.Context(), cookie)
	if err != nil || loaded == nil {
		t.Fatalf("Load: (%v, %v)", loaded, err)
	}
	if loaded.State.UserID == nil || *loaded.State.UserID != user.UUID {
		t.Fatalf("session state: %+v", loaded.State)
	}

	// Replaying the same tag is rejected.
	w = e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email:    "shopper@example.com",
		Password: "correct horse",
		Nonce:    tag,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("replay: status %d, want 401", w.Code)
	}

	// A fresh nonce restores sign-in.
	tag2, _ := e.fetchNonce(t, cookie)
	w = e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email:    "shopper@example.com",
		Password: "correct horse",
		Nonce:    tag2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("fresh nonce signin: status %d", w.Code)
	}
}

func TestSignin_WrongTagBurnsNonce(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	if _, err := e.users.Create(t.Context(), "shopper@example.com", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tag, cookie := e.fetchNonce(t, "")

	// First attempt with a wrong tag fails and consumes the nonce.
	w := e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email: "shopper@example.com", Password: "pw", Nonce: "d3JvbmctdGFn",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong tag: status %d", w.Code)
	}

	// The correct tag now fails too: consumed on the first attempt.
	w = e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email: "shopper@example.com", Password: "pw", Nonce: tag,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("burned nonce: status %d", w.Code)
	}
}

func TestSignin_GenericFailures(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	if _, err := e.users.Create(t.Context(), "shopper@example.com", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("no cookie", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/api/v1/auth/signin", "", signinRequest{
			Email: "shopper@example.com", Password: "pw", Nonce: "xyz",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status %d", w.Code)
		}
	})

	t.Run("bad password same response as bad nonce", func(t *testing.T) {
		tag, cookie := e.fetchNonce(t, "")
		w := e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
			Email: "shopper@example.com", Password: "wrong", Nonce: tag,
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status %d", w.Code)
		}
		if got := decodeBody[errorResponse](t, w).Message; got != msgUnauthorized {
			t.Fatalf("message %q leaks failure cause", got)
		}
	})
}

func TestSignout_DestroysSession(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	_, cookie := e.fetchNonce(t, "")
	if e.sessions.Len() != 1 {
		t.Fatalf("expected one session row, got %d", e.sessions.Len())
	}

	w := e.do(t, http.MethodGet, "/api/v1/auth/signout", cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signout: status %d", w.Code)
	}
	if e.sessions.Len() != 0 {
		t.Fatalf("expected the session row gone, got %d", e.sessions.Len())
	}

	// Signing out again is fine.
	if w := e.do(t, http.MethodGet, "/api/v1/auth/signout", cookie, nil); w.Code != http.StatusOK {
		t.Fatalf("repeat signout: status %d", w.Code)
	}
}

func TestSignup_CreatesAndBinds(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	w := e.do(t, http.MethodPut, "/api/v1/auth/signup", "", signupRequest{
		Email: "new@example.com", Password: "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup: status %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody[userResponse](t, w)
	if created.Email != "new@example.com" || created.UUID == uuid.Nil {
		t.Fatalf("unexpected user: %+v", created)
	}

	cookie := sessionCookie(t, w)
	loaded, err := e.sessions.Load(t.Context(), cookie)
	if err != nil || loaded == nil {
		t.Fatalf("Load: (%v, %v)", loaded, err)
	}
	if loaded.State.UserID == nil || *loaded.State.UserID != created.UUID {
		t.Fatalf("session not bound: %+v", loaded.State)
	}

	// Duplicate email conflicts.
	w = e.do(t, http.MethodPut, "/api/v1/auth/signup", "", signupRequest{
		Email: "new@example.com", Password: "other",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d", w.Code)
	}

	// Invalid email is rejected before the store.
	w = e.do(t, http.MethodPut, "/api/v1/auth/signup", "", signupRequest{
		Email: "not-an-email", Password: "pw",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: status %d", w.Code)
	}
}

func (e *testEnv) signin(t *testing.T, email, password string) (tok, cookie string) {
	t.Helper()

	tag, cookie := e.fetchNonce(t, "")
	w := e.do(t, http.MethodPost, "/api/v1/auth/signin", cookie, signinRequest{
		Email: email, Password: password, Nonce: tag,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signin: status %d", w.Code)
	}
	return decodeBody[signinResponse](t, w).Token, cookie
}

func TestGetUser_TokenGated(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	user, err := e.users.Create(t.Context(), "shopper@example.com", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tok, _ := e.signin(t, "shopper@example.com", "pw")

	get := func(id, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/"+id, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		e.mux.ServeHTTP(w, req)
		return w
	}

	if w := get(user.UUID.String(), tok); w.Code != http.StatusOK {
		t.Fatalf("own user: status %d", w.Code)
	}
	if w := get(uuid.NewString(), tok); w.Code != http.StatusUnauthorized {
		t.Fatalf("other user: status %d", w.Code)
	}
	if w := get(user.UUID.String(), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}
	if w := get(user.UUID.String(), "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", w.Code)
	}
	if w := get("not-a-uuid", tok); w.Code != http.StatusNotFound {
		t.Fatalf("bad path id: status %d", w.Code)
	}
}

func TestItems_CRUDAndPagination(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	if _, err := e.users.Create(t.Context(), "seller@example.com", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tok, _ := e.signin(t, "seller@example.com", "pw")

	// Creation requires a token.
	w := e.do(t, http.MethodPost, "/api/v1/item/", "", createItemRequest{Name: "widget", Price: 100})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: status %d", w.Code)
	}

	create := func(name string) catalog.Deal {
		b, _ := json.Marshal(createItemRequest{Name: name, Price: 100})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/item/", bytes.NewReader(b))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		e.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("create %s: status %d", name, rec.Code)
		}
		return decodeBody[catalog.Deal](t, rec)
	}

	first := create("widget-0")
	for i := 1; i < 15; i++ {
		create("widget-" + uuid.NewString()[:8])
	}

	w = e.do(t, http.MethodGet, "/api/v1/item/"+first.UUID.String(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get item: status %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/api/v1/item/all", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	if got := len(decodeBody[itemsResponse](t, w).Items); got != 10 {
		t.Fatalf("default page size: got %d, want 10", got)
	}

	w = e.do(t, http.MethodGet, "/api/v1/item/all?limit=20&offset=10", "", nil)
	if got := len(decodeBody[itemsResponse](t, w).Items); got != 5 {
		t.Fatalf("second page: got %d, want 5", got)
	}

	w = e.do(t, http.MethodGet, "/api/v1/item/"+uuid.NewString(), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing item: status %d", w.Code)
	}
}
