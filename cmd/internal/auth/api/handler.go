package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"commerce/cmd/internal/auth/nonce"
	"commerce/cmd/internal/auth/session"
	"commerce/cmd/internal/auth/token"
	"commerce/cmd/internal/catalog"
	"commerce/cmd/internal/identity"
)

// Handler wires HTTP endpoints to the auth core and its consumers.
type Handler struct {
	log     *slog.Logger
	cfg     Config
	sessCfg session.Config

	sessions session.Store
	nonces   *nonce.Engine
	users    identity.Store
	deals    catalog.Store

	// jwtSecret is the base64-encoded process-wide token signing secret.
	jwtSecret string
}

// NewHandler constructs the API handler over its stores.
func NewHandler(
	log *slog.Logger,
	cfg Config,
	sessCfg session.Config,
	sessions session.Store,
	nonces *nonce.Engine,
	users identity.Store,
	deals catalog.Store,
	jwtSecret string,
) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil || nonces == nil || users == nil || deals == nil {
		return nil, errors.New("authapi: nil store")
	}
	if jwtSecret == "" {
		return nil, errors.New("authapi: empty jwt secret")
	}

	return &Handler{
		log:       log,
		cfg:       cfg,
		sessCfg:   sessCfg,
		sessions:  sessions,
		nonces:    nonces,
		users:     users,
		deals:     deals,
		jwtSecret: jwtSecret,
	}, nil
}

// Register wires routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("GET /api/v1/auth/nonce", h.handleNonce)
	mux.HandleFunc("POST /api/v1/auth/signin", h.handleSignin)
	mux.HandleFunc("GET /api/v1/auth/signout", h.handleSignout)
	mux.HandleFunc("PUT /api/v1/auth/signup", h.handleSignup)
	mux.HandleFunc("GET /api/v1/user/{id}", h.handleGetUser)
	mux.HandleFunc("GET /api/v1/item/all", h.handleListItems)
	mux.HandleFunc("GET /api/v1/item/{id}", h.handleGetItem)
	mux.HandleFunc("POST /api/v1/item/", h.handleCreateItem)
}

// currentSession resolves the request's session: loaded from the store when
// live, rebuilt from the presented cookie when the row is gone, or freshly
// minted when no cookie was sent. The row itself is only materialized by a
// later Save or by the nonce issuance guarantee.
func (h *Handler) currentSession(r *http.Request) (*session.Session, error) {
	cookieValue, ok := session.CookieValueFromRequest(r)
	if !ok {
		return session.New(h.sessCfg.Secret)
	}

	loaded, err := h.sessions.Load(r.Context(), cookieValue)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		return loaded, nil
	}
	return session.FromCookieValue(h.sessCfg.Secret, cookieValue), nil
}

// handleNonce issues a single-use sign-in nonce for the caller's session and
// returns its validation tag.
func (h *Handler) handleNonce(w http.ResponseWriter, r *http.Request) {
	sess, err := h.currentSession(r)
	if err != nil {
		h.writeStoreError(w, h.log, "nonce.session", err)
		return
	}

	issued, err := h.nonces.Issue(r.Context(), sess.ID())
	if err != nil {
		h.writeStoreError(w, h.log, "nonce.issue", err)
		return
	}
	noncesIssued.Inc()

	session.SetCookie(w, h.sessCfg, sess.CookieValue(), time.Now().UTC())
	writeJSON(w, http.StatusOK, nonceResponse{Nonce: issued.Tag})
}

// handleSignin consumes the session's nonce, validates the echoed tag, checks
// credentials, and on success mints a claims token and binds the user to the
// session.
//
// The nonce is consumed before validation: the first attempt burns it whether
// or not the tag was right, so replays and second guesses always fail. A
// client that fumbles its tag must fetch a fresh nonce.
func (h *Handler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeBadRequest(w)
		return
	}

	// A caller without a cookie has no session id, hence no nonce to take;
	// the attempt fails downstream without revealing which check tripped.
	sess, err := h.currentSession(r)
	if err != nil {
		signinAttempts.WithLabelValues(outcomeError).Inc()
		h.writeStoreError(w, h.log, "signin.session", err)
		return
	}

	taken, err := h.nonces.Take(r.Context(), sess.ID())
	if err != nil {
		signinAttempts.WithLabelValues(outcomeError).Inc()
		h.writeStoreError(w, h.log, "signin.nonce", err)
		return
	}
	if !h.nonces.Validate(taken, req.Nonce) {
		signinAttempts.WithLabelValues(outcomeBadNonce).Inc()
		writeUnauthorized(w)
		return
	}

	email, password, ok := normalizeCredentials(req.Email, req.Password)
	if !ok {
		signinAttempts.WithLabelValues(outcomeBadPassword).Inc()
		writeUnauthorized(w)
		return
	}
	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			signinAttempts.WithLabelValues(outcomeBadPassword).Inc()
		} else {
			signinAttempts.WithLabelValues(outcomeError).Inc()
		}
		h.writeStoreError(w, h.log, "signin.auth", err)
		return
	}

	now := time.Now().UTC()
	claims := token.NewClaims(user.UUID, h.cfg.IssuerID, user.Role, now)
	signed, err := token.Encode(h.jwtSecret, claims)
	if err != nil {
		signinAttempts.WithLabelValues(outcomeError).Inc()
		h.writeStoreError(w, h.log, "signin.token", err)
		return
	}

	sess.State.SetUser(user.UUID, now)
	if _, err := h.sessions.Save(r.Context(), sess); err != nil {
		signinAttempts.WithLabelValues(outcomeError).Inc()
		h.writeStoreError(w, h.log, "signin.save", err)
		return
	}

	signinAttempts.WithLabelValues(outcomeOK).Inc()
	session.SetCookie(w, h.sessCfg, sess.CookieValue(), now)
	writeJSON(w, http.StatusOK, signinResponse{Token: signed})
}

// handleSignout destroys the caller's session. Destroying an absent session
// is a success.
func (h *Handler) handleSignout(w http.ResponseWriter, r *http.Request) {
	cookieValue, ok := session.CookieValueFromRequest(r)
	if ok {
		sess := session.FromCookieValue(h.sessCfg.Secret, cookieValue)
		if err := h.sessions.Destroy(r.Context(), sess); err != nil {
			h.writeStoreError(w, h.log, "signout.destroy", err)
			return
		}
	}

	session.ClearCookie(w, h.sessCfg)
	writeJSON(w, http.StatusOK, signoutResponse{Message: "signed out"})
}

// handleSignup registers a new account and binds it to the caller's session.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeBadRequest(w)
		return
	}

	email, password, ok := normalizeCredentials(req.Email, req.Password)
	if !ok {
		writeBadRequest(w)
		return
	}

	user, err := h.users.Create(r.Context(), email, password)
	if err != nil {
		h.writeStoreError(w, h.log, "signup.create", err)
		return
	}

	sess, err := h.currentSession(r)
	if err != nil {
		h.writeStoreError(w, h.log, "signup.session", err)
		return
	}
	now := time.Now().UTC()
	sess.State.SetUser(user.UUID, now)
	if _, err := h.sessions.Save(r.Context(), sess); err != nil {
		h.writeStoreError(w, h.log, "signup.save", err)
		return
	}

	session.SetCookie(w, h.sessCfg, sess.CookieValue(), now)
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

// handleGetUser returns account data for the token's own subject.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.bearerClaims(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	pathID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeNotFound(w)
		return
	}
	if claims.Sub != pathID {
		writeUnauthorized(w)
		return
	}

	user, err := h.users.GetByID(r.Context(), pathID)
	if err != nil {
		h.writeStoreError(w, h.log, "user.get", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

// bearerClaims extracts and verifies the Authorization bearer token.
func (h *Handler) bearerClaims(r *http.Request) (token.Claims, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		return token.Claims{}, false
	}
	claims, err := token.Decode(h.jwtSecret, raw)
	if err != nil {
		return token.Claims{}, false
	}
	return claims, true
}

func bearerToken(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}
