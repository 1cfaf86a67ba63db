// Package authgoogle implements sign-in through Google. The account
// must already exist in the directory; Google only proves the email.
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/krcapps/orderdash/internal/app/store/oauthstate"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// stateTTL bounds how long a consent screen may sit open.
const stateTTL = 10 * time.Minute

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *users.Directory
	Admin      users.AllowList
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string
	LoginURL     string // where error redirects land, e.g. "/login"
	HomeURL      string // where successful sign-ins land
}

func NewHandler(
	dir *users.Directory,
	admin users.AllowList,
	sessionMgr *auth.SessionManager,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Users:        dir,
		Admin:        admin,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		LoginURL:     "/login",
		HomeURL:      "/",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google: redirects to Google's consent
// screen with a fresh one-time state token.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(stateTTL)
	if err := h.StateStore.Save(ctx, state, r.URL.Query().Get("return"), expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates the
// state, exchanges the code, and signs the matching account in. The
// same gates as password login apply: no account means no session,
// and pending accounts stay outside unless allow-listed as admins.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectToLogin(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectToLogin(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToLogin(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToLogin(w, r, "user_info")
		return
	}

	u, err := h.Users.GetByEmail(ctxTimeout, googleUser.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			h.Log.Info("Google OAuth: no matching account",
				zap.String("email", googleUser.Email))
			h.redirectToLogin(w, r, "no_account")
			return
		}
		h.Log.Error("failed to look up user", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	role := models.RoleUser
	if h.Admin.Contains(u.Email) {
		role = models.RoleAdmin
	} else if !u.IsApproved() {
		h.Log.Info("Google OAuth: account pending approval",
			zap.String("user_id", u.ID))
		h.redirectToLogin(w, r, "pending_approval")
		return
	}

	sessionUser := &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: role}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("failed to establish session", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	dest := h.HomeURL
	if returnURL != "" && returnURL[0] == '/' {
		dest = returnURL
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.LoginURL+"?error="+code, http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
