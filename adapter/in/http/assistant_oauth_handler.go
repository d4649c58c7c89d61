package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// OAuthStateTTL bounds how long a consent round trip may take.
const OAuthStateTTL = 10 * time.Minute

type OAuthHandler struct {
	oauth    *oauth2.Config
	states   out.OAuthStateStore
	accounts out.AccountWriter
	userID   uuid.UUID
	appURL   string
}

// NewOAuthHandler accepts a nil state store; state is then not verified.
func NewOAuthHandler(oauth *oauth2.Config, states out.OAuthStateStore, accounts out.AccountWriter, userID uuid.UUID, appURL string) *OAuthHandler {
	return &OAuthHandler{
		oauth:    oauth,
		states:   states,
		accounts: accounts,
		userID:   userID,
		appURL:   appURL,
	}
}

func (h *OAuthHandler) Register(app fiber.Router) {
	app.Get("/api/auth/google/signin", h.SignIn)
	app.Get("/api/auth/google/callback", h.Callback)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SignIn redirects to Google's consent screen asking for offline access.
func (h *OAuthHandler) SignIn(c *fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		return apperr.InternalWithError(err)
	}
	if h.states != nil {
		if err := h.states.StoreState(c.UserContext(), state, h.userID, OAuthStateTTL); err != nil {
			return apperr.InternalWithError(err)
		}
	}

	authURL := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	logger.WithContext(c.UserContext()).Info("Redirecting to Google consent")
	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *OAuthHandler) redirectResult(c *fiber.Ctx, outcome, reason string) error {
	q := url.Values{}
	q.Set("calendar", outcome)
	if reason != "" {
		q.Set("reason", reason)
	}
	return c.Redirect(h.appURL+"/?"+q.Encode(), fiber.StatusFound)
}

// Callback exchanges the code and stores the grant for the state's user.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.WithContext(ctx)

	if errParam := c.Query("error"); errParam != "" {
		log.WithField("error", errParam).Warn("Consent denied or failed")
		return h.redirectResult(c, "error", errParam)
	}
	code := c.Query("code")
	if code == "" {
		return h.redirectResult(c, "error", "missing_code")
	}

	userID := h.userID
	if h.states != nil {
		validated, err := h.states.ValidateState(ctx, c.Query("state"))
		if err != nil {
			log.WithError(err).Warn("OAuth state validation failed")
			return h.redirectResult(c, "error", "invalid_state")
		}
		userID = validated
	}

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		log.WithError(apperr.OAuthFailed(domain.ProviderGoogle, err)).Error("Code exchange failed")
		return h.redirectResult(c, "error", "exchange_failed")
	}

	if err := h.accounts.Upsert(ctx, userID, domain.ProviderGoogle, token); err != nil {
		log.WithError(err).Error("Storing calendar grant failed")
		return h.redirectResult(c, "error", "store_failed")
	}

	log.WithField("user_id", userID.String()).Info("Google Calendar connected")
	return h.redirectResult(c, "connected", "")
}
