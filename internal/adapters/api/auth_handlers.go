package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"time"

	appauth "chatgate/internal/application/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// browserSessionCookie names the cookie carrying the per-browser session
// identifier used only during the authorize/callback round trip.
const browserSessionCookie = "cl_sid"

const (
	webSessionKeyState = "oidc_state"
	webSessionKeyNext  = "next"
)

// LoginRedirect godoc
//
//	@Summary		Login entry point
//	@Description	Forwards the browser into the OIDC login flow, preserving the next parameter
//	@Tags			auth
//	@Param			next	query	string	false	"Post-login destination"
//	@Success		302
//	@Router			/login [get]
func (h *Handler) LoginRedirect(c *gin.Context) {
	target := "/api/auth/login"
	if next := c.Query("next"); next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	c.Redirect(http.StatusFound, target)
}

// Login godoc
//
//	@Summary		Start a login attempt
//	@Description	Generates anti-CSRF state and redirects to the identity provider's authorize endpoint
//	@Tags			auth
//	@Param			next	query	string	false	"Post-login destination"
//	@Success		302
//	@Failure		500	{string}	string
//	@Router			/api/auth/login [get]
func (h *Handler) Login(c *gin.Context) {
	next := c.DefaultQuery("next", h.authCfg.DefaultNext)

	state, err := appauth.NewState()
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to start login")
		return
	}

	sid := h.ensureBrowserSession(c)
	h.webSessions.Set(sid, webSessionKeyState, state)
	h.webSessions.Set(sid, webSessionKeyNext, next)

	c.Redirect(http.StatusFound, h.authService.LoginURL(state))
}

// Callback godoc
//
//	@Summary		Complete a login attempt
//	@Description	Exchanges the authorization code, verifies the id_token and mints the session cookie
//	@Tags			auth
//	@Param			code	query	string	false	"Authorization code"
//	@Param			state	query	string	false	"Anti-CSRF state"
//	@Param			error	query	string	false	"Provider-reported error"
//	@Success		302
//	@Failure		400	{string}	string
//	@Failure		403	{string}	string
//	@Router			/api/auth/callback [get]
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	errorParam := c.Query("error")

	if errorParam != "" {
		c.String(http.StatusBadRequest, "Entra error: %s", errorParam)
		return
	}
	if code == "" {
		c.String(http.StatusBadRequest, "Missing code")
		return
	}

	sid, _ := c.Cookie(browserSessionCookie)
	expectedState, hasState := h.webSessions.Get(sid, webSessionKeyState)
	next, hasNext := h.webSessions.Get(sid, webSessionKeyNext)

	// One round trip per state: the stored values are gone from here on,
	// whichever way the attempt ends.
	h.webSessions.Delete(sid, webSessionKeyState)
	h.webSessions.Delete(sid, webSessionKeyNext)

	if state == "" || !hasState || state != expectedState {
		c.String(http.StatusBadRequest, "Invalid state")
		return
	}

	rawIDToken, err := h.authService.Exchange(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, appauth.ErrNoIDToken) {
			c.String(http.StatusBadRequest, "No id_token returned")
			return
		}
		c.String(http.StatusBadRequest, "Token exchange failed: %v", err)
		return
	}

	identity, err := h.authService.VerifyIDToken(c.Request.Context(), rawIDToken)
	if err != nil {
		if errors.Is(err, appauth.ErrSigningKeyNotFound) {
			c.String(http.StatusBadRequest, "Unable to find signing key")
			return
		}
		c.String(http.StatusBadRequest, "Invalid id_token: %v", err)
		return
	}

	// Defense in depth: the app is single-tenant even though the token
	// already verified.
	if identity.TenantID != h.authCfg.TenantID {
		c.String(http.StatusForbidden, "Forbidden: wrong tenant")
		return
	}

	token, err := h.tokenCodec.Mint(identity, time.Now())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to create session")
		return
	}

	if !hasNext || next == "" {
		next = h.authCfg.DefaultNext
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.authCfg.CookieName, token, int(appauth.SessionTokenTTL.Seconds()), "/", "", h.authCfg.CookieSecure, true)

	log.Info().Str("oid", identity.ObjectID).Msg("Login completed")
	c.Redirect(http.StatusFound, next)
}

// ensureBrowserSession returns the browser session id, minting the
// identifier cookie when the browser does not have one yet.
func (h *Handler) ensureBrowserSession(c *gin.Context) string {
	if sid, err := c.Cookie(browserSessionCookie); err == nil && sid != "" {
		return sid
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Error().Err(err).Msg("Failed to generate browser session id")
		return ""
	}
	sid := hex.EncodeToString(buf)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(browserSessionCookie, sid, 0, "/", "", h.authCfg.CookieSecure, true)
	return sid
}
