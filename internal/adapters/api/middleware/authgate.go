package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	appauth "chatgate/internal/application/auth"
	"chatgate/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var closeUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// gate enforces that every protected request carries a valid, tenant-matched
// session cookie before reaching its handler.
type gate struct {
	codec       appauth.TokenCodec
	cookieName  string
	loginPath   string
	closeCode   int
	publicPaths []string
}

// AuthGate builds the gin middleware guarding all routes. It fails when no
// signing secret is configured; the process must not start without one.
func AuthGate(cfg *config.AuthConfig) (gin.HandlerFunc, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("auth gate requires a signing secret (set SESSION_SECRET)")
	}

	g := &gate{
		codec:       appauth.TokenCodec{Secret: cfg.SessionSecret, TenantID: cfg.TenantID},
		cookieName:  cfg.CookieName,
		loginPath:   cfg.LoginPath,
		closeCode:   cfg.WSAuthCloseCode,
		publicPaths: cfg.PublicPaths,
	}
	return g.handle, nil
}

func (g *gate) handle(c *gin.Context) {
	path := c.Request.URL.Path

	if g.isPublic(path) {
		c.Next()
		return
	}

	raw, found := extractCookie(c.GetHeader("Cookie"), g.cookieName)
	if found {
		if _, err := g.codec.Verify(raw); err == nil {
			c.Next()
			return
		}
	}

	// Unauthenticated. Deliberately opaque: absent, expired, forged and
	// wrong-tenant cookies all land here.
	if isWebSocketUpgrade(c.Request) {
		g.closeWebSocket(c)
	} else {
		g.redirectToLogin(c, path)
	}
	c.Abort()
}

// isPublic reports whether path is exempt from gating. Public paths match
// exactly or act as directory prefixes, never as arbitrary substrings.
func (g *gate) isPublic(path string) bool {
	for _, p := range g.publicPaths {
		if path == p {
			return true
		}
		if strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return true
		}
	}
	return false
}

func (g *gate) redirectToLogin(c *gin.Context, path string) {
	next := path
	if qs := c.Request.URL.RawQuery; qs != "" {
		next = path + "?" + qs
	}
	c.Redirect(http.StatusFound, g.loginPath+"?next="+next)
}

// closeWebSocket completes the upgrade handshake only to close with the
// policy close code, so clients can tell auth failure from a generic close.
func (g *gate) closeWebSocket(c *gin.Context) {
	conn, err := closeUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(g.closeCode, "authentication required"), deadline)
}

// extractCookie pulls the named cookie out of a raw Cookie header with a
// permissive parser: split on ';', then each segment on the first '=';
// segments without '=' are ignored and whitespace is trimmed.
func extractCookie(header, name string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == name {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// isWebSocketUpgrade reports whether the request is a websocket handshake
func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
