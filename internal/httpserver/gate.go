package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/auth"
	"github.com/campuskul/crm-console-api/internal/session"
)

// Route gate actions.
const (
	GateRender   = "render"
	GateRedirect = "redirect"
	GateNotFound = "not_found"
)

// GateDecision tells the console what to do with a navigation attempt.
type GateDecision struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// publicPaths are reachable without a session. An authenticated user
// landing on one is bounced to their dashboard instead.
var publicPaths = map[string]struct{}{
	"/login":        {},
	"/register":     {},
	"/unauthorized": {},
}

// ResolveRoute decides whether a console path renders, redirects or 404s
// for the given session. A nil session means unauthenticated.
func ResolveRoute(path string, sess *session.Session) GateDecision {
	path = normalizePath(path)
	_, public := publicPaths[path]

	if sess == nil {
		if public {
			return GateDecision{Action: GateRender}
		}
		return GateDecision{Action: GateRedirect, Target: "/login"}
	}

	home := "/" + sess.Role + "/dashboard"
	if public || path == "/" {
		return GateDecision{Action: GateRedirect, Target: home}
	}

	prefix, suffix := splitRolePrefix(path)
	switch prefix {
	case "":
		return GateDecision{Action: GateNotFound}
	case sess.Role:
		return GateDecision{Action: GateRender}
	default:
		// Wrong role subtree: keep the page, swap the prefix. The target
		// subtree renders its own variant of the same screen.
		if suffix == "" {
			return GateDecision{Action: GateRedirect, Target: home}
		}
		return GateDecision{Action: GateRedirect, Target: "/" + sess.Role + suffix}
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// splitRolePrefix returns the leading role segment and the rest of the
// path. A path outside both role subtrees returns an empty prefix.
func splitRolePrefix(path string) (string, string) {
	for _, role := range []string{session.RoleOwner, session.RoleEmployee} {
		marker := "/" + role
		if path == marker {
			return role, ""
		}
		if strings.HasPrefix(path, marker+"/") {
			return role, strings.TrimPrefix(path, marker)
		}
	}
	return "", ""
}

// gateHandler resolves a console path for the caller with real HTTP
// semantics: 200 to render, 302 to redirect, 404 otherwise. The token is
// optional since the gate must answer for logged-out navigation too.
func gateHandler(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session
		if header := c.GetHeader("Authorization"); header != "" {
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if parsed, err := manager.Parse(token); err == nil {
					sess = parsed
				}
			}
		}

		decision := ResolveRoute(c.Param("path"), sess)
		switch decision.Action {
		case GateRender:
			respondOK(c, decision)
		case GateRedirect:
			c.Redirect(http.StatusFound, decision.Target)
		default:
			c.JSON(http.StatusNotFound, envelope{Success: false, Message: "unknown console path"})
		}
	}
}
