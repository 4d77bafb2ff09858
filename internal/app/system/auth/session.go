package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	emailKey    = "email"
	firstKey    = "first_name"
	lastKey     = "last_name"
	rolesKey    = "roles"
	tenantIDKey = "tenant_id"
)

// ErrUserGone is returned by a UserFetcher when the session's user no
// longer exists or is disabled; the request is then treated as signed out.
var ErrUserGone = errors.New("session user no longer active")

// UserFetcher reloads the session user on every request so role changes
// and disabled accounts take effect immediately.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, id string) (*SessionUser, error)
}

// SessionManager reads and writes the signed cookie session.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None; over
// plain http in development use secure=false so browsers keep the cookie.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "hrms-session"
	}

	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs([]byte(sessionKey)),
		Options: &sessions.Options{
			Domain:   domain,
			Path:     "/",
			Secure:   secure,
			HttpOnly: true,
		},
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	} else {
		store.Options.SameSite = http.SameSiteLaxMode
	}
	store.MaxAge(int(maxAge.Seconds()))

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher enables per-request reloading of the session user.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SignIn stores u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[emailKey] = u.Email
	sess.Values[firstKey] = u.FirstName
	sess.Values[lastKey] = u.LastName
	sess.Values[rolesKey] = strings.Join(u.Roles, ",")
	sess.Values[tenantIDKey] = u.TenantID
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in.
// A malformed or partial session simply yields no user.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			// Bad signature or stale key: continue as a visitor.
			next.ServeHTTP(w, r)
			return
		}
		isAuth, _ := sess.Values[isAuthKey].(bool)
		id := getString(sess, userIDKey)
		if !isAuth || id == "" {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:        id,
			Email:     getString(sess, emailKey),
			FirstName: getString(sess, firstKey),
			LastName:  getString(sess, lastKey),
			Roles:     splitRoles(getString(sess, rolesKey)),
			TenantID:  getString(sess, tenantIDKey),
		}

		if sm.fetcher != nil {
			fresh, err := sm.fetcher.FetchSessionUser(r.Context(), id)
			switch {
			case errors.Is(err, ErrUserGone):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				sm.log.Warn("session user refresh failed; using cookie snapshot",
					zap.String("user_id", id), zap.Error(err))
			default:
				u = fresh
			}
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyUnauthenticated(w, r)
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// Roles compare after NormalizeRole, so "hr-manager" satisfies "HR Manager".
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}
			if !u.HasAnyRole(allowed...) {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
