package auth

import (
	"context"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/sirupsen/logrus"
	"net/http"
	"strings"
)

// ErrUnknownSubject is returned by a SubjectLookup when the token's user no
// longer exists.
var ErrUnknownSubject = errors.New("unknown subject")

type SubjectLookup interface {
	LookupSubject(ctx context.Context, userID string) (Identity, error)
}

// ErrorWriter renders err onto w.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

var errPleaseAuthenticate = apperr.Unauthenticated("Please authenticate")

type Gate struct {
	Issuer *Issuer
	Users  SubjectLookup
	Log    *logrus.Entry
	Fail   ErrorWriter
}

// Authenticate rejects requests without a valid bearer token for an existing
// user and attaches the resolved Identity otherwise.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			g.fail(w, r, errPleaseAuthenticate)
			return
		}
		sub, err := g.Issuer.Verify(raw)
		if err != nil {
			g.log().WithError(err).Debug("token rejected")
			g.fail(w, r, errPleaseAuthenticate)
			return
		}

		id, err := g.Users.LookupSubject(r.Context(), sub)
		if errors.Is(err, ErrUnknownSubject) {
			g.log().WithField("user_id", sub).Debug("token subject not found")
			g.fail(w, r, errPleaseAuthenticate)
			return
		}
		if err != nil {
			g.fail(w, r, apperr.Internal("authentication error", err))
			return
		}
		id.IsAdmin = id.Role == RoleAdmin

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin only inspects the identity already on the context.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			g.fail(w, r, errPleaseAuthenticate)
			return
		}
		if !id.IsAdmin {
			g.fail(w, r, apperr.Forbidden("Access denied. Admin only."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	if g.Fail != nil {
		g.Fail(w, r, err)
		return
	}
	e := apperr.From(err)
	http.Error(w, e.Message, e.HTTPStatus())
}

func (g *Gate) log() *logrus.Entry {
	if g.Log != nil {
		return g.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
