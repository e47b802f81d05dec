package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/obs"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
	goerrors "github.com/goliatone/go-errors"
)

const msgAdminOnly = "User role is not authorized to access this route"

type principalKey struct{}

func withPrincipal(ctx context.Context, p *services.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// principalFrom returns the caller placed on the context by requireAuth.
func principalFrom(ctx context.Context) *services.Principal {
	p, _ := ctx.Value(principalKey{}).(*services.Principal)
	return p
}

// authOutcome classifies err for the auth counters.
func authOutcome(err error) string {
	switch {
	case err == nil:
		return obs.OutcomeSuccess
	case common.CategoryOf(err) == goerrors.CategoryInternal:
		return obs.OutcomeError
	default:
		return obs.OutcomeRejected
	}
}

// requireAuth resolves the bearer token into a Principal or answers 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.services.Verifier.Verify(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		s.metrics.AuthOutcome("verify", authOutcome(err))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// requireAdmin must run after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		if p == nil || !p.IsAdmin() {
			s.writeError(w, r, common.NewForbiddenError(msgAdminOnly))
			return
		}
		next.ServeHTTP(w, r)
	})
}
