package middleware

import (
	"context"
	"net/http"
	"storefront-backend/pkg/logger"
	"strings"
)

// ActorHeader carries the customer or operator id asserted by the upstream
// gateway. Authentication happens before requests reach this service.
const ActorHeader = "X-Actor-ID"

type actorKey struct{}

// Actor copies ActorHeader into the request context and the request logger.
// Must run after RequestLogger.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actorID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actorID)
		reqLogger := logger.WithActor(*logger.WithContext(ctx), actorID)
		ctx = logger.NewContext(ctx, &reqLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorID returns the actor set by Actor, or "".
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// RequireActor rejects requests that carry no actor id.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorID(r.Context()) == "" {
			http.Error(w, "Unauthorized: missing "+ActorHeader, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
