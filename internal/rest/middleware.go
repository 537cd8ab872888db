package rest

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// header set by the authenticating gateway, the API never issues or
// validates credentials itself.
const headerUserID = "X-User-Id"

type contextKey int

const userIDKey contextKey = iota

//RequesterID resolves the authenticated requester once per request
//and stores it in the context. Requests without a usable identity are
//rejected before any handler runs.
func RequesterID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(headerUserID))
		if err != nil || id == uuid.Nil {
			renderResponse(w, ErrorResponse{Error: "missing requester identity"}, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

//requesterID returns the identity resolved by RequesterID, handlers
//pass it explicitly into every service call.
func requesterID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(userIDKey).(uuid.UUID)
	return id
}
