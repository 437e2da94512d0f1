package handler

import (
	"net/http"

	libSvc "tapstampr/internal/domain/services/library"
	"tapstampr/internal/httputil"
)

// StoreResolver returns the folder store for an authenticated user.
// *library.Namespaces satisfies it.
type StoreResolver interface {
	ForUser(userID string) libSvc.FolderStore
}

// storeFor picks the caller's store using the user ID set by the auth middleware
func storeFor(resolver StoreResolver, r *http.Request) libSvc.FolderStore {
	return resolver.ForUser(httputil.GetUserID(r))
}

// HealthCheck reports that the process is serving
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
