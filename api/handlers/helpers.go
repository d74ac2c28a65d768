package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kendala-hub/core/auth"
	"kendala-hub/core/store"
)

func pathParam(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sessionOrFail(w http.ResponseWriter, ctx context.Context) *store.SessionRecord {
	sess := auth.SessionFromContext(ctx)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return sess
}

// queryInt parses a query parameter as int, returning (value, present, ok).
func queryInt(r *http.Request, key string) (int, bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, false
	}
	return n, true, true
}

func pathID(r *http.Request, param string) (int64, bool) {
	raw := pathParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
