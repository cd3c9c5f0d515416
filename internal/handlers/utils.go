package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/newschat/internal/adapter"
	"github.com/akolanti/newschat/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left to tell the client
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}

func validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		logRH.WithTrace(ctx).Warn("Context done before handling", "error", err)
		return false
	}
	return true
}

func serviceReady(w http.ResponseWriter) bool {
	if handlerInstance == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Service not initialised")
		return false
	}
	return true
}
