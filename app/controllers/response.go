package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"portfolio/app/services"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// wantsJSON reports whether the request should get a JSON response
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Str("op", "controllers.sendJSON").Send()
	}
}

func sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, "Error: "+message, status)
}

// handleError maps a service error to its status code. Unexpected errors are
// logged and hidden from the client.
func handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		sendError(w, r, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		sendError(w, r, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrSignupDisabled):
		sendError(w, r, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		sendError(w, r, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrEmailTaken):
		sendError(w, r, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Str("op", op).Str("path", r.URL.Path).Send()
		sendError(w, r, "internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, r, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
