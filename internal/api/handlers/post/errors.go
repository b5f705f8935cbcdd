package post

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Connector/internal/core/posts"
)

// maxBodySize caps request bodies; post and comment text are the only payloads
const maxBodySize = 64 * 1024

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// textInput is the request body for creating posts and comments.
// Author is decoded only so a client-supplied author can be rejected.
type textInput struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeJSON writes a 200 JSON response
func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers already sent
		log.Printf("Failed to encode response: %v", err)
	}
}

// decodeTextInput reads a size-limited textInput body.
// It writes the error response itself and reports false on failure.
func decodeTextInput(w http.ResponseWriter, r *http.Request) (textInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var input textInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large (max 64KB)")
			return input, false
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return input, false
	}

	// SECURITY: the author always comes from the verified identity
	if input.Author != "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest",
			"author must not be provided - derived from authenticated user")
		return input, false
	}

	return input, true
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case posts.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case posts.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())

	case posts.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err.Error())

	case posts.IsUnauthorized(err):
		writeError(w, http.StatusForbidden, "NotAuthorized", err.Error())

	default:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in post handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
