package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sentinelchain/filevault/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorKind maps a sentinel to its wire kind and HTTP status. The client
// reverses the mapping, so kinds are part of the API contract.
func errorKind(err error) (string, int) {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return "invalid_argument", http.StatusBadRequest
	case errors.Is(err, common.ErrFileDeleted):
		return "file_deleted", http.StatusGone
	case errors.Is(err, common.ErrAlreadyDeleted):
		return "already_deleted", http.StatusGone
	case errors.Is(err, common.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, common.ErrNotOwner):
		return "not_owner", http.StatusForbidden
	case errors.Is(err, common.ErrAccessDenied):
		return "access_denied", http.StatusForbidden
	case errors.Is(err, common.ErrSelfShare):
		return "self_share", http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidGrantee):
		return "invalid_grantee", http.StatusBadRequest
	case errors.Is(err, common.ErrAlreadyShared):
		return "already_shared", http.StatusConflict
	case errors.Is(err, common.ErrNoSuchGrant):
		return "no_such_grant", http.StatusNotFound
	case errors.Is(err, common.ErrAuthenticationFailed):
		return "authentication_failed", http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token", http.StatusUnauthorized
	default:
		return "internal", http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error envelope. Operation context from
// an OpError (file id, principal) is carried into the body so clients can
// report what failed without parsing the message.
func (s *Server) writeError(r *http.Request, w http.ResponseWriter, err error) {
	kind, status := errorKind(err)

	body := errorBody{Kind: kind, Message: err.Error()}

	var opErr *common.OpError
	if errors.As(err, &opErr) {
		if opErr.FileID >= 0 {
			id := opErr.FileID
			body.FileID = &id
		}
		body.Principal = opErr.Principal
	}

	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "kind", kind)
	}

	writeJSON(w, status, errorResponse{Error: body})
}

// readJSON decodes the request body into dst, rejecting unknown fields.
func (s *Server) readJSON(r *http.Request, w http.ResponseWriter, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBlobBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(r, w, common.ErrInvalidArgument)
		return false
	}
	return true
}

// fileIDFromPath parses the {id} path segment.
func (s *Server) fileIDFromPath(r *http.Request, w http.ResponseWriter) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		s.writeError(r, w, common.ErrInvalidArgument)
		return 0, false
	}
	return id, true
}
