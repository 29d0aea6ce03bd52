package httpapi

import (
	"io"
	"net/http"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/ledger"
)

// handlePutBlob stores an encrypted payload and returns its content handle.
// The body is opaque ciphertext; the server never sees a content key.
func (s *Server) handlePutBlob(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobBytes))
	if err != nil {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}
	if len(data) == 0 {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	handle, err := s.blobs.Put(r.Context(), data)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Debug(r.Context(), "blob stored", "handle", handle, "size", len(data), "principal", caller)
	writeJSON(w, http.StatusCreated, blobResponse{Handle: handle})
}

func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request, _ ledger.Principal) {
	handle := r.PathValue("handle")
	if handle == "" {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	data, err := s.blobs.Get(r.Context(), handle)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
