package httpapi

import (
	"net/http"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/ledger"
	"github.com/sentinelchain/filevault/internal/server/repositories/keys"
)

// handleRegisterKey publishes the caller's wrap public key. Owners look the
// key up when wrapping a content key for this principal.
func (s *Server) handleRegisterKey(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	var req registerKeyRequest
	if !s.readJSON(r, w, &req) {
		return
	}
	if len(req.WrapPublicKey) != 32 {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	rec := &keys.Record{Address: string(caller), WrapPublicKey: req.WrapPublicKey}
	if err := s.keys.Save(r.Context(), rec); err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Info(r.Context(), "wrap key registered", "address", caller)
	writeJSON(w, http.StatusOK, keyResponse{Address: string(caller), WrapPublicKey: req.WrapPublicKey})
}

func (s *Server) handleGetKey(w http.ResponseWriter, r *http.Request, _ ledger.Principal) {
	address := r.PathValue("address")
	if address == "" {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	rec, err := s.keys.Get(r.Context(), address)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, keyResponse{Address: rec.Address, WrapPublicKey: rec.WrapPublicKey})
}
