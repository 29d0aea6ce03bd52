package httpapi

import (
	"net/http"

	"github.com/sentinelchain/filevault/internal/ledger"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	var req uploadRequest
	if !s.readJSON(r, w, &req) {
		return
	}

	rec, rcp, err := s.ledger.Upload(r.Context(), caller, req.ContentHandle, req.EncryptedName, req.Size, req.OwnerWrappedKey)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Info(r.Context(), "file uploaded", "file_id", rec.ID, "owner", caller, "size", rec.Size)
	writeJSON(w, http.StatusCreated, uploadResponse{
		File: fileResponse{
			ID:            rec.ID,
			ContentHandle: rec.ContentHandle,
			Owner:         string(rec.Owner),
			CreatedAt:     rec.CreatedAt,
			EncryptedName: rec.EncryptedName,
			Size:          rec.Size,
			WrappedKey:    rec.OwnerWrappedKey,
		},
		Receipt: newReceiptResponse(rcp),
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	id, ok := s.fileIDFromPath(r, w)
	if !ok {
		return
	}

	view, err := s.ledger.GetFile(r.Context(), caller, id)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileResponse(view))
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	ids, err := s.ledger.ListMine(r.Context(), caller)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, listResponse{IDs: ids})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	id, ok := s.fileIDFromPath(r, w)
	if !ok {
		return
	}

	var req shareRequest
	if !s.readJSON(r, w, &req) {
		return
	}

	rcp, err := s.ledger.Share(r.Context(), caller, id, ledger.Principal(req.Grantee), req.WrappedKey)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Info(r.Context(), "file shared", "file_id", id, "owner", caller, "grantee", req.Grantee)
	writeJSON(w, http.StatusOK, newReceiptResponse(rcp))
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	id, ok := s.fileIDFromPath(r, w)
	if !ok {
		return
	}

	var req revokeRequest
	if !s.readJSON(r, w, &req) {
		return
	}

	rcp, err := s.ledger.RevokeAccess(r.Context(), caller, id, ledger.Principal(req.Grantee))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Info(r.Context(), "access revoked", "file_id", id, "owner", caller, "grantee", req.Grantee)
	writeJSON(w, http.StatusOK, newReceiptResponse(rcp))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	id, ok := s.fileIDFromPath(r, w)
	if !ok {
		return
	}

	rcp, err := s.ledger.Delete(r.Context(), caller, id)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.log.Info(r.Context(), "file deleted", "file_id", id, "owner", caller)
	writeJSON(w, http.StatusOK, newReceiptResponse(rcp))
}

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request, caller ledger.Principal) {
	id, ok := s.fileIDFromPath(r, w)
	if !ok {
		return
	}

	grants, err := s.ledger.ListGrants(r.Context(), caller, id)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	// Wrapped keys are intentionally omitted: the history is audit data, only
	// GetFile hands out key material.
	resp := grantsResponse{Grants: make([]grantResponse, 0, len(grants))}
	for _, g := range grants {
		resp.Grants = append(resp.Grants, grantResponse{
			Grantee:   string(g.Grantee),
			GrantedAt: g.GrantedAt,
			Revoked:   g.Revoked,
			Sequence:  g.Sequence,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
