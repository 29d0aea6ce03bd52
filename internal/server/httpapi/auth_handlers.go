package httpapi

import (
	"net/http"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/identity"
	"github.com/sentinelchain/filevault/internal/server/auth"
)

// handleChallenge issues a single-use login nonce for the claimed address.
// The address is not verified here; only a valid signature over the nonce
// proves control of it.
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !s.readJSON(r, w, &req) {
		return
	}
	if req.Address == "" {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	nonce := s.challenges.Issue(req.Address)
	writeJSON(w, http.StatusOK, challengeResponse{Nonce: nonce})
}

// handleLogin exchanges a signed challenge for a bearer token. The nonce is
// consumed whether or not the signature verifies, so a failed attempt cannot
// be retried against the same challenge.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.readJSON(r, w, &req) {
		return
	}
	if req.Address == "" || req.Nonce == "" || len(req.PublicKey) == 0 || len(req.Signature) == 0 {
		s.writeError(r, w, common.ErrInvalidArgument)
		return
	}

	if !s.challenges.Consume(req.Address, req.Nonce) {
		s.writeError(r, w, common.ErrAuthenticationFailed)
		return
	}

	message := auth.ChallengeMessage(req.Nonce)
	if !identity.VerifySignature(req.Address, req.PublicKey, message, req.Signature) {
		s.writeError(r, w, common.ErrAuthenticationFailed)
		return
	}

	token, err := auth.GenerateToken(req.Address, s.secretKey, s.tokenValidity)
	if err != nil {
		s.writeError(r, w, common.ErrInternal)
		return
	}

	s.log.Info(r.Context(), "principal logged in", "address", req.Address)
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
