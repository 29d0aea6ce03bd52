// Package httpapi exposes the ledger, blob store and key directory over a
// JSON HTTP API. Login is challenge–response: the wallet signs a single-use
// nonce and receives a short-lived bearer token.
package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/ledger"
	"github.com/sentinelchain/filevault/internal/logging"
	"github.com/sentinelchain/filevault/internal/server/auth"
	"github.com/sentinelchain/filevault/internal/server/repositories/keys"
	"github.com/sentinelchain/filevault/internal/storage"
)

const maxBlobBytes = 64 << 20

type Server struct {
	mux        *http.ServeMux
	ledger     *ledger.Service
	blobs      storage.Store
	keys       keys.Repository
	challenges *auth.ChallengeStore

	secretKey     []byte
	tokenValidity time.Duration

	log logging.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(log logging.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

func New(l *ledger.Service, blobs storage.Store, keyDir keys.Repository,
	challenges *auth.ChallengeStore, secretKey []byte, tokenValidity time.Duration,
	opts ...Option) *Server {

	s := &Server{
		mux:           http.NewServeMux(),
		ledger:        l,
		blobs:         blobs,
		keys:          keyDir,
		challenges:    challenges,
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		log:           logging.NewSlogLogger(slog.Default()),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/auth/challenge", s.handleChallenge)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.HandleFunc("POST /api/files", s.withAuth(s.handleUpload))
	s.mux.HandleFunc("GET /api/files", s.withAuth(s.handleListMine))
	s.mux.HandleFunc("GET /api/files/{id}", s.withAuth(s.handleGetFile))
	s.mux.HandleFunc("POST /api/files/{id}/share", s.withAuth(s.handleShare))
	s.mux.HandleFunc("POST /api/files/{id}/revoke", s.withAuth(s.handleRevoke))
	s.mux.HandleFunc("DELETE /api/files/{id}", s.withAuth(s.handleDelete))
	s.mux.HandleFunc("GET /api/files/{id}/grants", s.withAuth(s.handleListGrants))

	s.mux.HandleFunc("POST /api/keys", s.withAuth(s.handleRegisterKey))
	s.mux.HandleFunc("GET /api/keys/{address}", s.withAuth(s.handleGetKey))

	s.mux.HandleFunc("POST /api/blobs", s.withAuth(s.handlePutBlob))
	s.mux.HandleFunc("GET /api/blobs/{handle}", s.withAuth(s.handleGetBlob))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// authedHandler is a handler that runs with an authenticated principal.
type authedHandler func(w http.ResponseWriter, r *http.Request, caller ledger.Principal)

// withAuth resolves the bearer token to a principal address before invoking
// next. Requests without a valid token never reach the handler.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(r, w, common.ErrInvalidToken)
			return
		}

		address, err := auth.AddressFromToken(token, s.secretKey)
		if err != nil {
			s.writeError(r, w, err)
			return
		}

		next(w, r, ledger.Principal(address))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
