package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sentinelchain/filevault/internal/common"
)

// ErrUnavailable marks transport-level failures: the server could not be
// reached or answered with a server-side fault. Idempotent reads retry it.
var ErrUnavailable = errors.New("server unavailable")

// kindToErr reverses the server's error-kind mapping back to sentinels.
var kindToErr = map[string]error{
	"invalid_argument":      common.ErrInvalidArgument,
	"not_found":             common.ErrNotFound,
	"file_deleted":          common.ErrFileDeleted,
	"already_deleted":       common.ErrAlreadyDeleted,
	"not_owner":             common.ErrNotOwner,
	"access_denied":         common.ErrAccessDenied,
	"self_share":            common.ErrSelfShare,
	"invalid_grantee":       common.ErrInvalidGrantee,
	"already_shared":        common.ErrAlreadyShared,
	"no_such_grant":         common.ErrNoSuchGrant,
	"authentication_failed": common.ErrAuthenticationFailed,
	"invalid_token":         common.ErrInvalidToken,
	"internal":              common.ErrInternal,
}

func isTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, common.ErrInternal)
}

// decodeAPIError turns an error envelope into the sentinel the server meant,
// preserving the operation context when present.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Kind      string `json:"kind"`
			Message   string `json:"message"`
			FileID    *int64 `json:"file_id"`
			Principal string `json:"principal"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Kind == "" {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	sentinel, ok := kindToErr[envelope.Error.Kind]
	if !ok {
		sentinel = common.ErrInternal
	}

	if envelope.Error.FileID != nil || envelope.Error.Principal != "" {
		id := int64(-1)
		if envelope.Error.FileID != nil {
			id = *envelope.Error.FileID
		}
		return &common.OpError{
			Op:        resp.Request.Method + " " + resp.Request.URL.Path,
			FileID:    id,
			Principal: envelope.Error.Principal,
			Err:       sentinel,
		}
	}
	return sentinel
}
