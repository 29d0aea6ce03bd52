package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelchain/filevault/internal/client/config"
	"github.com/sentinelchain/filevault/internal/identity"
)

func mustWallet(t *testing.T) *identity.Wallet {
	t.Helper()
	w, err := identity.NewWallet()
	require.NoError(t, err)
	return w
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		ServerEndpointAddr: "http://127.0.0.1:0",
		KeystorePath:       filepath.Join(dir, "wallet.json"),
		CacheDSN:           filepath.Join(dir, "cache.db"),
	}

	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

func TestDispatch_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(t)

	err := app.dispatch(context.Background(), "frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestDispatch_RequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)

	err := app.dispatch(context.Background(), "ls", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestDispatch_UsageErrors(t *testing.T) {
	app, _ := newTestApp(t)

	// Fake a session so command arg validation is reachable.
	app.wallet = mustWallet(t)

	tests := []struct {
		cmd  string
		args []string
	}{
		{"upload", nil},
		{"download", nil},
		{"share", []string{"1"}},
		{"revoke", nil},
		{"rm", nil},
		{"grants", nil},
	}
	for _, tc := range tests {
		err := app.dispatch(context.Background(), tc.cmd, tc.args)
		require.Error(t, err, tc.cmd)
		assert.Contains(t, err.Error(), "usage:", tc.cmd)
	}
}

func TestDispatch_Exit(t *testing.T) {
	app, _ := newTestApp(t)

	err := app.dispatch(context.Background(), "exit", nil)
	assert.Equal(t, errQuit, err)
}

func TestDispatch_Help(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, app.dispatch(context.Background(), "help", nil))
	assert.Contains(t, out.String(), "keygen")
}

func TestKeygen_CreatesKeystoreOnce(t *testing.T) {
	app, out := newTestApp(t)

	old := getPassword
	defer func() { getPassword = old }()
	getPassword = func(io.Writer) ([]byte, error) {
		return []byte("passphrase"), nil
	}

	require.NoError(t, app.Keygen(context.Background()))
	assert.Contains(t, out.String(), "Wallet created")

	// A second keygen must not overwrite the keystore.
	err := app.Keygen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRoot_QuitsOnExit(t *testing.T) {
	app, out := newTestApp(t)
	app.reader = bufioReader("help\nexit\n")

	app.Root(context.Background())
	assert.True(t, strings.Contains(out.String(), "Bye!"))
}
