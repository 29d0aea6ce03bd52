package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelchain/filevault/internal/client/api"
	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/identity"
	"github.com/sentinelchain/filevault/internal/storage"
)

// fakeBackend emulates the server: blobs by handle, files with per-caller
// wrapped keys, and the key directory.
type fakeBackend struct {
	blobs  map[string][]byte
	files  map[int64]*api.File
	grants map[int64]map[string][]byte
	keys   map[string][]byte
	nextID int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		blobs:  make(map[string][]byte),
		files:  make(map[int64]*api.File),
		grants: make(map[int64]map[string][]byte),
		keys:   make(map[string][]byte),
	}
}

// fakeClient is one principal's view of the backend.
type fakeClient struct {
	b       *fakeBackend
	address string
}

var _ api.Client = (*fakeClient)(nil)

func (c *fakeClient) Login(ctx context.Context, address string, publicKey []byte, sign func(ctx context.Context, message []byte) ([]byte, error)) error {
	return nil
}

func (c *fakeClient) Ping(ctx context.Context) error { return nil }

func (c *fakeClient) Upload(ctx context.Context, req api.UploadRequest) (*api.File, *api.Receipt, error) {
	f := &api.File{
		ID:            c.b.nextID,
		ContentHandle: req.ContentHandle,
		Owner:         c.address,
		EncryptedName: req.EncryptedName,
		Size:          req.Size,
		WrappedKey:    req.OwnerWrappedKey,
	}
	c.b.files[f.ID] = f
	c.b.nextID++
	return f, &api.Receipt{Sequence: uint64(f.ID)}, nil
}

func (c *fakeClient) GetFile(ctx context.Context, id int64) (*api.File, error) {
	f, ok := c.b.files[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	view := *f
	if f.Owner != c.address {
		wrapped, ok := c.b.grants[id][c.address]
		if !ok {
			return nil, common.ErrAccessDenied
		}
		view.WrappedKey = wrapped
	}
	return &view, nil
}

func (c *fakeClient) ListMine(ctx context.Context) ([]int64, error) { return nil, nil }

func (c *fakeClient) Share(ctx context.Context, id int64, grantee string, wrappedKey []byte) (*api.Receipt, error) {
	if c.b.grants[id] == nil {
		c.b.grants[id] = make(map[string][]byte)
	}
	c.b.grants[id][grantee] = wrappedKey
	return &api.Receipt{}, nil
}

func (c *fakeClient) Revoke(ctx context.Context, id int64, grantee string) (*api.Receipt, error) {
	delete(c.b.grants[id], grantee)
	return &api.Receipt{}, nil
}

func (c *fakeClient) Delete(ctx context.Context, id int64) (*api.Receipt, error) {
	return &api.Receipt{}, nil
}

func (c *fakeClient) ListGrants(ctx context.Context, id int64) ([]api.Grant, error) {
	return nil, nil
}

func (c *fakeClient) RegisterKey(ctx context.Context, wrapPublicKey []byte) error {
	c.b.keys[c.address] = wrapPublicKey
	return nil
}

func (c *fakeClient) GetKey(ctx context.Context, address string) ([]byte, error) {
	pub, ok := c.b.keys[address]
	if !ok {
		return nil, common.ErrNotFound
	}
	return pub, nil
}

func (c *fakeClient) PutBlob(ctx context.Context, data []byte) (string, error) {
	handle := storage.HandleFor(data)
	c.b.blobs[handle] = data
	return handle, nil
}

func (c *fakeClient) GetBlob(ctx context.Context, handle string) ([]byte, error) {
	data, ok := c.b.blobs[handle]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func newCoordinator(t *testing.T, b *fakeBackend) (*Coordinator, *identity.Wallet) {
	t.Helper()
	wallet, err := identity.NewWallet()
	require.NoError(t, err)
	return New(&fakeClient{b: b, address: wallet.Address()}, wallet), wallet
}

func TestUploadDownload_OwnerRoundTrip(t *testing.T) {
	b := newFakeBackend()
	c, _ := newCoordinator(t, b)
	ctx := context.Background()

	plaintext := []byte("the vault contents")

	file, rcp, err := c.Upload(ctx, "notes.txt", plaintext)
	require.NoError(t, err)
	require.NotNil(t, rcp)

	name, got, err := c.Download(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", name)
	assert.Equal(t, plaintext, got)
}

func TestUpload_ServerSeesOnlyCiphertext(t *testing.T) {
	b := newFakeBackend()
	c, _ := newCoordinator(t, b)
	ctx := context.Background()

	plaintext := []byte("top secret")

	file, _, err := c.Upload(ctx, "secret.txt", plaintext)
	require.NoError(t, err)

	stored := b.blobs[file.ContentHandle]
	assert.NotContains(t, string(stored), "top secret")
	assert.NotEqual(t, "secret.txt", file.EncryptedName)
	assert.NotContains(t, file.EncryptedName, "secret")
}

func TestUpload_Empty(t *testing.T) {
	b := newFakeBackend()
	c, _ := newCoordinator(t, b)

	_, _, err := c.Upload(context.Background(), "x", nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestShare_GranteeCanDownload(t *testing.T) {
	b := newFakeBackend()
	owner, _ := newCoordinator(t, b)
	grantee, granteeWallet := newCoordinator(t, b)
	ctx := context.Background()

	require.NoError(t, grantee.RegisterWrapKey(ctx))

	plaintext := []byte("shared document")
	file, _, err := owner.Upload(ctx, "doc.pdf", plaintext)
	require.NoError(t, err)

	_, err = owner.Share(ctx, file.ID, granteeWallet.Address())
	require.NoError(t, err)

	name, got, err := grantee.Download(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", name)
	assert.Equal(t, plaintext, got)
}

func TestShare_UnregisteredGrantee(t *testing.T) {
	b := newFakeBackend()
	owner, _ := newCoordinator(t, b)
	ctx := context.Background()

	file, _, err := owner.Upload(ctx, "doc", []byte("data"))
	require.NoError(t, err)

	_, err = owner.Share(ctx, file.ID, "0xnokey")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestShare_NotOwner(t *testing.T) {
	b := newFakeBackend()
	owner, _ := newCoordinator(t, b)
	other, _ := newCoordinator(t, b)
	ctx := context.Background()

	file, _, err := owner.Upload(ctx, "doc", []byte("data"))
	require.NoError(t, err)

	_, err = other.Share(ctx, file.ID, "0xanyone")
	// The non-owner has no grant, so the record itself is out of reach.
	assert.ErrorIs(t, err, common.ErrAccessDenied)
}

func TestDownload_TamperedBlob(t *testing.T) {
	b := newFakeBackend()
	c, _ := newCoordinator(t, b)
	ctx := context.Background()

	file, _, err := c.Upload(ctx, "doc", []byte("data"))
	require.NoError(t, err)

	b.blobs[file.ContentHandle][5] ^= 0xff

	_, _, err = c.Download(ctx, file.ID)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
}

func TestDownload_WrongPrincipalWrappedKey(t *testing.T) {
	b := newFakeBackend()
	owner, _ := newCoordinator(t, b)
	grantee, granteeWallet := newCoordinator(t, b)
	intruder, intruderWallet := newCoordinator(t, b)
	ctx := context.Background()

	require.NoError(t, grantee.RegisterWrapKey(ctx))

	file, _, err := owner.Upload(ctx, "doc", []byte("data"))
	require.NoError(t, err)

	_, err = owner.Share(ctx, file.ID, granteeWallet.Address())
	require.NoError(t, err)

	// Hand the grantee's wrapped key to a different principal: the sealed box
	// must not open under the intruder's derived pair.
	b.grants[file.ID][intruderWallet.Address()] = b.grants[file.ID][granteeWallet.Address()]

	_, _, err = intruder.Download(ctx, file.ID)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
}
