// Package coordinator implements the client-side workflows that combine the
// wallet, the payload cipher and the server API: encrypting uploads, key
// wrapping for shares, and decrypting retrievals. The server only ever sees
// ciphertext and wrapped keys.
package coordinator

import (
	"context"
	"fmt"

	"github.com/sentinelchain/filevault/internal/client/api"
	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/cryptox"
	"github.com/sentinelchain/filevault/internal/identity"
)

// Coordinator runs the end-to-end encrypted file workflows for one signed-in
// principal.
type Coordinator struct {
	client api.Client
	signer identity.Signer
}

func New(client api.Client, signer identity.Signer) *Coordinator {
	return &Coordinator{client: client, signer: signer}
}

// RegisterWrapKey derives the principal's wrap key pair and publishes the
// public half so owners can share files with this principal.
func (c *Coordinator) RegisterWrapKey(ctx context.Context) error {
	kp, err := cryptox.DeriveWrapKeyPair(ctx, c.signer.Address(), c.signer.Sign)
	if err != nil {
		return err
	}
	defer kp.Wipe()

	return c.client.RegisterKey(ctx, kp.Public[:])
}

// Upload encrypts plaintext and name under a fresh content key, stores the
// sealed blob, wraps the content key for the owner and registers the file.
func (c *Coordinator) Upload(ctx context.Context, name string, plaintext []byte) (*api.File, *api.Receipt, error) {
	if len(plaintext) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", common.ErrInvalidArgument)
	}

	contentKey := cryptox.NewContentKey()
	defer common.WipeByteArray(contentKey)

	sealed, err := cryptox.Seal(contentKey, plaintext)
	if err != nil {
		return nil, nil, err
	}
	sealedName, err := cryptox.SealString(contentKey, name)
	if err != nil {
		return nil, nil, err
	}

	handle, err := c.client.PutBlob(ctx, sealed)
	if err != nil {
		return nil, nil, err
	}

	kek, err := cryptox.DeriveContentKey(ctx, c.signer.Address(), c.signer.Sign)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(kek)

	ownerWrapped, err := cryptox.Seal(kek, contentKey)
	if err != nil {
		return nil, nil, err
	}

	return c.client.Upload(ctx, api.UploadRequest{
		ContentHandle:   handle,
		EncryptedName:   sealedName,
		Size:            int64(len(plaintext)),
		OwnerWrappedKey: ownerWrapped,
	})
}

// Download fetches the file, unwraps the content key for this principal and
// decrypts both payload and name.
func (c *Coordinator) Download(ctx context.Context, id int64) (string, []byte, error) {
	file, err := c.client.GetFile(ctx, id)
	if err != nil {
		return "", nil, err
	}

	sealed, err := c.client.GetBlob(ctx, file.ContentHandle)
	if err != nil {
		return "", nil, err
	}

	contentKey, err := c.unwrapContentKey(ctx, file)
	if err != nil {
		return "", nil, err
	}
	defer common.WipeByteArray(contentKey)

	plaintext, err := cryptox.Open(contentKey, sealed)
	if err != nil {
		return "", nil, err
	}
	name, err := cryptox.OpenString(contentKey, file.EncryptedName)
	if err != nil {
		return "", nil, err
	}
	return name, plaintext, nil
}

// Share unwraps the owner's copy of the content key, rewraps it to the
// grantee's published wrap key and records the grant.
func (c *Coordinator) Share(ctx context.Context, id int64, grantee string) (*api.Receipt, error) {
	file, err := c.client.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Owner != c.signer.Address() {
		return nil, fmt.Errorf("%w: file %d", common.ErrNotOwner, id)
	}

	contentKey, err := c.unwrapContentKey(ctx, file)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(contentKey)

	pub, err := c.client.GetKey(ctx, grantee)
	if err != nil {
		return nil, err
	}
	if len(pub) != 32 {
		return nil, fmt.Errorf("%w: malformed wrap key for %s", common.ErrInvalidGrantee, grantee)
	}
	var recipient [32]byte
	copy(recipient[:], pub)

	wrapped, err := cryptox.WrapKey(contentKey, &recipient)
	if err != nil {
		return nil, err
	}

	return c.client.Share(ctx, id, grantee, wrapped)
}

// unwrapContentKey recovers the content key from the caller-specific wrapped
// copy: the owner opens it with the derived key, a grantee with the derived
// wrap key pair.
func (c *Coordinator) unwrapContentKey(ctx context.Context, file *api.File) ([]byte, error) {
	if file.Owner == c.signer.Address() {
		kek, err := cryptox.DeriveContentKey(ctx, c.signer.Address(), c.signer.Sign)
		if err != nil {
			return nil, err
		}
		defer common.WipeByteArray(kek)
		return cryptox.Open(kek, file.WrappedKey)
	}

	kp, err := cryptox.DeriveWrapKeyPair(ctx, c.signer.Address(), c.signer.Sign)
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()
	return cryptox.UnwrapKey(file.WrappedKey, kp)
}
