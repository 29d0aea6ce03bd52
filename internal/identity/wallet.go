package identity

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/cryptox"
)

// Wallet is a local Ed25519 signer backed by an in-memory seed.
type Wallet struct {
	address string
	priv    ed25519.PrivateKey
}

// NewWallet generates a wallet with a fresh random key.
func NewWallet() (*Wallet, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &Wallet{address: AddressFromPublicKey(pub), priv: priv}, nil
}

func (w *Wallet) Address() string { return w.address }

// PublicKey returns the wallet's Ed25519 public key.
func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.priv.Public().(ed25519.PublicKey)
}

// Sign signs message with the wallet key. Ed25519 signing is deterministic:
// the same message always yields the same signature.
func (w *Wallet) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ed25519.Sign(w.priv, message), nil
}

// keystore is the on-disk keystore layout. The seed is sealed with AES-GCM
// under an argon2id key derived from the passphrase.
type keystore struct {
	Address string `json:"address"`
	Salt    []byte `json:"salt"`
	Sealed  []byte `json:"sealed"`
}

func deriveKeystoreKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Save writes the wallet to path, sealing the seed under the passphrase.
func (w *Wallet) Save(path string, passphrase []byte) error {
	salt := common.GenerateRandByteArray(16)
	key := deriveKeystoreKey(passphrase, salt)
	defer common.WipeByteArray(key)

	sealed, err := cryptox.Seal(key, w.priv.Seed())
	if err != nil {
		return fmt.Errorf("sealing keystore: %w", err)
	}

	b, err := json.MarshalIndent(keystore{Address: w.address, Salt: salt, Sealed: sealed}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Load reads a keystore written by Save. A wrong passphrase surfaces as
// common.ErrAuthenticationFailed from the seal check.
func Load(path string, passphrase []byte) (*Wallet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keystore: %w", err)
	}

	var ks keystore
	if err := json.Unmarshal(b, &ks); err != nil {
		return nil, fmt.Errorf("parsing keystore: %w", err)
	}

	key := deriveKeystoreKey(passphrase, ks.Salt)
	defer common.WipeByteArray(key)

	seed, err := cryptox.Open(key, ks.Sealed)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)

	if len(seed) != ed25519.SeedSize {
		return nil, common.ErrAuthenticationFailed
	}

	priv := ed25519.NewKeyFromSeed(seed)
	w := &Wallet{address: AddressFromPublicKey(priv.Public().(ed25519.PublicKey)), priv: priv}
	if ks.Address != "" && ks.Address != w.address {
		return nil, fmt.Errorf("keystore address mismatch: %s", ks.Address)
	}
	return w, nil
}
