package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds the oracle custody key and produces signatures the contracts
// verify with ecrecover. Construction fails when the key is missing or
// malformed; callers treat that as a fatal startup error, never a
// per-request one.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(hexKey string) (*Signer, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("oracle signing key is not configured")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid oracle signing key: %w", err)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the signer address the contracts are configured to trust.
func (s *Signer) Address() common.Address {
	return s.address
}

// PrivateKey exposes the custody key for building ledger-write transactors.
// The reconciliation loop is the single writer; see ReconciliationService.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// SignMessage signs a 32-byte message hash using the Ethereum personal
// message convention: the hash is prefixed and re-hashed before signing,
// because the contract side recovers through the same prefix. Signing the
// raw hash instead produces a signature the contract cannot verify.
// The recovery id is shifted to 27/28 as ecrecover expects.
func (s *Signer) SignMessage(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("message hash must be 32 bytes, got %d", len(hash))
	}

	sig, err := crypto.Sign(accounts.TextHash(hash), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	sig[64] += 27
	return sig, nil
}

// SignMessageHex returns the signature in the 0x-hex form the web layer
// forwards to the contract call.
func (s *Signer) SignMessageHex(hash []byte) (string, error) {
	sig, err := s.SignMessage(hash)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// RecoverAddress recovers the signer of a personal-message signature
// produced by SignMessage. Mirrors the contract's ecrecover path; used by
// the golden-vector tests.
func RecoverAddress(hash, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	adjusted := make([]byte, 65)
	copy(adjusted, sig)
	if adjusted[64] >= 27 {
		adjusted[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(hash), adjusted)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
