package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonical message encoding shared with the on-chain verifier.
//
// The verifying contract recomputes keccak256(abi.encodePacked(...)) over the
// exact same tuple, so field order and types here are a wire format, not an
// implementation detail. Each message schema is an explicit struct; changing
// a schema requires bumping its contract counterpart in lockstep. The
// encoder_test golden vectors pin the byte layout.

// PackString encodes a string as its raw UTF-8 bytes (encodePacked semantics,
// no length prefix).
func PackString(s string) []byte {
	return []byte(s)
}

// PackUint256 encodes an unsigned value as a 32-byte big-endian word.
func PackUint256(v uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32)
}

// PackInt256 encodes a signed value as a 32-byte two's-complement word.
func PackInt256(v int64) []byte {
	return math.U256Bytes(big.NewInt(v))
}

// PackAddress encodes an address as its 20 raw bytes.
func PackAddress(a common.Address) []byte {
	return a.Bytes()
}

// PackBool encodes a bool as a 32-byte word holding 0 or 1.
func PackBool(b bool) []byte {
	if b {
		return PackUint256(1)
	}
	return PackUint256(0)
}

// FlightPolicyMessage is the authorization tuple for flight-delay coverage.
// Monetary fields carry the premium scale (hundredths, see PremiumScale);
// fractional coverage amounts survive the encoding intact.
type FlightPolicyMessage struct {
	FlightNumber   string
	CoverageScaled uint64
	Persons        uint64
	PremiumScaled  uint64
}

func (m FlightPolicyMessage) Pack() []byte {
	var packed []byte
	packed = append(packed, PackString(m.FlightNumber)...)
	packed = append(packed, PackUint256(m.CoverageScaled)...)
	packed = append(packed, PackUint256(m.Persons)...)
	packed = append(packed, PackUint256(m.PremiumScaled)...)
	return packed
}

// Hash returns the keccak-256 digest of the packed tuple.
func (m FlightPolicyMessage) Hash() []byte {
	return crypto.Keccak256(m.Pack())
}

// RainfallPolicyMessage is the authorization tuple for rainfall coverage.
// Coordinates are fixed-point degrees (CoordScale); the reconciliation layer
// applies the identical scale when reading them back off the ledger.
// ConditionBelow is part of the tuple: a below-threshold and an above-threshold
// policy over the same season are different risks and must hash differently.
type RainfallPolicyMessage struct {
	Holder         common.Address
	LatScaled      int64
	LonScaled      int64
	PeriodStart    uint64
	PeriodEnd      uint64
	ThresholdMM    uint64
	ConditionBelow bool
	PremiumScaled  uint64
	PayoutScaled   uint64
}

func (m RainfallPolicyMessage) Pack() []byte {
	var packed []byte
	packed = append(packed, PackAddress(m.Holder)...)
	packed = append(packed, PackInt256(m.LatScaled)...)
	packed = append(packed, PackInt256(m.LonScaled)...)
	packed = append(packed, PackUint256(m.PeriodStart)...)
	packed = append(packed, PackUint256(m.PeriodEnd)...)
	packed = append(packed, PackUint256(m.ThresholdMM)...)
	packed = append(packed, PackBool(m.ConditionBelow)...)
	packed = append(packed, PackUint256(m.PremiumScaled)...)
	packed = append(packed, PackUint256(m.PayoutScaled)...)
	return packed
}

func (m RainfallPolicyMessage) Hash() []byte {
	return crypto.Keccak256(m.Pack())
}
