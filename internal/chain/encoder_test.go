package chain

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// KECCAK GOLDEN VECTORS
// ============================================================================

// Known keccak-256 digests pin the hash primitive itself before any of the
// message-level tests rely on it.
func TestKeccak256_KnownVectors(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(crypto.Keccak256([]byte{})),
		"keccak256 of empty input")

	assert.Equal(t,
		"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		hex.EncodeToString(crypto.Keccak256([]byte("abc"))),
		"keccak256 of \"abc\"")
}

// ============================================================================
// PACKING PRIMITIVES
// ============================================================================

func TestPackString_RawBytesNoLengthPrefix(t *testing.T) {
	assert.Equal(t, []byte("TG635"), PackString("TG635"))
	assert.Empty(t, PackString(""))
}

func TestPackUint256_LeftPaddedWord(t *testing.T) {
	packed := PackUint256(193)

	assert.Len(t, packed, 32)
	assert.Equal(t, byte(0xC1), packed[31])
	for i := 0; i < 31; i++ {
		assert.Equal(t, byte(0), packed[i], "padding byte %d should be zero", i)
	}
}

func TestPackUint256_Zero(t *testing.T) {
	assert.Equal(t, make([]byte, 32), PackUint256(0))
}

func TestPackInt256_TwosComplement(t *testing.T) {
	// -1 is all-ones in two's complement
	minusOne := PackInt256(-1)
	assert.Len(t, minusOne, 32)
	for i, b := range minusOne {
		assert.Equal(t, byte(0xFF), b, "byte %d of -1", i)
	}

	// -15 flips only the low byte away from all-ones
	minusFifteen := PackInt256(-15)
	assert.Equal(t, byte(0xF1), minusFifteen[31])
	for i := 0; i < 31; i++ {
		assert.Equal(t, byte(0xFF), minusFifteen[i])
	}

	// positive values match the unsigned encoding
	assert.Equal(t, PackUint256(137563), PackInt256(137563))
}

func TestPackAddress_TwentyRawBytes(t *testing.T) {
	addr := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	packed := PackAddress(addr)

	assert.Len(t, packed, 20)
	assert.Equal(t, addr.Bytes(), packed)
}

// ============================================================================
// FLIGHT MESSAGE LAYOUT
// ============================================================================

// Pins the exact byte layout the on-chain verifier recomputes: raw flight
// number followed by three 32-byte words. Coverage is carried in hundredths
// like the premium.
func TestFlightPolicyMessage_PackedLayout(t *testing.T) {
	msg := FlightPolicyMessage{
		FlightNumber:   "TG635",
		CoverageScaled: 10000,
		Persons:        2,
		PremiumScaled:  193,
	}

	packed := msg.Pack()

	assert.Len(t, packed, 5+3*32, "5 string bytes plus three words")
	assert.Equal(t, []byte("TG635"), packed[:5])
	assert.Equal(t, PackUint256(10000), packed[5:37])
	assert.Equal(t, PackUint256(2), packed[37:69])
	assert.Equal(t, PackUint256(193), packed[69:101])
}

func TestFlightPolicyMessage_HashIsKeccakOfPack(t *testing.T) {
	msg := FlightPolicyMessage{
		FlightNumber:   "TG635",
		CoverageScaled: 10000,
		Persons:        2,
		PremiumScaled:  193,
	}

	assert.Equal(t, crypto.Keccak256(msg.Pack()), msg.Hash())
	assert.Len(t, msg.Hash(), 32)
}

func TestFlightPolicyMessage_Deterministic(t *testing.T) {
	msg := FlightPolicyMessage{FlightNumber: "SQ712", CoverageScaled: 25000, Persons: 4, PremiumScaled: 5120}

	assert.Equal(t, msg.Hash(), msg.Hash(), "same tuple must always hash identically")
}

func TestFlightPolicyMessage_FieldOrderMatters(t *testing.T) {
	base := FlightPolicyMessage{FlightNumber: "TG635", CoverageScaled: 200, Persons: 100, PremiumScaled: 193}
	swapped := FlightPolicyMessage{FlightNumber: "TG635", CoverageScaled: 100, Persons: 200, PremiumScaled: 193}

	assert.False(t, bytes.Equal(base.Hash(), swapped.Hash()),
		"swapping coverage and persons must change the digest")
}

func TestFlightPolicyMessage_EveryFieldChangesDigest(t *testing.T) {
	base := FlightPolicyMessage{FlightNumber: "TG635", CoverageScaled: 10000, Persons: 2, PremiumScaled: 193}

	variants := []FlightPolicyMessage{
		{FlightNumber: "TG636", CoverageScaled: 10000, Persons: 2, PremiumScaled: 193},
		{FlightNumber: "TG635", CoverageScaled: 10001, Persons: 2, PremiumScaled: 193},
		{FlightNumber: "TG635", CoverageScaled: 10000, Persons: 3, PremiumScaled: 193},
		{FlightNumber: "TG635", CoverageScaled: 10000, Persons: 2, PremiumScaled: 194},
	}

	for i, v := range variants {
		assert.False(t, bytes.Equal(base.Hash(), v.Hash()), "variant %d should differ", i)
	}
}

// ============================================================================
// RAINFALL MESSAGE LAYOUT
// ============================================================================

func TestRainfallPolicyMessage_PackedLayout(t *testing.T) {
	holder := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	msg := RainfallPolicyMessage{
		Holder:         holder,
		LatScaled:      137563,
		LonScaled:      1005018,
		PeriodStart:    1717200000,
		PeriodEnd:      1725148800,
		ThresholdMM:    50000,
		ConditionBelow: true,
		PremiumScaled:  8250,
		PayoutScaled:   100000,
	}

	packed := msg.Pack()

	assert.Len(t, packed, 20+8*32, "address plus eight words")
	assert.Equal(t, holder.Bytes(), packed[:20])
	assert.Equal(t, PackInt256(137563), packed[20:52])
	assert.Equal(t, PackInt256(1005018), packed[52:84])
	assert.Equal(t, PackUint256(1717200000), packed[84:116])
	assert.Equal(t, PackUint256(1725148800), packed[116:148])
	assert.Equal(t, PackUint256(50000), packed[148:180])
	assert.Equal(t, PackBool(true), packed[180:212])
	assert.Equal(t, PackUint256(8250), packed[212:244])
	assert.Equal(t, PackUint256(100000), packed[244:276])
}

func TestRainfallPolicyMessage_ConditionChangesDigest(t *testing.T) {
	below := RainfallPolicyMessage{
		Holder:         common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"),
		LatScaled:      137563,
		LonScaled:      1005018,
		PeriodStart:    1717200000,
		PeriodEnd:      1725148800,
		ThresholdMM:    50000,
		ConditionBelow: true,
		PremiumScaled:  8250,
		PayoutScaled:   100000,
	}
	above := below
	above.ConditionBelow = false

	assert.False(t, bytes.Equal(below.Hash(), above.Hash()),
		"below-threshold and above-threshold coverage must hash differently")
	assert.Equal(t, PackUint256(1), PackBool(true))
	assert.Equal(t, PackUint256(0), PackBool(false))
}

func TestRainfallPolicyMessage_NegativeCoordinates(t *testing.T) {
	msg := RainfallPolicyMessage{
		Holder:    common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"),
		LatScaled: -337865, // southern hemisphere
		LonScaled: 1512093,
	}

	packed := msg.Pack()

	assert.Equal(t, byte(0xFF), packed[20], "negative latitude encodes with sign extension")
	assert.Equal(t, crypto.Keccak256(packed), msg.Hash())
}

// ============================================================================
// SCALING
// ============================================================================

func TestScalePremium(t *testing.T) {
	assert.Equal(t, uint64(193), ScalePremium(1.93))
	assert.Equal(t, uint64(1234), ScalePremium(12.34))
	assert.Equal(t, uint64(0), ScalePremium(0))

	// fractional amounts are preserved, not truncated
	assert.Equal(t, uint64(10090), ScalePremium(100.9))
	assert.NotEqual(t, ScalePremium(100.0), ScalePremium(100.9))
}

func TestScaleCoordinate_RoundTrip(t *testing.T) {
	assert.Equal(t, int64(137563), ScaleCoordinate(13.7563))
	assert.Equal(t, int64(-337865), ScaleCoordinate(-33.7865))

	assert.Equal(t, 13.7563, UnscaleCoordinate(ScaleCoordinate(13.7563)))
	assert.Equal(t, -33.7865, UnscaleCoordinate(ScaleCoordinate(-33.7865)))
}

func TestScaleRainfall(t *testing.T) {
	assert.Equal(t, int64(50000), ScaleRainfall(500))
	assert.Equal(t, int64(12345), ScaleRainfall(123.45))
}

func TestWeiConversion(t *testing.T) {
	assert.Equal(t, big.NewInt(1_500_000_000_000_000_000), WeiFromAmount(1.5))
	assert.Equal(t, int64(0), WeiFromAmount(0).Int64())

	assert.Equal(t, 2.5, AmountFromWei(WeiFromAmount(2.5)))
	assert.Equal(t, 0.0, AmountFromWei(nil))
}
