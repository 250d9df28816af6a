package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Fixed-point scales shared with the contracts. The ledger has no decimal
// type, so every fractional quantity crosses the boundary as a scaled
// integer with one of these factors.
const (
	// PremiumScale converts platform-currency amounts to hundredths.
	PremiumScale = 100
	// CoordScale converts degrees to ten-thousandths.
	CoordScale = 10_000
	// RainScale converts millimetres to hundredths.
	RainScale = 100
)

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ScalePremium converts a premium to its canonical-message integer form,
// rounding to the nearest hundredth.
func ScalePremium(premium float64) uint64 {
	return uint64(decimal.NewFromFloat(premium).Mul(decimal.NewFromInt(PremiumScale)).Round(0).IntPart())
}

// ScaleCoordinate converts degrees to fixed-point ten-thousandths.
func ScaleCoordinate(deg float64) int64 {
	return decimal.NewFromFloat(deg).Mul(decimal.NewFromInt(CoordScale)).Round(0).IntPart()
}

// UnscaleCoordinate is the inverse of ScaleCoordinate, applied when policy
// coordinates are read back off the ledger.
func UnscaleCoordinate(scaled int64) float64 {
	f, _ := decimal.NewFromInt(scaled).Div(decimal.NewFromInt(CoordScale)).Float64()
	return f
}

// ScaleRainfall converts millimetres to fixed-point hundredths.
func ScaleRainfall(mm float64) int64 {
	return decimal.NewFromFloat(mm).Mul(decimal.NewFromInt(RainScale)).Round(0).IntPart()
}

// WeiFromAmount converts a platform-currency amount to the ledger's base
// unit. The same conversion runs at quote time and at payment verification,
// so a quoted premium and the transferred value compare exactly.
func WeiFromAmount(amount float64) *big.Int {
	d := decimal.NewFromFloat(amount).Mul(decimal.NewFromBigInt(weiPerToken, 0))
	return d.Round(0).BigInt()
}

// AmountFromWei converts a ledger base-unit value back to platform currency.
func AmountFromWei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(wei, 0).Div(decimal.NewFromBigInt(weiPerToken, 0)).Float64()
	return f
}
