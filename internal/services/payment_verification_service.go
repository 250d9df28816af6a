package services

import (
	"context"
	"fmt"
	"log/slog"

	"oracle-service/internal/chain"
	"oracle-service/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

// VerificationOutcome is the declarative result of checking a payment
// transaction against an application. A mismatch is a business-rule
// rejection, not an error: Verified is false and Reason says why.
type VerificationOutcome struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// PaymentVerificationService confirms that a user-submitted transaction
// actually paid the quoted premium to the product's contract vault, without
// trusting the contract alone.
type PaymentVerificationService struct {
	reader chain.TxReader
	vaults map[models.ProductType]common.Address
}

func NewPaymentVerificationService(reader chain.TxReader, flightVault, rainfallVault string) *PaymentVerificationService {
	return &PaymentVerificationService{
		reader: reader,
		vaults: map[models.ProductType]common.Address{
			models.ProductFlight:   common.HexToAddress(flightVault),
			models.ProductRainfall: common.HexToAddress(rainfallVault),
		},
	}
}

// VerifyPayment fetches the transaction by hash and checks recipient, sender
// and transferred value against the application. All three must hold. The
// value comparison uses the same base-unit scaling applied at quote time, so
// equality is exact. Returns chain.ErrTransactionNotFound when the ledger
// does not know the hash; this is a point-in-time check.
func (s *PaymentVerificationService) VerifyPayment(ctx context.Context, app *models.Application, txHash string) (*VerificationOutcome, error) {
	tx, err := s.reader.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}

	vault, ok := s.vaults[app.ProductType]
	if !ok {
		return nil, fmt.Errorf("no vault configured for product type %q", app.ProductType)
	}

	expectedWei := chain.WeiFromAmount(app.TotalPremium)
	holder := common.HexToAddress(app.HolderAddress)

	switch {
	case tx.To != vault:
		slog.Warn("Payment recipient mismatch",
			"application_id", app.ID,
			"tx_hash", txHash,
			"expected", vault.Hex(),
			"actual", tx.To.Hex())
	case tx.From != holder:
		slog.Warn("Payment sender mismatch",
			"application_id", app.ID,
			"tx_hash", txHash,
			"expected", holder.Hex(),
			"actual", tx.From.Hex())
	case tx.Value == nil || tx.Value.Cmp(expectedWei) != 0:
		slog.Warn("Payment amount mismatch",
			"application_id", app.ID,
			"tx_hash", txHash,
			"expected_wei", expectedWei.String())
	default:
		return &VerificationOutcome{Verified: true}, nil
	}

	return &VerificationOutcome{
		Verified: false,
		Reason:   fmt.Sprintf("transaction %s does not match expected payment details", txHash),
	}, nil
}
