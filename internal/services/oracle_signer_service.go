package services

import (
	"fmt"

	"oracle-service/internal/chain"
	"oracle-service/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OracleSignerService turns an approved application into the signed
// authorization the on-chain createPolicy call verifies. Only approved,
// unpaid applications are signable: the premium is immutable after approval,
// so the signature binds exactly the quoted terms.
type OracleSignerService struct {
	signer *chain.Signer
}

func NewOracleSignerService(signer *chain.Signer) *OracleSignerService {
	return &OracleSignerService{signer: signer}
}

func (s *OracleSignerService) SignerAddress() string {
	return s.signer.Address().Hex()
}

// AuthorizePremium builds the product's canonical message from the
// application and signs it.
func (s *OracleSignerService) AuthorizePremium(app *models.Application) (*models.AuthorizationResponse, error) {
	if app.Status != models.ApplicationApproved {
		return nil, fmt.Errorf("application %s is not approved (status %s)", app.ID, app.Status)
	}

	hash, err := buildAuthorizationHash(app)
	if err != nil {
		return nil, err
	}

	signature, err := s.signer.SignMessageHex(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize premium for application %s: %w", app.ID, err)
	}

	return &models.AuthorizationResponse{
		ApplicationID: app.ID.String(),
		MessageHash:   hexutil.Encode(hash),
		Signature:     signature,
		SignerAddress: s.signer.Address().Hex(),
	}, nil
}

func buildAuthorizationHash(app *models.Application) ([]byte, error) {
	switch app.ProductType {
	case models.ProductFlight:
		if app.FlightNumber == nil || app.CoveragePerPerson == nil || app.Persons == nil {
			return nil, fmt.Errorf("application %s is missing flight coverage fields", app.ID)
		}
		msg := chain.FlightPolicyMessage{
			FlightNumber:   *app.FlightNumber,
			CoverageScaled: chain.ScalePremium(*app.CoveragePerPerson),
			Persons:        uint64(*app.Persons),
			PremiumScaled:  chain.ScalePremium(app.TotalPremium),
		}
		return msg.Hash(), nil

	case models.ProductRainfall:
		if app.Latitude == nil || app.Longitude == nil || app.PeriodStart == nil ||
			app.PeriodEnd == nil || app.ThresholdMM == nil || app.Condition == nil || app.Coverage == nil {
			return nil, fmt.Errorf("application %s is missing rainfall coverage fields", app.ID)
		}
		msg := chain.RainfallPolicyMessage{
			Holder:         common.HexToAddress(app.HolderAddress),
			LatScaled:      chain.ScaleCoordinate(*app.Latitude),
			LonScaled:      chain.ScaleCoordinate(*app.Longitude),
			PeriodStart:    uint64(app.PeriodStart.UTC().Unix()),
			PeriodEnd:      uint64(app.PeriodEnd.UTC().Unix()),
			ThresholdMM:    uint64(chain.ScaleRainfall(*app.ThresholdMM)),
			ConditionBelow: *app.Condition == models.RainfallBelow,
			PremiumScaled:  chain.ScalePremium(app.TotalPremium),
			PayoutScaled:   chain.ScalePremium(*app.Coverage),
		}
		return msg.Hash(), nil

	default:
		return nil, fmt.Errorf("unknown product type %q", app.ProductType)
	}
}
