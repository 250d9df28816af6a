package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"oracle-service/internal/models"
	"oracle-service/internal/repository"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// STORE FAKES
// ============================================================================

type stubPolicyStore struct {
	policies []models.Policy
}

func (s *stubPolicyStore) Create(ctx context.Context, policy *models.Policy) error { return nil }

func (s *stubPolicyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	for i := range s.policies {
		if s.policies[i].ID == id {
			return &s.policies[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubPolicyStore) GetByOnChainID(ctx context.Context, product models.ProductType, onChainID int64) (*models.Policy, error) {
	return nil, repository.ErrNotFound
}

func (s *stubPolicyStore) List(ctx context.Context, status *models.PolicyStatus) ([]models.Policy, error) {
	return s.policies, nil
}

func (s *stubPolicyStore) MarkExpired(ctx context.Context, product models.ProductType, onChainID int64) error {
	return nil
}

func (s *stubPolicyStore) SettleClaim(ctx context.Context, policy *models.Policy, claim *models.Claim) error {
	return nil
}

type stubClaimStore struct {
	claims []models.Claim
}

func (s *stubClaimStore) List(ctx context.Context) ([]models.Claim, error) {
	return s.claims, nil
}

func (s *stubClaimStore) GetByPolicyID(ctx context.Context, policyID uuid.UUID) ([]models.Claim, error) {
	var out []models.Claim
	for _, claim := range s.claims {
		if claim.PolicyID == policyID {
			out = append(out, claim)
		}
	}
	return out, nil
}

func (s *stubClaimStore) GetByHolder(ctx context.Context, holderAddress string) ([]models.Claim, error) {
	var out []models.Claim
	for _, claim := range s.claims {
		if claim.HolderAddress == holderAddress {
			out = append(out, claim)
		}
	}
	return out, nil
}

func newPolicyTestApp(policies *stubPolicyStore, claims *stubClaimStore) *fiber.App {
	app := fiber.New()
	NewPolicyHandler(policies, claims).Register(app)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ============================================================================
// POLICY AND CLAIM READS
// ============================================================================

func TestListPolicies_ReturnsStoredPolicies(t *testing.T) {
	policies := &stubPolicyStore{policies: []models.Policy{
		{ID: uuid.New(), ProductType: models.ProductFlight, Status: models.PolicyActive},
		{ID: uuid.New(), ProductType: models.ProductRainfall, Status: models.PolicyClaimed},
	}}
	app := newPolicyTestApp(policies, &stubClaimStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/oracle/api/v1/policies/list", nil))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestGetPolicy_UnknownIDReturnsNotFound(t *testing.T) {
	app := newPolicyTestApp(&stubPolicyStore{}, &stubClaimStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/oracle/api/v1/policies/detail/"+uuid.NewString(), nil))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPolicy_MalformedIDRejected(t *testing.T) {
	app := newPolicyTestApp(&stubPolicyStore{}, &stubClaimStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/oracle/api/v1/policies/detail/not-a-uuid", nil))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetClaimsByHolder_FiltersOnAddress(t *testing.T) {
	holder := "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
	claims := &stubClaimStore{claims: []models.Claim{
		{ID: uuid.New(), HolderAddress: holder, Amount: 150},
		{ID: uuid.New(), HolderAddress: "0x1111111111111111111111111111111111111111", Amount: 80},
	}}
	app := newPolicyTestApp(&stubPolicyStore{}, claims)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/oracle/api/v1/claims/holder/"+holder, nil))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
}
