package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"oracle-service/internal/models"
	"oracle-service/internal/repository"
	"oracle-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// PolicyHandler serves the read-only policy and claim endpoints. It reads
// through the store interfaces so tests can serve fixture data.
type PolicyHandler struct {
	policies services.PolicyStore
	claims   services.ClaimStore
}

func NewPolicyHandler(policies services.PolicyStore, claims services.ClaimStore) *PolicyHandler {
	return &PolicyHandler{
		policies: policies,
		claims:   claims,
	}
}

func (h *PolicyHandler) Register(app *fiber.App) {
	policies := app.Group("oracle/api/v1/policies")
	policies.Get("/list", h.ListPolicies)
	policies.Get("/detail/:id", h.GetPolicy)
	policies.Get("/:id/claims", h.GetPolicyClaims)

	claims := app.Group("oracle/api/v1/claims")
	claims.Get("/list", h.ListClaims)
	claims.Get("/holder/:address", h.GetClaimsByHolder)
}

func (h *PolicyHandler) ListPolicies(c fiber.Ctx) error {
	var status *models.PolicyStatus
	if raw := c.Query("status"); raw != "" {
		s := models.PolicyStatus(raw)
		status = &s
	}

	policies, err := h.policies.List(c.Context(), status)
	if err != nil {
		slog.Error("Failed to list policies", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve policies"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
	}))
}

func (h *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid policy ID format"))
	}

	policy, err := h.policies.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				models.CreateErrorResponse("NOT_FOUND", "Policy not found"))
		}
		slog.Error("Failed to get policy", "policy_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve policy"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) GetPolicyClaims(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid policy ID format"))
	}

	claims, err := h.claims.GetByPolicyID(c.Context(), id)
	if err != nil {
		slog.Error("Failed to get policy claims", "policy_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve claims"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	}))
}

func (h *PolicyHandler) ListClaims(c fiber.Ctx) error {
	claims, err := h.claims.List(c.Context())
	if err != nil {
		slog.Error("Failed to list claims", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve claims"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	}))
}

func (h *PolicyHandler) GetClaimsByHolder(c fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ADDRESS", "Holder address is required"))
	}

	claims, err := h.claims.GetByHolder(c.Context(), address)
	if err != nil {
		slog.Error("Failed to get holder claims", "holder_address", address, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve claims"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	}))
}
