package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"oracle-service/internal/chain"
	"oracle-service/internal/models"
	"oracle-service/internal/repository"
	"oracle-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	signerService      *services.OracleSignerService
}

func NewApplicationHandler(applicationService *services.ApplicationService, signerService *services.OracleSignerService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		signerService:      signerService,
	}
}

func (h *ApplicationHandler) Register(app *fiber.App) {
	group := app.Group("oracle/api/v1/applications")

	group.Post("/flight", h.SubmitFlightApplication)
	group.Post("/rainfall", h.SubmitRainfallApplication)
	group.Get("/list", h.ListApplications)
	group.Get("/detail/:id", h.GetApplication)
	group.Post("/:id/approve", h.ApproveApplication)
	group.Post("/:id/reject", h.RejectApplication)
	group.Post("/:id/authorize", h.AuthorizeApplication)
	group.Post("/:id/confirm-payment", h.ConfirmPayment)
}

// SubmitFlightApplication quotes and stores a flight-delay application
func (h *ApplicationHandler) SubmitFlightApplication(c fiber.Ctx) error {
	var req models.FlightApplicationRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	application, err := h.applicationService.SubmitFlightApplication(c.Context(), req)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("QUOTE_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(models.CreateSuccessResponse(application))
}

// SubmitRainfallApplication quotes and stores a rainfall application.
// Data-insufficiency outcomes are structured rejections, not server errors.
func (h *ApplicationHandler) SubmitRainfallApplication(c fiber.Ctx) error {
	var req models.RainfallApplicationRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	application, err := h.applicationService.SubmitRainfallApplication(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientClimateData):
			return c.Status(http.StatusUnprocessableEntity).JSON(
				models.CreateErrorResponse("INSUFFICIENT_DATA", err.Error()))
		case errors.Is(err, services.ErrNoHistoricalPrecedent):
			return c.Status(http.StatusUnprocessableEntity).JSON(
				models.CreateErrorResponse("NO_PRECEDENT", err.Error()))
		default:
			return c.Status(http.StatusBadRequest).JSON(
				models.CreateErrorResponse("QUOTE_FAILED", err.Error()))
		}
	}

	return c.Status(http.StatusCreated).JSON(models.CreateSuccessResponse(application))
}

func (h *ApplicationHandler) ListApplications(c fiber.Ctx) error {
	var status *models.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ApplicationStatus(raw)
		status = &s
	}

	applications, err := h.applicationService.ListApplications(c.Context(), status)
	if err != nil {
		slog.Error("Failed to list applications", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve applications"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(map[string]interface{}{
		"applications": applications,
		"count":        len(applications),
	}))
}

func (h *ApplicationHandler) GetApplication(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid application ID format"))
	}

	application, err := h.applicationService.GetApplication(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				models.CreateErrorResponse("NOT_FOUND", "Application not found"))
		}
		slog.Error("Failed to get application", "application_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve application"))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(application))
}

func (h *ApplicationHandler) ApproveApplication(c fiber.Ctx) error {
	return h.transition(c, h.applicationService.Approve)
}

func (h *ApplicationHandler) RejectApplication(c fiber.Ctx) error {
	return h.transition(c, h.applicationService.Reject)
}

func (h *ApplicationHandler) transition(c fiber.Ctx, fn func(ctx context.Context, id uuid.UUID) (*models.Application, error)) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid application ID format"))
	}

	application, err := fn(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				models.CreateErrorResponse("NOT_FOUND", "Application not found"))
		}
		return c.Status(http.StatusConflict).JSON(
			models.CreateErrorResponse("INVALID_TRANSITION", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(application))
}

// AuthorizeApplication returns the oracle signature the holder forwards to
// the contract's createPolicy call.
func (h *ApplicationHandler) AuthorizeApplication(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid application ID format"))
	}

	application, err := h.applicationService.GetApplication(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				models.CreateErrorResponse("NOT_FOUND", "Application not found"))
		}
		slog.Error("Failed to get application", "application_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			models.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve application"))
	}

	authorization, err := h.signerService.AuthorizePremium(application)
	if err != nil {
		return c.Status(http.StatusConflict).JSON(
			models.CreateErrorResponse("AUTHORIZATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(authorization))
}

// ConfirmPayment verifies the submitted payment transaction against the
// application and marks it paid when everything matches.
func (h *ApplicationHandler) ConfirmPayment(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_ID", "Invalid application ID format"))
	}

	var req models.ConfirmPaymentRequest
	if err := c.Bind().Body(&req); err != nil || req.TxHash == "" {
		return c.Status(http.StatusBadRequest).JSON(
			models.CreateErrorResponse("INVALID_BODY", "tx_hash is required"))
	}

	outcome, err := h.applicationService.ConfirmPayment(c.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(http.StatusNotFound).JSON(
				models.CreateErrorResponse("NOT_FOUND", "Application not found"))
		case errors.Is(err, chain.ErrTransactionNotFound):
			return c.Status(http.StatusUnprocessableEntity).JSON(
				models.CreateErrorResponse("TX_NOT_FOUND", "Transaction not found on ledger"))
		default:
			slog.Error("Payment confirmation failed", "application_id", id, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(
				models.CreateErrorResponse("CONFIRMATION_FAILED", err.Error()))
		}
	}

	if !outcome.Verified {
		return c.Status(http.StatusUnprocessableEntity).JSON(
			models.CreateErrorResponse("PAYMENT_MISMATCH", outcome.Reason))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(outcome))
}
