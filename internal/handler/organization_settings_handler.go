package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type organizationSettingsService interface {
	Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error)
	Update(ctx context.Context, organizationID string, req dto.UpdateOrganizationSettingsRequest) (*models.OrganizationSettings, error)
}

// OrganizationSettingsHandler exposes per-organization scheduling toggles.
type OrganizationSettingsHandler struct {
	service organizationSettingsService
}

// NewOrganizationSettingsHandler constructs the handler.
func NewOrganizationSettingsHandler(svc organizationSettingsService) *OrganizationSettingsHandler {
	return &OrganizationSettingsHandler{service: svc}
}

// Get godoc
// @Summary Get organization settings
// @Tags Settings
// @Produce json
// @Param orgId path string true "Organization ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/settings [get]
func (h *OrganizationSettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context(), c.Param("orgId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update organization settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param payload body dto.UpdateOrganizationSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/settings [put]
func (h *OrganizationSettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateOrganizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), c.Param("orgId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
