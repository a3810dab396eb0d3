package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citymove/identity-service/internal/api/metrics"
	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type bulkActionRequest struct {
	Action    string   `json:"action"     validate:"required"`
	TargetIDs []string `json:"target_ids" validate:"required"`
	Role      string   `json:"role,omitempty"`
}

type bulkActionResponse struct {
	Success   bool                 `json:"success"`
	Results   []ports.TargetResult `json:"results"`
	Timestamp string               `json:"timestamp"`
	RequestID string               `json:"request_id,omitempty"`
}

// BulkAction runs one administrative action over a set of target accounts.
// Preconditions fail the whole call; past them, each target succeeds or
// fails independently.
//
// @Summary      Run a bulk account action
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkActionRequest  true  "Action, targets, and optional role"
// @Success      200   {object}  bulkActionResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/admin/accounts/bulk [post]
func (h *AdminHandler) BulkAction(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req bulkActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	action := ports.AdminAction(req.Action)
	// Unknown actions collapse to one label value to keep cardinality bounded.
	actionLabel := req.Action
	if !action.Valid() {
		actionLabel = "unknown"
	}

	results, err := h.admin.BulkAction(c.Request().Context(), ports.BulkActionInput{
		ActorID:   id.AccountID,
		Action:    action,
		TargetIDs: req.TargetIDs,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		metrics.BulkActionsTotal.WithLabelValues(actionLabel, "rejected").Inc()
		return err
	}
	metrics.BulkActionsTotal.WithLabelValues(actionLabel, "completed").Inc()

	return c.JSON(http.StatusOK, bulkActionResponse{
		Success:   true,
		Results:   results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID(c),
	})
}
