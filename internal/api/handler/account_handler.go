package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citymove/identity-service/internal/api/metrics"
	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountRepository
	roles    ports.RoleRepository
	scorer   ports.ScoreService
}

func NewAccountHandler(accounts ports.AccountRepository, roles ports.RoleRepository, scorer ports.ScoreService) *AccountHandler {
	return &AccountHandler{accounts: accounts, roles: roles, scorer: scorer}
}

type accountDetailResponse struct {
	Success   bool             `json:"success"`
	Account   *accountResponse `json:"account"`
	Timestamp string           `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}

type scoreResponse struct {
	Success   bool   `json:"success"`
	AccountID string `json:"account_id"`
	Score     int    `json:"score"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// Get returns one account with its active roles. Admins can read any
// account; everyone else only their own.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountDetailResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	targetID := c.Param("id")
	if targetID != id.AccountID && !id.hasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	account, err := h.accounts.FindByID(c.Request().Context(), targetID)
	if err != nil {
		return err
	}

	attachments, err := h.roles.ListAttachments(c.Request().Context(), targetID)
	if err != nil {
		return err
	}
	var roles []string
	for _, att := range attachments {
		if att.Active {
			roles = append(roles, string(att.Role))
		}
	}

	return c.JSON(http.StatusOK, accountDetailResponse{
		Success:   true,
		Account:   toAccountResponse(account, roles),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID(c),
	})
}

// RecomputeScore recomputes the completion score synchronously and returns
// the fresh value. Admin or self only.
//
// @Summary      Recompute the completion score
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  scoreResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/accounts/{id}/score [post]
func (h *AccountHandler) RecomputeScore(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	targetID := c.Param("id")
	if targetID != id.AccountID && !id.hasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	score, err := h.scorer.Score(c.Request().Context(), targetID)
	if err != nil {
		return err
	}
	metrics.CompletionScore.Observe(float64(score))

	return c.JSON(http.StatusOK, scoreResponse{
		Success:   true,
		AccountID: targetID,
		Score:     score,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID(c),
	})
}
