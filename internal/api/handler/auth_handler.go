package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citymove/identity-service/internal/api/metrics"
	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

type AuthHandler struct {
	registrar ports.RegistrationService
	auth      ports.AuthService
}

func NewAuthHandler(registrar ports.RegistrationService, auth ports.AuthService) *AuthHandler {
	return &AuthHandler{registrar: registrar, auth: auth}
}

// Register creates an account with a role, or adds a role to an existing
// account when the credentials match.
//
// @Summary      Register an account or add a role to an existing one
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role := domain.Role(req.Role)
	// Unknown roles collapse to one label value to keep cardinality bounded.
	roleLabel := req.Role
	if !role.Valid() {
		roleLabel = "unknown"
	}

	res, err := h.registrar.Register(c.Request().Context(), ports.RegisterInput{
		Origin:   c.RealIP(),
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     role,
		Data:     req.toRoleData(role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.RateLimitDenialsTotal.Inc()
		}
		metrics.RegistrationsTotal.WithLabelValues(roleLabel, "error").Inc()
		return err
	}

	outcome := "role_added"
	status := http.StatusOK
	if res.Created {
		outcome = "created"
		status = http.StatusCreated
	}
	metrics.RegistrationsTotal.WithLabelValues(string(res.Role), outcome).Inc()

	return c.JSON(status, registerResponse{
		Success:         true,
		Message:         res.Message,
		PendingApproval: res.PendingApproval,
		Account:         toAccountResponse(res.Account, []string{string(res.Role)}),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		RequestID:       requestID(c),
	})
}

// Login authenticates an account and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		Account:   toAccountResponse(account, nil),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID(c),
	})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
