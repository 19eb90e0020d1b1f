package handler

import (
	"log/slog"
	"net/http"

	"gatekit/internal/delivery/http/response"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ResetHandler holds dependencies for the password reset workflow.
type ResetHandler struct {
	uc     usecase.ResetUsecase
	logger *slog.Logger
}

// NewResetHandler is the constructor for ResetHandler, injected by Fx.
func NewResetHandler(uc usecase.ResetUsecase, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{uc: uc, logger: logger}
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Forgot starts a password reset. The response is identical for known and
// unknown emails.
func (h *ResetHandler) Forgot(c echo.Context) error {
	var req forgotRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid forgot password input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.Forgot(c.Request().Context(), &usecase.ForgotPasswordInput{Email: req.Email}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "If the email exists, a reset link has been sent")
}

// ValidateToken checks a reset link before showing the new-password form.
func (h *ResetHandler) ValidateToken(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid reset link")
	}

	if err := h.uc.ValidateToken(c.Request().Context(), userID, c.Param("token")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Reset token is valid")
}

type redeemRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Redeem consumes the reset link, sets the new password and logs the user in.
func (h *ResetHandler) Redeem(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid reset link")
	}

	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Redeem(c.Request().Context(), &usecase.ResetPasswordInput{
		UserID:      userID,
		Token:       c.Param("token"),
		NewPassword: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginView(output), "Password reset successfully")
}
