package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"gatekit/internal/delivery/http/middleware"
	"gatekit/internal/delivery/http/response"
	"gatekit/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TwoFactorHandler holds dependencies for second-factor enrollment and the
// login step-up endpoints.
type TwoFactorHandler struct {
	uc     usecase.TwoFactorUsecase
	logger *slog.Logger
}

// NewTwoFactorHandler is the constructor for TwoFactorHandler, injected by Fx.
func NewTwoFactorHandler(uc usecase.TwoFactorUsecase, logger *slog.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{uc: uc, logger: logger}
}

// SetupTOTP begins TOTP enrollment and returns the provisioning material.
func (h *TwoFactorHandler) SetupTOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	output, err := h.uc.SetupTOTP(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"secret":          output.Secret,
		"provisioningUri": output.ProvisioningURI,
		"qrCodePng":       base64.StdEncoding.EncodeToString(output.QRCodePNG),
	}, "TOTP enrollment started")
}

type confirmCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// ConfirmTOTP finalizes TOTP enrollment with a code from the authenticator app.
func (h *TwoFactorHandler) ConfirmTOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req confirmCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid confirmation input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.uc.ConfirmTOTP(c.Request().Context(), &usecase.ConfirmCodeInput{UserID: userID, Code: req.Code})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "TOTP second factor enabled")
}

type setupSMSRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// SetupSMS begins SMS enrollment by sending a code to the phone number.
func (h *TwoFactorHandler) SetupSMS(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req setupSMSRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid SMS setup input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.uc.SetupSMS(c.Request().Context(), &usecase.SetupSMSInput{UserID: userID, Phone: req.Phone})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Verification code sent")
}

// ConfirmSMS finalizes SMS enrollment with the received code.
func (h *TwoFactorHandler) ConfirmSMS(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req confirmCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid confirmation input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.uc.ConfirmSMS(c.Request().Context(), &usecase.ConfirmCodeInput{UserID: userID, Code: req.Code})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "SMS second factor enabled")
}

// Disable turns the second factor off.
func (h *TwoFactorHandler) Disable(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.uc.Disable(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Second factor disabled")
}

type verifyChallengeRequest struct {
	ChallengeToken string `json:"challengeToken" validate:"required"`
	Code           string `json:"code" validate:"required"`
}

// VerifyChallenge completes a pending login step-up and releases the token pair.
func (h *TwoFactorHandler) VerifyChallenge(c echo.Context) error {
	var req verifyChallengeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.VerifyChallenge(c.Request().Context(), &usecase.VerifyChallengeInput{
		ChallengeToken: req.ChallengeToken,
		Code:           req.Code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"user":         toUserView(output.User),
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
		"attemptedUrl": output.AttemptedURL,
	}, "Two-factor verification successful")
}

type resendChallengeRequest struct {
	ChallengeToken string `json:"challengeToken" validate:"required"`
}

// ResendChallenge sends a fresh SMS code for a pending step-up.
func (h *TwoFactorHandler) ResendChallenge(c echo.Context) error {
	var req resendChallengeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resend input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.ResendChallenge(c.Request().Context(), req.ChallengeToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Verification code sent")
}
