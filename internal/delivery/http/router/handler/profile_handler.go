package handler

import (
	"log/slog"
	"net/http"

	"gatekit/internal/delivery/http/middleware"
	"gatekit/internal/delivery/http/response"
	"gatekit/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler holds dependencies for profile handlers.
type ProfileHandler struct {
	uc     usecase.ProfileUsecase
	logger *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(uc usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger}
}

// GetProfile returns the authenticated account's own record.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(user), "Profile retrieved successfully")
}

// Absent fields leave the profile untouched; empty strings clear them.
type updateProfileRequest struct {
	Name       *string `json:"name"`
	Gender     *string `json:"gender"`
	Location   *string `json:"location"`
	Website    *string `json:"website"`
	PictureURL *string `json:"pictureUrl"`
	Phone      *string `json:"phone"`
}

// UpdateProfile applies a partial update to the account's display information.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), &usecase.UpdateProfileInput{
		UserID:     userID,
		Name:       req.Name,
		Gender:     req.Gender,
		Location:   req.Location,
		Website:    req.Website,
		PictureURL: req.PictureURL,
		Phone:      req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(user), "Profile updated successfully")
}
