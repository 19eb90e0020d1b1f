// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"gatekit/internal/delivery/http/middleware"
	"gatekit/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler   *handler.AccountHandler
	OAuthHandler     *handler.OAuthHandler
	ResetHandler     *handler.ResetHandler
	TwoFactorHandler *handler.TwoFactorHandler
	ProfileHandler   *handler.ProfileHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler   *handler.AccountHandler
	oauthHandler     *handler.OAuthHandler
	resetHandler     *handler.ResetHandler
	twoFactorHandler *handler.TwoFactorHandler
	profileHandler   *handler.ProfileHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:   params.AccountHandler,
		oauthHandler:     params.OAuthHandler,
		resetHandler:     params.ResetHandler,
		twoFactorHandler: params.TwoFactorHandler,
		profileHandler:   params.ProfileHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.accountHandler.Register)
		authGroup.POST("/login", r.accountHandler.Login)
		authGroup.POST("/logout", r.accountHandler.Logout)
		authGroup.POST("/refresh", r.accountHandler.Refresh)

		authGroup.POST("/forgot", r.resetHandler.Forgot)
		authGroup.GET("/reset/:id/:token", r.resetHandler.ValidateToken)
		authGroup.POST("/reset/:id/:token", r.resetHandler.Redeem)

		// Step-up completion authenticates with the challenge token itself
		authGroup.POST("/verify", r.twoFactorHandler.VerifyChallenge)
		authGroup.POST("/verify/resend", r.twoFactorHandler.ResendChallenge)
	}

	// Federated identity provider handshakes
	oauthGroup := e.Group("/oauth")
	{
		oauthGroup.GET("/:provider/login", r.oauthHandler.Begin)
		oauthGroup.GET("/:provider/callback", r.oauthHandler.Callback)
	}

	// Account routes require a fully verified login
	accountGroup := e.Group("/account")
	accountGroup.Use(r.authMiddleware.Authenticate)
	accountGroup.Use(r.authMiddleware.RequireSecondFactor)
	{
		accountGroup.GET("/profile", r.profileHandler.GetProfile)
		accountGroup.PUT("/profile", r.profileHandler.UpdateProfile)
		accountGroup.PUT("/password", r.accountHandler.ChangePassword)
		accountGroup.DELETE("", r.accountHandler.DeleteAccount)

		accountGroup.GET("/identities", r.oauthHandler.ListIdentities)
		accountGroup.POST("/link/:provider", r.oauthHandler.Link)
		accountGroup.DELETE("/unlink/:provider", r.oauthHandler.Unlink)

		accountGroup.POST("/twofactor/totp", r.twoFactorHandler.SetupTOTP)
		accountGroup.POST("/twofactor/totp/confirm", r.twoFactorHandler.ConfirmTOTP)
		accountGroup.POST("/twofactor/sms", r.twoFactorHandler.SetupSMS)
		accountGroup.POST("/twofactor/sms/confirm", r.twoFactorHandler.ConfirmSMS)
		accountGroup.DELETE("/twofactor", r.twoFactorHandler.Disable)
	}
}
