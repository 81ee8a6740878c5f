package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-membership/internal/application/account"
	"github.com/go-membership/internal/application/notification"
	"github.com/go-membership/internal/config"
	"github.com/go-membership/internal/transport/http/handler"
	appmiddleware "github.com/go-membership/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	accountSvc := account.NewService(account.ServiceDeps{
		Cfg:    cfg,
		Repo:   deps.AccountRepo,
		Bus:    deps.Bus,
		Crypto: deps.Crypto,
	})
	notification.NewService(deps.Mailer, deps.SMSSender).Register(deps.Bus)

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	authH := handler.NewAuthHandler(accountSvc, deps.JWTProvider, deps.GoogleVerifier)
	recoveryH := handler.NewRecoveryHandler(accountSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/accounts", accountH.Register)
		r.Post("/accounts/verify", accountH.Verify)
		r.Post("/accounts/cancel", accountH.Cancel)

		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/two-factor", authH.TwoFactorCode)
		r.With(sensitiveRL.Limit).Post("/auth/two-factor/resend", authH.ResendTwoFactorCode)
		r.With(sensitiveRL.Limit).Post("/auth/google", authH.GoogleLogin)

		r.With(sensitiveRL.Limit).Post("/password-recovery/reset", recoveryH.ResetPassword)
		r.With(sensitiveRL.Limit).Post("/password-recovery/redeem", recoveryH.RedeemResetKey)
		r.With(sensitiveRL.Limit).Post("/password-recovery/secrets/reset", recoveryH.ResetFromSecrets)
		r.With(sensitiveRL.Limit).Post("/username-reminder", recoveryH.UsernameReminder)
		r.Post("/confirm-email", recoveryH.ConfirmEmailChange)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/accounts/{id}", accountH.Get)
			r.Post("/accounts/close", accountH.Close)
			r.Delete("/accounts", accountH.Delete)
			r.Post("/accounts/claims", accountH.AddClaim)
			r.Delete("/accounts/claims", accountH.RemoveClaim)

			r.Post("/auth/google/link", authH.LinkGoogle)
			r.Post("/auth/two-factor/configure", authH.ConfigureTwoFactor)

			r.Post("/password-recovery/change-password", recoveryH.ChangePassword)
			r.Post("/password-recovery/secrets", recoveryH.AddResetSecret)
			r.Delete("/password-recovery/secrets", recoveryH.RemoveResetSecret)

			r.Post("/accounts/username", recoveryH.ChangeUsername)
			r.Post("/accounts/email", recoveryH.ChangeEmailRequest)
			r.Post("/accounts/mobile", recoveryH.ChangeMobileRequest)
			r.Post("/accounts/mobile/confirm", recoveryH.ConfirmMobileChange)
			r.Delete("/accounts/mobile", recoveryH.RemoveMobile)
		})
	})

	return r
}
