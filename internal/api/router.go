package api

import (
	"fmt"
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/rohits-web03/foodlink/docs"

	"github.com/rohits-web03/foodlink/internal/api/handlers"
	"github.com/rohits-web03/foodlink/internal/api/middleware"
	"github.com/rohits-web03/foodlink/internal/config"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rs/cors"
)

func SetupRouter() http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("/sign-up", handlers.RegisterUser)
	authMux.HandleFunc("/verify-otp", handlers.VerifyOTP)
	authMux.HandleFunc("/login", handlers.LoginUser)
	authMux.HandleFunc("/google/login", handlers.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", handlers.HandleGoogleCallback)
	authMux.HandleFunc("/forgot-password", handlers.ForgotPassword)
	authMux.HandleFunc("/reset-password", handlers.ResetPassword)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	donorOrNGO := middleware.RequireRole(models.RoleDonor, models.RoleNGO)
	protectedMux.Handle("POST /donations", donorOrNGO(http.HandlerFunc(handlers.CreateDonation)))
	protectedMux.HandleFunc("GET /donations", handlers.ListDonations)
	protectedMux.Handle("PATCH /donations/{id}/status",
		middleware.RequireRole(models.RoleNGO, models.RoleRider)(http.HandlerFunc(handlers.TransitionDonation)))

	protectedMux.Handle("POST /donations/{id}/photos/presign", donorOrNGO(http.HandlerFunc(handlers.PresignPhotoUpload)))
	protectedMux.Handle("POST /donations/{id}/photos/complete", donorOrNGO(http.HandlerFunc(handlers.CompletePhotoUpload)))
	protectedMux.HandleFunc("GET /donations/{id}/photos", handlers.ListDonationPhotos)

	protectedMux.HandleFunc("GET /profile", handlers.GetProfile)
	protectedMux.HandleFunc("PUT /profile", handlers.UpdateProfile)
	protectedMux.HandleFunc("GET /dashboard", handlers.Dashboard)

	protectedMux.HandleFunc("POST /auth/logout", handlers.Logout)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
