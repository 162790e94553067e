package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/drivefinance/backend/src/config"
	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/handlers"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/security"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/tax"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":           true,
			config.Cfg.FrontendBaseURL:        true,
			"https://drivefinance.com.br":     true,
			"https://www.drivefinance.com.br": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match, x-api-key")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("DriveFinance backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Loading tax rules...", "path", config.Cfg.TaxRulesPath)
	taxRules, err := tax.LoadRuleSet(config.Cfg.TaxRulesPath)
	if err != nil {
		logger.L.Error("Failed to load tax rules", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing aggregate cache...")
	aggregateCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	ledgerService := services.NewLedgerService(aggregateCache)
	taxService := services.NewTaxService(taxRules, ledgerService)
	entitlementService := services.NewEntitlementService()
	importService := services.NewImportService(ledgerService)

	handlers.InitializeGoogleOAuthConfig()

	userHandler := handlers.NewUserHandler(authService, emailService)
	earningHandler := handlers.NewEarningHandler(ledgerService)
	expenseHandler := handlers.NewExpenseHandler(ledgerService)
	goalHandler := handlers.NewGoalHandler()
	taxHandler := handlers.NewTaxHandler(taxService)
	summaryHandler := handlers.NewSummaryHandler(ledgerService)
	importHandler := handlers.NewImportHandler(importService)
	apiKeyHandler := handlers.NewAPIKeyHandler(authService)
	externalHandler := handlers.NewExternalHandler(ledgerService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	// Auth actions - POSTs go through CSRF validation
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.HandleFunc("POST /logout", userHandler.LogoutUserHandler)
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}
	requirePremium := handlers.RequirePremium(entitlementService)
	applyPremium := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(requirePremium(handler)))
	}

	apiRouter.Handle("GET /api/user/profile", applyCsrfAndAuth(userHandler.HandleGetProfile))

	apiRouter.Handle("POST /api/earnings", applyCsrfAndAuth(earningHandler.HandleCreateEarning))
	apiRouter.Handle("GET /api/earnings", applyCsrfAndAuth(earningHandler.HandleListEarnings))
	apiRouter.Handle("DELETE /api/earnings/{id}", applyCsrfAndAuth(earningHandler.HandleDeleteEarning))

	apiRouter.Handle("POST /api/expenses", applyCsrfAndAuth(expenseHandler.HandleCreateExpense))
	apiRouter.Handle("GET /api/expenses", applyCsrfAndAuth(expenseHandler.HandleListExpenses))
	apiRouter.Handle("DELETE /api/expenses/{id}", applyCsrfAndAuth(expenseHandler.HandleDeleteExpense))

	apiRouter.Handle("POST /api/goals", applyCsrfAndAuth(goalHandler.HandleCreateGoal))
	apiRouter.Handle("GET /api/goals", applyCsrfAndAuth(goalHandler.HandleListGoals))
	apiRouter.Handle("PATCH /api/goals/{id}", applyCsrfAndAuth(goalHandler.HandleUpdateGoalProgress))
	apiRouter.Handle("DELETE /api/goals/{id}", applyCsrfAndAuth(goalHandler.HandleDeleteGoal))

	apiRouter.Handle("POST /api/import", applyCsrfAndAuth(importHandler.HandleImport))

	// Premium analytics
	apiRouter.Handle("POST /api/tax/calculate", applyPremium(taxHandler.HandleCalculateTax))
	apiRouter.Handle("GET /api/summary", applyPremium(summaryHandler.HandleGetSummary))

	// API key management is itself a premium feature
	apiRouter.Handle("POST /api/keys", applyPremium(apiKeyHandler.HandleCreateAPIKey))
	apiRouter.Handle("GET /api/keys", applyPremium(apiKeyHandler.HandleListAPIKeys))
	apiRouter.Handle("DELETE /api/keys/{id}", applyPremium(apiKeyHandler.HandleRevokeAPIKey))

	// External integration API, authenticated by API key
	applyAPIKey := func(handler http.HandlerFunc) http.Handler {
		return handlers.APIKeyMiddleware(requirePremium(handler))
	}
	apiRouter.Handle("GET /api/v1/{$}", applyAPIKey(externalHandler.HandleGetDocs))
	apiRouter.Handle("GET /api/v1/earnings", applyAPIKey(externalHandler.HandleListEarnings))
	apiRouter.Handle("POST /api/v1/earnings", applyAPIKey(externalHandler.HandleCreateEarning))
	apiRouter.Handle("GET /api/v1/expenses", applyAPIKey(externalHandler.HandleListExpenses))
	apiRouter.Handle("POST /api/v1/expenses", applyAPIKey(externalHandler.HandleCreateExpense))
	apiRouter.Handle("GET /api/v1/summary", applyAPIKey(externalHandler.HandleGetSummary))
	apiRouter.Handle("GET /api/v1/goals", applyAPIKey(externalHandler.HandleListGoals))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "DriveFinance Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
