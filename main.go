package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"equiptrack/internal/config"
	"equiptrack/internal/database"
	"equiptrack/internal/handlers"
	"equiptrack/internal/logger"
	"equiptrack/internal/repository"
	"equiptrack/internal/scheduler"
	"equiptrack/internal/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// corsMiddleware sets permissive CORS headers and answers preflights.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	// Load environment variables from .env file; missing file is fine.
	_ = godotenv.Load()

	log := logger.New()
	defer log.Sync()

	cfg := config.Load()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database connected and migrated", zap.String("driver", cfg.DBType))

	equipmentRepo := repository.NewEquipmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	var mailer services.Mailer
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		log.Info("email credentials not configured, using development mailer")
		mailer = services.NewDevMailer(log)
	} else {
		mailer = services.NewEmailService(cfg)
	}

	authService := services.NewAuthService(userRepo, mailer, cfg, log)
	equipmentService := services.NewEquipmentService(equipmentRepo, cfg.PublicBaseURL, log)
	adminService := services.NewAdminService(equipmentRepo, userRepo, cfg.PublicBaseURL, log)

	authHandler := handlers.NewAuthHandler(authService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService, equipmentService, cfg.PublicBaseURL)
	adminHandler := handlers.NewAdminHandler(authService, adminService)
	protect := handlers.NewAuthMiddleware(authService)

	r := mux.NewRouter()

	// Auth endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.Handle("/api/auth/me", protect.Protect(authHandler.Me)).Methods("GET")

	// Equipment endpoints. Static and collection routes are registered
	// BEFORE parameterized routes to avoid conflicts.
	r.HandleFunc("/api/equipment/scan/{id}", equipmentHandler.Scan).Methods("GET") // public
	r.Handle("/api/equipment/stats/dashboard", protect.Protect(equipmentHandler.Dashboard)).Methods("GET")
	r.Handle("/api/equipment", protect.Protect(equipmentHandler.List)).Methods("GET")
	r.Handle("/api/equipment", protect.Protect(equipmentHandler.Create)).Methods("POST")
	r.Handle("/api/equipment/{id}", protect.Protect(equipmentHandler.Get)).Methods("GET")
	r.Handle("/api/equipment/{id}", protect.Protect(equipmentHandler.Update)).Methods("PUT")
	r.Handle("/api/equipment/{id}", protect.Protect(equipmentHandler.Delete)).Methods("DELETE")
	r.Handle("/api/equipment/{id}/service", protect.Protect(equipmentHandler.AddService)).Methods("POST")

	// Admin endpoints
	r.HandleFunc("/api/admin/login", adminHandler.Login).Methods("POST")
	r.Handle("/api/admin/analytics", protect.ProtectAdmin(adminHandler.Analytics)).Methods("GET")
	r.Handle("/api/admin/users", protect.ProtectAdmin(adminHandler.Users)).Methods("GET")
	r.Handle("/api/admin/regenerate-qr", protect.ProtectAdmin(adminHandler.RegenerateQRCodes)).Methods("POST")

	// Legacy printed QR labels that point at the API host
	r.HandleFunc("/equipment/scan/{id}", equipmentHandler.ScanRedirect).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","message":"Equipment Tracker API is running"}`))
	}).Methods("GET")

	handler := corsMiddleware(r)

	// Reminder sweep: once at startup, then daily at the configured hour.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(equipmentRepo, mailer, time.Now, cfg.ReminderHour, cfg.DispatchTimeout, log)
	go sched.Start(ctx)

	log.Info("equipment tracker backend started",
		zap.String("port", cfg.Port),
		zap.String("public_base_url", cfg.PublicBaseURL))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}
