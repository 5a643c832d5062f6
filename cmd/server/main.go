package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruthwik162/appointment-server/internal/config"
	"github.com/ruthwik162/appointment-server/internal/handler"
	"github.com/ruthwik162/appointment-server/internal/mailer"
	"github.com/ruthwik162/appointment-server/internal/middleware"
	"github.com/ruthwik162/appointment-server/internal/repository"
	"github.com/ruthwik162/appointment-server/internal/service"
	"github.com/ruthwik162/appointment-server/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- External Collaborators ---
	// Built once here and handed to the services explicitly.
	var imageStore storage.ImageStore
	if cfg.IsS3Configured() {
		imageStore, err = storage.NewS3Store(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	}
	var mailSender mailer.Sender
	if cfg.IsEmailConfigured() {
		mailSender = mailer.NewSMTPMailer(cfg.Email)
	}

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	appointmentRepo := repository.NewAppointmentRepository(dbPool)

	// --- Initialize Services ---
	userService := service.NewUserService(userRepo, imageStore, mailSender)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo)

	// --- Initialize Handlers ---
	userHandler := handler.NewUserHandler(userService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)

	// --- Setup Gin Router ---
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.CORS))

	apiGroup := router.Group("/api")
	userHandler.RegisterUserRoutes(apiGroup)
	appointmentHandler.RegisterAppointmentRoutes(apiGroup)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
