package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/config"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/handler"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/integrations/cbr"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/middleware"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/repository"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/scheduler"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/service"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	rates := cbr.NewClient(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer, rates)
	h := handler.NewHandler(svc, logger)

	// Start the daily delinquency job
	sched, err := scheduler.New(svc, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/credits", h.GrantCredit).Methods("POST")
	authRouter.HandleFunc("/credits", h.ListCredits).Methods("GET")
	authRouter.HandleFunc("/credits/{id}/balance", h.GetCreditBalance).Methods("GET")
	authRouter.HandleFunc("/credits/{id}/schedule", h.GetSchedule).Methods("GET")
	authRouter.HandleFunc("/credits/{id}/certificate", h.GetCertificate).Methods("GET")
	authRouter.HandleFunc("/payments/pending", h.ListPendingPayments).Methods("GET")
	authRouter.HandleFunc("/payments/{id}/pay", h.PayInstallment).Methods("POST")
	authRouter.HandleFunc("/analytics/credit-burden", h.GetCreditBurden).Methods("GET")
	authRouter.HandleFunc("/rates/suggested", h.GetSuggestedRate).Methods("GET")
	// Staff routes
	staffRouter := authRouter.PathPrefix("/delinquency").Subrouter()
	staffRouter.Use(middleware.RequireRole(string(models.RoleAssistant), string(models.RoleManager)))
	staffRouter.HandleFunc("", h.ListDelinquentCredits).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
