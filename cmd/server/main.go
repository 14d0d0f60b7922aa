package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payroll-backend/internal/app"
	"payroll-backend/internal/config"
	"payroll-backend/internal/db"
	"payroll-backend/internal/handlers"
	"payroll-backend/internal/router"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.yaml)")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := config.LoadConfig(*configPath); err != nil {
		logrus.WithField("error", err.Error()).Fatal("Failed to load configuration")
	}

	db.InitDB()

	container, err := app.InitializeContainer()
	if err != nil {
		logrus.WithField("error", err.Error()).Fatal("Failed to initialize services")
	}
	defer container.Cleanup()

	proofHandler := handlers.NewProofHandler(container.ProofService)
	payrollHandler := handlers.NewPayrollHandler(
		container.SettlementService,
		container.ContractService.EscrowAddress().Hex(),
	)

	r := router.SetupRouter(proofHandler, payrollHandler)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Server.Host, config.AppConfig.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logrus.WithField("addr", addr).Info("🚀 Payroll backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("error", err.Error()).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithField("error", err.Error()).Error("Forced shutdown")
	}
	logrus.Info("Server exited")
}
