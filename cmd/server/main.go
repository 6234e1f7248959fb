package main

import (
	"database/sql"
	"net/http"

	"shopflow-be/internal/config"
	"shopflow-be/internal/db"
	"shopflow-be/internal/httpapi"
	"shopflow-be/internal/logger"
	"shopflow-be/internal/order"
	"shopflow-be/internal/payment"
	"shopflow-be/internal/product"
	"shopflow-be/internal/user"

	"go.uber.org/zap"
)

// Injection points for tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo)

	gateway := payment.NewProcessorGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(paymentRepo, orderRepo, gateway)

	srv := httpapi.NewServer(userSvc, productSvc, orderSvc, paymentSvc)
	return srv.Routes()
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler := newServer(cfg, database)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	return startServerFunc(":"+cfg.AppPort, handler)
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
