package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/attendance-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/badge"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
	"github.com/ogurasousui/attendance-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/attendance-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/attendance-clean-arch/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	deriver, err := badge.NewDeriver(cfg.Attendance.Secret)
	if err != nil {
		log.Fatalf("failed to initialize badge deriver: %v", err)
	}

	location, err := cfg.Attendance.Location()
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	ledgerRepo := postgres.NewAttendanceRepository(dbPool)

	employeeSvc := employee.NewService(employeeRepo, deriver, nil, txManager)
	attendanceSvc := attendance.NewService(employeeRepo, ledgerRepo, nil, location)

	httpServer := server.New(cfg.Server.ListenAddr, employeeSvc, attendanceSvc)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
