package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"lead_commerce/internal/global"
	"lead_commerce/internal/logger"
	"lead_commerce/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread() {
	app := InitFiberApp()

	cfg := global.ServerConfig
	address := ":" + cfg.Address

	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"address": address,
	}).Info("Starting Fiber server...")

	listenConfig := fiber.ListenConfig{}
	if err := app.Listen(address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry (collections + adapters)
	InitRegistry()

	log := logger.GetAppLogger()

	// Khởi tạo và chạy Sync Worker (background, poll các integration đến hạn)
	if global.ServerConfig.SyncWorkerEnabled {
		interval := time.Duration(global.ServerConfig.SyncWorkerInterval) * time.Second
		syncWorker, err := worker.NewSyncWorker(interval)
		if err != nil {
			log.WithError(err).Error("Failed to create sync worker, continuing without background sync")
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [SYNC_WORKER] Worker goroutine panic")
					}
				}()
				syncWorker.Start(ctx)
			}()

			log.Info("🔄 [SYNC_WORKER] Sync Worker started successfully")
		}
	} else {
		log.Info("🔄 [SYNC_WORKER] Sync Worker disabled by config")
	}

	// Chạy Fiber server trên main thread
	main_thread()
}
