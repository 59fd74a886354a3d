package main

import (
	"lead_commerce/config"
	integrationsvc "lead_commerce/internal/api/integration/service"
	"lead_commerce/internal/global"
	"lead_commerce/internal/ingest/adapters"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func InitRegistry() {
	// Khởi tạo registry và đăng ký các collections
	err := InitCollections(global.MongoDB_Session, global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")

	// Đăng ký adapter cho các platform nguồn lead.
	// Phải sau khi collections sẵn sàng: adapter cần IntegrationService để
	// persist token refresh.
	svc, err := integrationsvc.NewIntegrationService()
	if err != nil {
		logrus.Fatalf("Failed to create integration service: %v", err)
	}
	adapters.InitAdapters(svc)
	logrus.Infof("Initialized adapters: %v", adapters.Registry.Names())
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	colNames := []string{
		global.ColNames.Users,
		global.ColNames.Organizations,
		global.ColNames.Leads,
		global.ColNames.Integrations,
		global.ColNames.FormAssignments,
		global.ColNames.SheetAssignments,
		global.ColNames.IngestRuns,
		global.ColNames.WebhookLogs,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
