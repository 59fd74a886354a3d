package main

import (
	"context"

	"lead_commerce/config"
	authmodels "lead_commerce/internal/api/auth/models"
	intmodels "lead_commerce/internal/api/integration/models"
	leadmodels "lead_commerce/internal/api/lead/models"
	webhookmodels "lead_commerce/internal/api/webhook/models"
	"lead_commerce/internal/database"
	"lead_commerce/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initConfig()           // Khởi tạo cấu hình server
	initValidator()        // Khởi tạo validator
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.ColNames.Users = "auth_users"
	global.ColNames.Organizations = "auth_organizations"

	// Module Lead (tiền tố crm_)
	global.ColNames.Leads = "crm_leads"
	global.ColNames.Integrations = "crm_integrations"
	global.ColNames.FormAssignments = "crm_form_assignments"
	global.ColNames.SheetAssignments = "crm_sheet_assignments"

	// Ingest
	global.ColNames.IngestRuns = "ingest_runs"
	global.ColNames.WebhookLogs = "webhook_logs"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, platform_kind)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection
	dbName := global.ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.Organizations), authmodels.Organization{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.Leads), leadmodels.Lead{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.Integrations), intmodels.Integration{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.FormAssignments), leadmodels.FormAssignment{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.SheetAssignments), leadmodels.SheetAssignment{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.IngestRuns), intmodels.IngestRun{})
	database.CreateIndexes(context.TODO(), db.Collection(global.ColNames.WebhookLogs), webhookmodels.WebhookLog{})

	// Index dedup của lead (partial unique theo phone, unique theo source identity)
	// tạo riêng vì không biểu diễn được bằng index tag.
	if err := database.CreateLeadAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create lead indexes: %v", err)
	}
	logrus.Info("Created indexes")
}
