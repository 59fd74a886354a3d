package global

import (
	"lead_commerce/config"
	"lead_commerce/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName chứa tên các collection trong MongoDB.
type CollectionName struct {
	Users         string // Tên collection cho sales users (đọc từ hệ thống auth, chỉ read)
	Organizations string // Tên collection cho tổ chức

	Leads            string // Tên collection cho lead
	Integrations     string // Tên collection cho integration (nguồn lead ngoài)
	FormAssignments  string // Tên collection cho rule gán lead theo form
	SheetAssignments string // Tên collection cho rule gán lead theo sheet
	IngestRuns       string // Tên collection cho lịch sử các pass sync
	WebhookLogs      string // Tên collection cho log webhook inbound
}

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration // Cấu hình của server
var ColNames CollectionName = CollectionName{}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
