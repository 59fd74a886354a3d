package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`       // Port server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`         // Tên cơ sở dữ liệu chính
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`     // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`      // Số request tối đa trong window (0 = disable)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`    // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"` // Bật/tắt rate limiting

	// Cấu hình engine nhập lead
	SyncWorkerEnabled  bool `env:"SYNC_WORKER_ENABLED" envDefault:"true"`   // Bật/tắt worker sync định kỳ
	SyncWorkerInterval int  `env:"SYNC_WORKER_INTERVAL" envDefault:"300"`   // Khoảng cách giữa các lần quét (giây)
	SyncMaxRowsPerCall int  `env:"SYNC_MAX_ROWS_PER_CALL" envDefault:"100"` // Số bản ghi tối đa mỗi lần gọi nguồn
	SyncCallTimeout    int  `env:"SYNC_CALL_TIMEOUT" envDefault:"30"`       // Timeout mỗi lần gọi nguồn (giây)

	// Cấu hình Submission Guard (chống double-submit từ UI)
	GuardPhoneWindow    int `env:"GUARD_PHONE_WINDOW" envDefault:"3"`    // Cửa sổ chặn trùng phone theo session (giây)
	GuardGlobalCooldown int `env:"GUARD_GLOBAL_COOLDOWN" envDefault:"1"` // Cooldown toàn cục giữa 2 lần accept (giây)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường (GO_ENV).
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ working directory
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env và environment variables.
// Trả về nil nếu không parse được (caller quyết định fatal hay không).
func NewConfig() *Configuration {
	// File env là optional: khi deploy qua systemd/container, biến môi trường
	// có thể được set trực tiếp.
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// Dùng fmt.Printf vì logger có thể chưa được init ở đây
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
