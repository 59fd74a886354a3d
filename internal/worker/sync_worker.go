package worker

import (
	"context"
	"time"

	integrationsvc "lead_commerce/internal/api/integration/service"
	"lead_commerce/internal/ingest"
	"lead_commerce/internal/logger"
)

// SyncWorker worker sync định kỳ: quét các integration poll-based (lead_form,
// spreadsheet) đang active và đến hạn, chạy một pass incremental cho từng cái.
// Platform push-only (messaging) không bao giờ vào danh sách quét.
type SyncWorker struct {
	integrationService *integrationsvc.IntegrationService
	orchestrator       *ingest.Orchestrator
	interval           time.Duration // Khoảng thời gian giữa các lần quét
}

// NewSyncWorker tạo mới SyncWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần quét (mặc định: 5 phút)
func NewSyncWorker(interval time.Duration) (*SyncWorker, error) {
	integrationService, err := integrationsvc.NewIntegrationService()
	if err != nil {
		return nil, err
	}
	orchestrator, err := ingest.NewOrchestrator()
	if err != nil {
		return nil, err
	}
	if interval < 30*time.Second {
		interval = 5 * time.Minute
	}
	return &SyncWorker{
		integrationService: integrationService,
		orchestrator:       orchestrator,
		interval:           interval,
	}, nil
}

// Start chạy worker trong vòng lặp: mỗi interval quét integration đến hạn và
// chạy pass incremental tuần tự. Pass đang chạy (lock bị giữ) thì bỏ qua,
// không phải lỗi. Panic trong một lần quét không giết worker.
func (w *SyncWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🔄 [SYNC_WORKER] Starting Sync Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🔄 [SYNC_WORKER] Sync Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [SYNC_WORKER] Panic khi quét integration, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				due, err := w.integrationService.FindDueForSync(ctx, w.interval)
				if err != nil {
					log.WithError(err).Error("🔄 [SYNC_WORKER] Lỗi lấy danh sách integration đến hạn")
					return
				}
				if len(due) == 0 {
					return
				}

				synced := 0
				for _, integration := range due {
					if _, err := w.orchestrator.RunPass(ctx, integration.ID, false, ingest.TriggerWorker); err != nil {
						if ingest.IsPassRunning(err) {
							continue
						}
						log.WithError(err).WithFields(map[string]interface{}{
							"integrationId": integration.ID.Hex(),
							"platform":      integration.Platform,
						}).Warn("🔄 [SYNC_WORKER] Pass sync thất bại, sẽ thử lại lần sau")
						continue
					}
					synced++
				}

				if synced > 0 {
					log.WithFields(map[string]interface{}{
						"synced": synced,
						"total":  len(due),
					}).Info("🔄 [SYNC_WORKER] Đã sync các integration đến hạn")
				}
			}()
		}
	}
}
