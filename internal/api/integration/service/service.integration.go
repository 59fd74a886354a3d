// Package integrationsvc - Service integration (crm_integrations): cấu hình nguồn,
// sync lock và cursor. Chỉ orchestrator được ghi cursor/lock.
package integrationsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "lead_commerce/internal/api/base/service"
	intmodels "lead_commerce/internal/api/integration/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncStaleAfter: marker syncing cũ hơn khoảng này coi như stale (pass trước crash
// giữa chừng) và được phép chiếm lại.
const SyncStaleAfter = 10 * time.Minute

// IntegrationService xử lý logic integration.
type IntegrationService struct {
	*basesvc.BaseServiceMongoImpl[intmodels.Integration]
}

// NewIntegrationService tạo IntegrationService mới.
func NewIntegrationService() (*IntegrationService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.Integrations)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.Integrations, common.ErrNotFound)
	}
	return &IntegrationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[intmodels.Integration](coll),
	}, nil
}

// AcquireSyncLock chiếm quyền chạy pass cho integration — atomic qua FindOneAndUpdate.
// Chỉ thành công khi integration active và không có pass nào đang chạy
// (syncing=false, hoặc marker đã stale). Trả về ErrIngestPassRunning khi
// có pass khác đang giữ lock.
func (s *IntegrationService) AcquireSyncLock(ctx context.Context, integrationID primitive.ObjectID) (intmodels.Integration, error) {
	var zero intmodels.Integration
	now := time.Now().UnixMilli()
	staleBefore := now - SyncStaleAfter.Milliseconds()

	filter := bson.M{
		"_id":    integrationID,
		"active": true,
		"$or": []bson.M{
			{"syncing": false},
			{"syncing": bson.M{"$exists": false}},
			{"syncStartedAt": bson.M{"$lt": staleBefore}},
		},
	}
	update := bson.M{"$set": bson.M{
		"syncing":       true,
		"syncStartedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	integration, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err == nil {
		return integration, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	// Không match — phân biệt "đang chạy" với "không tồn tại/inactive".
	existing, ferr := s.FindOne(ctx, bson.M{"_id": integrationID}, nil)
	if ferr != nil {
		return zero, ferr
	}
	if !existing.Active {
		return zero, common.NewError(
			common.ErrCodeIngestConfig,
			"Integration đã bị tắt, không thể sync",
			common.StatusConflict,
			nil,
		)
	}
	return zero, common.ErrIngestPassRunning
}

// ReleaseSyncLock trả lock sau khi pass kết thúc. success=true cập nhật
// lastSyncedAt; passErr (có thể rỗng) ghi vào lastError cho settings UI.
func (s *IntegrationService) ReleaseSyncLock(ctx context.Context, integrationID primitive.ObjectID, success bool, passErr string) error {
	set := bson.M{
		"syncing":   false,
		"lastError": passErr,
	}
	if success {
		set["lastSyncedAt"] = time.Now().UnixMilli()
	}
	_, err := s.UpdateOne(ctx, bson.M{"_id": integrationID}, bson.M{"$set": set}, nil)
	return err
}

// AdvanceCursor tiến cursor sau khi một batch được xử lý trọn vẹn.
// Monotonic theo cấu trúc: rowOffset và since đi qua $max nên không bao giờ lùi,
// kể cả khi hai pass đua nhau ghi. pageToken ghi đè trực tiếp (token chỉ có
// nghĩa trong một pass).
func (s *IntegrationService) AdvanceCursor(ctx context.Context, integrationID primitive.ObjectID, cursor intmodels.SyncCursor) error {
	update := bson.M{
		"$max": bson.M{
			"cursor.rowOffset": cursor.RowOffset,
			"cursor.since":     cursor.Since,
		},
		"$set": bson.M{
			"cursor.pageToken": cursor.PageToken,
			"updatedAt":        time.Now().UnixMilli(),
		},
	}
	// Dùng collection trực tiếp: base service wrap update vào $set, ở đây cần $max.
	_, err := s.Collection().UpdateOne(ctx, bson.M{"_id": integrationID}, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// ResetCursor đưa cursor về đầu nguồn — chỉ dùng cho full resync có chủ đích.
func (s *IntegrationService) ResetCursor(ctx context.Context, integrationID primitive.ObjectID) error {
	_, err := s.UpdateOne(ctx, bson.M{"_id": integrationID}, bson.M{"$set": bson.M{
		"cursor": intmodels.SyncCursor{},
	}}, nil)
	return err
}

// MergeConfig cập nhật config theo kiểu đọc-merge-ghi: chỉ đè key có trong patch,
// key value nil bị xóa, key lạ của bản cũ giữ nguyên (forward compatibility —
// settings edit và cursor advance từ pass đang chạy không được clobber key của nhau).
func (s *IntegrationService) MergeConfig(ctx context.Context, integrationID primitive.ObjectID, orgID primitive.ObjectID, patch map[string]interface{}) (intmodels.Integration, error) {
	var zero intmodels.Integration

	existing, err := s.FindOne(ctx, bson.M{"_id": integrationID, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		return zero, err
	}

	merged := make(map[string]interface{}, len(existing.Config)+len(patch))
	for k, v := range existing.Config {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	return s.UpdateOne(ctx, bson.M{"_id": integrationID}, bson.M{"$set": bson.M{"config": merged}}, nil)
}

// FindDueForSync trả về các integration active kiểu poll (lead_form, spreadsheet)
// chưa sync trong khoảng interval — worker định kỳ quét danh sách này.
func (s *IntegrationService) FindDueForSync(ctx context.Context, interval time.Duration) ([]intmodels.Integration, error) {
	dueBefore := time.Now().Add(-interval).UnixMilli()
	return s.Find(ctx, bson.M{
		"active":   true,
		"platform": bson.M{"$in": []string{intmodels.PlatformLeadForm, intmodels.PlatformSpreadsheet}},
		"$or": []bson.M{
			{"lastSyncedAt": bson.M{"$lt": dueBefore}},
			{"lastSyncedAt": bson.M{"$exists": false}},
		},
	}, nil)
}
