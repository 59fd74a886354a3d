// Package integrationsvc - Service lịch sử pass sync (ingest_runs).
package integrationsvc

import (
	"context"
	"fmt"

	basesvc "lead_commerce/internal/api/base/service"
	intmodels "lead_commerce/internal/api/integration/models"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IngestRunService ghi audit trail cho từng pass sync.
type IngestRunService struct {
	*basesvc.BaseServiceMongoImpl[intmodels.IngestRun]
}

// NewIngestRunService tạo IngestRunService mới.
func NewIngestRunService() (*IngestRunService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.IngestRuns)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.IngestRuns, common.ErrNotFound)
	}
	return &IngestRunService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[intmodels.IngestRun](coll),
	}, nil
}

// ListByIntegration trả về lịch sử pass của một integration, mới nhất trước.
func (s *IngestRunService) ListByIntegration(ctx context.Context, integrationID primitive.ObjectID, limit int64) ([]intmodels.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(limit)
	return s.Find(ctx, bson.M{"integrationId": integrationID}, opts)
}
