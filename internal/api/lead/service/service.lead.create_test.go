// Package leadsvc - Test đường tạo/import lead trên mongo driver giả lập (mtest).
// Hai bất biến quan trọng nhất được cover ở đây: redeliver cùng externalId
// không tạo lead thứ hai, và hai writer song song cùng phone chỉ ra một lead.
package leadsvc

import (
	"context"
	"testing"

	basesvc "lead_commerce/internal/api/base/service"
	leaddto "lead_commerce/internal/api/lead/dto"
	leadmodels "lead_commerce/internal/api/lead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// newMockLeadService dựng LeadService trên collection giả lập của mtest.
// Guard với cửa sổ 0 để không chặn gì; các service phụ không đụng tới trong
// các đường test (canonical không có formId/spreadsheetId, creator nil).
func newMockLeadService(mt *mtest.T) *LeadService {
	return &LeadService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[leadmodels.Lead](mt.Coll),
		guard:                NewSubmissionGuard(0, 0),
	}
}

// leadCursor tạo response cho một lệnh find: cursor đã cạn với 0..n document.
func leadCursor(mt *mtest.T, docs ...bson.D) bson.D {
	ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestImportCanonical_RedeliverySkips(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("cùng externalId không tạo lead thứ hai", func(mt *mtest.T) {
		svc := newMockLeadService(mt)
		orgID := primitive.NewObjectID()
		integrationID := primitive.NewObjectID()
		existingID := primitive.NewObjectID()

		// Resolve tìm thấy lead đã import từ chính record upstream này
		mt.AddMockResponses(leadCursor(mt, bson.D{
			{Key: "_id", Value: existingID},
			{Key: "name", Value: "Nguyễn Văn A"},
			{Key: "ownerOrganizationId", Value: orgID},
			{Key: "integrationId", Value: integrationID},
			{Key: "externalId", Value: "lg_123"},
		}))

		canonical := &leadmodels.CanonicalLead{
			ExternalID: "lg_123",
			Name:       "Nguyễn Văn A",
			Phone:      "9876543210",
			Source:     leadmodels.SourceLeadForm,
		}
		outcome, err := svc.ImportCanonical(context.Background(), orgID, integrationID, canonical, DuplicatePolicySkip)
		require.NoError(mt, err)
		assert.Equal(mt, ImportOutcomeSkipped, outcome, "redeliver phải skip, không insert thêm")
	})

	mt.Run("insert dính duplicate key do sync song song cũng là skip", func(mt *mtest.T) {
		svc := newMockLeadService(mt)
		orgID := primitive.NewObjectID()
		integrationID := primitive.NewObjectID()

		// Resolve không thấy gì (externalId rồi phone), nhưng pass song song
		// đã insert xong trước khi mình insert
		mt.AddMockResponses(leadCursor(mt), leadCursor(mt), duplicateKeyResponse())

		canonical := &leadmodels.CanonicalLead{
			ExternalID: "lg_456",
			Name:       "Nguyễn Văn A",
			Phone:      "9876543210",
			Source:     leadmodels.SourceLeadForm,
		}
		outcome, err := svc.ImportCanonical(context.Background(), orgID, integrationID, canonical, DuplicatePolicySkip)
		require.NoError(mt, err)
		assert.Equal(mt, ImportOutcomeSkipped, outcome)
	})

	mt.Run("record mới thì tạo lead", func(mt *mtest.T) {
		svc := newMockLeadService(mt)
		orgID := primitive.NewObjectID()
		integrationID := primitive.NewObjectID()
		createdID := primitive.NewObjectID()

		// externalId chưa có, phone chưa có, insert thành công rồi đọc lại
		mt.AddMockResponses(
			leadCursor(mt),
			leadCursor(mt),
			mtest.CreateSuccessResponse(),
			leadCursor(mt, bson.D{
				{Key: "_id", Value: createdID},
				{Key: "name", Value: "Nguyễn Văn A"},
				{Key: "status", Value: leadmodels.LeadStatusNew},
				{Key: "ownerOrganizationId", Value: orgID},
			}),
		)

		canonical := &leadmodels.CanonicalLead{
			ExternalID: "lg_789",
			Name:       "Nguyễn Văn A",
			Phone:      "9876543210",
			Source:     leadmodels.SourceLeadForm,
		}
		outcome, err := svc.ImportCanonical(context.Background(), orgID, integrationID, canonical, DuplicatePolicySkip)
		require.NoError(mt, err)
		assert.Equal(mt, ImportOutcomeCreated, outcome)
	})
}

func TestCreateLead_DuplicateKeyRace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("bên thua cuộc đua nhận duplicate với lead đang tồn tại", func(mt *mtest.T) {
		svc := newMockLeadService(mt)
		orgID := primitive.NewObjectID()
		existingID := primitive.NewObjectID()
		salesID := primitive.NewObjectID()

		// Resolve lần đầu chưa thấy lead cùng khóa phone; insert thua cuộc đua
		// với writer song song; re-resolve thấy lead của writer thắng
		mt.AddMockResponses(
			leadCursor(mt),
			duplicateKeyResponse(),
			leadCursor(mt, bson.D{
				{Key: "_id", Value: existingID},
				{Key: "name", Value: "Trần Thị B"},
				{Key: "normalizedPhone", Value: "919876543210"},
				{Key: "assignedTo", Value: salesID},
				{Key: "ownerOrganizationId", Value: orgID},
			}),
		)

		resp, err := svc.CreateLead(context.Background(), orgID, &leaddto.CreateLeadRequest{
			Name:      "Trần Thị B",
			Phone:     "9876543210",
			SessionID: "session-a",
		}, nil)
		require.NoError(mt, err, "duplicate key khi insert không được nổi thành lỗi")
		assert.Equal(mt, "duplicate", resp.Status)
		require.NotNil(mt, resp.Existing)
		assert.Equal(mt, existingID, resp.Existing.ID)
		require.NotNil(mt, resp.Existing.AssignedTo)
		assert.Equal(mt, salesID, *resp.Existing.AssignedTo)
		assert.NotEmpty(mt, resp.RequestID)
	})
}

func TestBuildLead_Defaults(t *testing.T) {
	svc := &LeadService{}
	orgID := primitive.NewObjectID()

	lead := svc.buildLead(orgID, &leadmodels.CanonicalLead{
		Name:   "Lê Văn C",
		Phone:  "9876543210",
		Email:  "le.c@corp.io",
		Source: leadmodels.SourceManual,
	}, "919876543210", nil)

	assert.Equal(t, leadmodels.LeadStatusNew, lead.Status, "lead mới luôn bắt đầu ở trạng thái new")
	assert.Equal(t, "919876543210", lead.NormalizedPhone)
	assert.Equal(t, orgID, lead.OwnerOrganizationID)
	assert.Equal(t, "le.c@corp.io", lead.Email)
	assert.Nil(t, lead.AssignedTo)
}
