// Package database - Index bổ sung cho lead (partial, compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"lead_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// leadIndexModels định nghĩa các index bổ sung cho crm_leads.
// Tách riêng để test được phần định nghĩa mà không cần database.
//
// Hai index unique ở đây enforce dedup ở tầng storage, cả hai đều dùng
// partial filter thay vì sparse: sparse compound index vẫn index mọi document
// có ít nhất một key trong compound — ownerOrganizationId lúc nào cũng có,
// nên sparse sẽ index cả các lead manual (không externalId) thành cùng một
// entry (org, null, null) và lead manual thứ hai trong org dính E11000.
func leadIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		// (ownerOrganizationId, normalizedPhone) unique partial — dedup theo phone.
		// Filter loại document không có phone và document override trùng có chủ đích.
		{
			Keys: bson.D{
				{Key: "ownerOrganizationId", Value: 1},
				{Key: "normalizedPhone", Value: 1},
			},
			Options: options.Index().
				SetName("lead_org_phone_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"normalizedPhone":     bson.M{"$exists": true, "$type": "string"},
					"isDuplicateOverride": false,
				}),
		},
		// (ownerOrganizationId, integrationId, externalId) unique partial — dedup
		// theo nguồn: mỗi record upstream chỉ được import một lần. Chỉ áp lên
		// lead import (có externalId), lead manual không vào index này.
		{
			Keys: bson.D{
				{Key: "ownerOrganizationId", Value: 1},
				{Key: "integrationId", Value: 1},
				{Key: "externalId", Value: 1},
			},
			Options: options.Index().
				SetName("lead_org_source_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"externalId": bson.M{"$exists": true},
				}),
		},
		// (ownerOrganizationId, assignedTo) — list lead theo sales user
		{
			Keys: bson.D{
				{Key: "ownerOrganizationId", Value: 1},
				{Key: "assignedTo", Value: 1},
			},
			Options: options.Index().SetName("lead_org_assigned"),
		},
		// (ownerOrganizationId, createdAt desc) — list lead mới nhất
		{
			Keys: bson.D{
				{Key: "ownerOrganizationId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("lead_org_created"),
		},
	}
}

// CreateLeadAdditionalIndexes tạo các index bổ sung cho lead.
// Gọi sau CreateIndexes cho từng collection lead.
func CreateLeadAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	leads := db.Collection(global.ColNames.Leads)

	for _, model := range leadIndexModels() {
		if _, err := leads.Indexes().CreateOne(ctx, model); err != nil && !isIndexExistsError(err) {
			return err
		}
	}

	// crm_integrations: (ownerOrganizationId, platform) — scan integrations theo org
	integrations := db.Collection(global.ColNames.Integrations)
	if _, err := integrations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "platform", Value: 1},
		},
		Options: options.Index().SetName("integration_org_platform"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// crm_form_assignments: (ownerOrganizationId, formId) unique — một rule cho mỗi form
	formAssignments := db.Collection(global.ColNames.FormAssignments)
	if _, err := formAssignments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "formId", Value: 1},
		},
		Options: options.Index().SetName("form_assignment_org_form_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// crm_sheet_assignments: (ownerOrganizationId, spreadsheetId) unique — một rule cho mỗi sheet
	sheetAssignments := db.Collection(global.ColNames.SheetAssignments)
	if _, err := sheetAssignments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "spreadsheetId", Value: 1},
		},
		Options: options.Index().SetName("sheet_assignment_org_sheet_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// ingest_runs: (integrationId, startedAt desc) — lịch sử sync theo integration
	ingestRuns := db.Collection(global.ColNames.IngestRuns)
	if _, err := ingestRuns.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "integrationId", Value: 1},
			{Key: "startedAt", Value: -1},
		},
		Options: options.Index().SetName("ingest_run_integration_started"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
