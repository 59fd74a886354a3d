// Package database - Test định nghĩa index dedup cho lead.
package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func findLeadIndexModel(t *testing.T, name string) mongo.IndexModel {
	t.Helper()
	for _, model := range leadIndexModels() {
		if model.Options != nil && model.Options.Name != nil && *model.Options.Name == name {
			return model
		}
	}
	t.Fatalf("không tìm thấy index %q", name)
	return mongo.IndexModel{}
}

func TestLeadSourceIndex_PartialOnExternalID(t *testing.T) {
	model := findLeadIndexModel(t, "lead_org_source_unique")

	require.NotNil(t, model.Options.Unique)
	assert.True(t, *model.Options.Unique)

	// Không được là sparse: sparse compound index vẫn index lead manual
	// (ownerOrganizationId lúc nào cũng có) thành entry (org, null, null),
	// khiến lead manual thứ hai trong org dính duplicate key.
	assert.Nil(t, model.Options.Sparse, "index nguồn phải dùng partial filter, không phải sparse")

	filter, ok := model.Options.PartialFilterExpression.(bson.M)
	require.True(t, ok, "index nguồn phải có partial filter")
	cond, ok := filter["externalId"].(bson.M)
	require.True(t, ok, "partial filter phải điều kiện trên externalId")
	assert.Equal(t, true, cond["$exists"])
}

func TestLeadPhoneIndex_ExcludesOverride(t *testing.T) {
	model := findLeadIndexModel(t, "lead_org_phone_unique")

	require.NotNil(t, model.Options.Unique)
	assert.True(t, *model.Options.Unique)

	filter, ok := model.Options.PartialFilterExpression.(bson.M)
	require.True(t, ok, "index phone phải có partial filter")
	assert.Equal(t, false, filter["isDuplicateOverride"])
}
