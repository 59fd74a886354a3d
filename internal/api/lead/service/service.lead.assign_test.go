// Package leadsvc - Test precedence của assignment router (phần pure).
package leadsvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveOwnerFromRules_FormRuleWins(t *testing.T) {
	formUser := primitive.NewObjectID()
	sheetUser := primitive.NewObjectID()
	creator := primitive.NewObjectID()

	got := resolveOwnerFromRules(
		&assignmentRule{AssignedTo: &formUser},
		&assignmentRule{AssignedTo: &sheetUser},
		&creator, false,
	)
	if got == nil || *got != formUser {
		t.Errorf("rule form phải thắng, nhận được %v", got)
	}
}

func TestResolveOwnerFromRules_SheetRuleWhenNoFormRule(t *testing.T) {
	sheetUser := primitive.NewObjectID()
	creator := primitive.NewObjectID()

	got := resolveOwnerFromRules(nil, &assignmentRule{AssignedTo: &sheetUser}, &creator, false)
	if got == nil || *got != sheetUser {
		t.Errorf("không có rule form thì rule sheet thắng, nhận được %v", got)
	}
}

func TestResolveOwnerFromRules_UnassignedStopsFallthrough(t *testing.T) {
	creator := primitive.NewObjectID()

	// Rule nói rõ "không gán ai" — KHÔNG rơi xuống creator
	got := resolveOwnerFromRules(nil, &assignmentRule{Unassigned: true}, &creator, false)
	if got != nil {
		t.Errorf("rule Unassigned phải dừng precedence, nhận được %v", got)
	}

	// Không có rule nào — rơi xuống creator
	got = resolveOwnerFromRules(nil, nil, &creator, false)
	if got == nil || *got != creator {
		t.Errorf("không có rule thì creator không phải manager được gán, nhận được %v", got)
	}
}

func TestResolveOwnerFromRules_ManagerNeverAutoAssigned(t *testing.T) {
	manager := primitive.NewObjectID()

	got := resolveOwnerFromRules(nil, nil, &manager, true)
	if got != nil {
		t.Errorf("manager không bao giờ được auto-assign, nhận được %v", got)
	}
}

func TestResolveOwnerFromRules_NoCreatorNoRules(t *testing.T) {
	// Lead import (creator nil), chưa có rule — vào pool chung
	got := resolveOwnerFromRules(nil, nil, nil, false)
	if got != nil {
		t.Errorf("không rule không creator thì không gán, nhận được %v", got)
	}
}

func TestResolveOwnerFromRules_FormUnassignedShadowsSheetRule(t *testing.T) {
	sheetUser := primitive.NewObjectID()

	// Rule form Unassigned che cả rule sheet lẫn creator
	got := resolveOwnerFromRules(&assignmentRule{Unassigned: true}, &assignmentRule{AssignedTo: &sheetUser}, nil, false)
	if got != nil {
		t.Errorf("rule form Unassigned phải che rule sheet, nhận được %v", got)
	}
}
