// Package authsvc - Service đọc sales user (auth_users).
// Dùng cho routing lead: xác định manager và validate assignee.
package authsvc

import (
	"context"
	"fmt"

	authmodels "lead_commerce/internal/api/auth/models"
	basesvc "lead_commerce/internal/api/base/service"
	"lead_commerce/internal/common"
	"lead_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService đọc sales user.
type UserService struct {
	*basesvc.BaseServiceMongoImpl[authmodels.User]
}

// NewUserService tạo UserService mới.
func NewUserService() (*UserService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.Users, common.ErrNotFound)
	}
	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[authmodels.User](coll),
	}, nil
}

// IsManager kiểm tra user có phải manager không.
// Manager = có ít nhất một user khác reportsTo user này.
func (s *UserService) IsManager(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	count, err := s.CountDocuments(ctx, bson.M{"reportsTo": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindActiveInOrg trả về user active theo id trong org. Trả ErrNotFound nếu user
// không tồn tại, không active, hoặc thuộc org khác.
func (s *UserService) FindActiveInOrg(ctx context.Context, userID, orgID primitive.ObjectID) (authmodels.User, error) {
	return s.FindOne(ctx, bson.M{
		"_id":                 userID,
		"ownerOrganizationId": orgID,
		"active":              true,
	}, nil)
}
