package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	pkgErrors "collabtrack/pkg/errors"
)

type UserService interface {
	List(ctx context.Context, id auth.Identity, query *dto.UserListQuery) (*dto.PageResponse, error)
	GetByID(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, id auth.Identity, userID int64, req *dto.UserUpdateRoleRequest) (*dto.UserResponse, error)
	// Delete 删除用户并清理其成员关系与任务分配
	Delete(ctx context.Context, id auth.Identity, userID int64) error
}

type userService struct {
	store *repository.Store
	authz AuthorizationService
}

func NewUserService(store *repository.Store, authz AuthorizationService) UserService {
	return &userService{store: store, authz: authz}
}

func (s *userService) List(ctx context.Context, id auth.Identity, query *dto.UserListQuery) (*dto.PageResponse, error) {
	if err := s.authz.Global(id, auth.PermUserList, auth.Resource{Kind: auth.KindUser}); err != nil {
		return nil, err
	}

	page, pageSize := query.GetPage(), query.GetPageSize()
	role := ""
	if query.Role != "" {
		role = string(auth.NormalizeRole(query.Role))
	}

	users, total, err := s.store.Users.List(ctx, strings.TrimSpace(query.Keyword), role, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := lo.Map(users, func(u *model.User, _ int) *dto.UserResponse { return toUserResponse(u) })
	return dto.NewPageResponse(items, total, page, pageSize), nil
}

func (s *userService) GetByID(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateRole(ctx context.Context, id auth.Identity, userID int64, req *dto.UserUpdateRoleRequest) (*dto.UserResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Global(id, auth.PermUserUpdateRole, auth.Resource{Kind: auth.KindUser, ID: userID, TargetUserID: userID}); err != nil {
		return nil, err
	}
	if !auth.ValidRole(req.Role) {
		return nil, pkgErrors.Validation("role", "must be one of [admin project_manager team_member]")
	}

	role := string(auth.NormalizeRole(req.Role))
	if err := s.store.Users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role

	logger.Info("修改用户角色", zap.Int64("operator", id.ID), zap.Int64("user_id", userID), zap.String("role", role))
	return toUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id auth.Identity, userID int64) error {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.authz.Global(id, auth.PermUserDelete, auth.Resource{Kind: auth.KindUser, ID: userID, TargetUserID: userID}); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		// 唯一管理员不能被删除, 否则工作空间失去管理员
		sole, err := tx.WorkspaceMembers.SoleAdminWorkspaces(ctx, userID)
		if err != nil {
			return err
		}
		if len(sole) > 0 {
			return pkgErrors.ErrLastAdminProtected
		}

		if err := tx.WorkspaceMembers.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.ProjectMembers.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Tasks.ClearAssignee(ctx, userID); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	logger.Info("删除用户", zap.Int64("operator", id.ID), zap.Int64("user_id", userID))
	return nil
}
