package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collabtrack/internal/model"
	"collabtrack/pkg/constants"
)

type WorkspaceMemberRepository interface {
	Create(ctx context.Context, member *model.WorkspaceMember) error
	Find(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMember, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]*model.WorkspaceMember, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.WorkspaceMember, error)
	UpdateRole(ctx context.Context, workspaceID, userID int64, role string) error
	Delete(ctx context.Context, workspaceID, userID int64) error
	CountAdmins(ctx context.Context, workspaceID int64) (int64, error)
	// SoleAdminWorkspaces 用户作为唯一管理员的工作空间
	SoleAdminWorkspaces(ctx context.Context, userID int64) ([]int64, error)
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type workspaceMemberRepository struct {
	db *gorm.DB
}

func NewWorkspaceMemberRepository(db *gorm.DB) WorkspaceMemberRepository {
	return &workspaceMemberRepository{db: db}
}

func (r *workspaceMemberRepository) Create(ctx context.Context, member *model.WorkspaceMember) error {
	return memberError(r.db.WithContext(ctx).Create(member).Error, "添加工作空间成员失败")
}

func (r *workspaceMemberRepository) Find(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMember, error) {
	var member model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, dbError(err, "查询工作空间成员失败")
	}
	return &member, nil
}

func (r *workspaceMemberRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]*model.WorkspaceMember, error) {
	var members []*model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, dbError(err, "查询工作空间成员失败")
	}
	return members, nil
}

func (r *workspaceMemberRepository) ListByUser(ctx context.Context, userID int64) ([]*model.WorkspaceMember, error) {
	var members []*model.WorkspaceMember
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, dbError(err, "查询用户工作空间失败")
	}
	return members, nil
}

func (r *workspaceMemberRepository) UpdateRole(ctx context.Context, workspaceID, userID int64, role string) error {
	result := r.db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Update("member_role", role)
	if result.Error != nil {
		return dbError(result.Error, "更新工作空间成员角色失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *workspaceMemberRepository) Delete(ctx context.Context, workspaceID, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&model.WorkspaceMember{})
	if result.Error != nil {
		return dbError(result.Error, "移除工作空间成员失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

// CountAdmins 统计管理员数量并锁住管理员行, 事务内并发的降级/移除因此串行执行
// 聚合查询不能加 FOR UPDATE, 所以取 id 再计数; sqlite 写事务本身串行, 不加锁
func (r *workspaceMemberRepository) CountAdmins(ctx context.Context, workspaceID int64) (int64, error) {
	db := r.db.WithContext(ctx).Model(&model.WorkspaceMember{})
	if r.db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ids []int64
	err := db.Where("workspace_id = ? AND member_role = ?", workspaceID, constants.WorkspaceRoleAdmin).
		Order("id").
		Pluck("id", &ids).Error
	return int64(len(ids)), dbError(err, "统计工作空间管理员失败")
}

func (r *workspaceMemberRepository) SoleAdminWorkspaces(ctx context.Context, userID int64) ([]int64, error) {
	db := r.db.WithContext(ctx)
	adminOf := db.Model(&model.WorkspaceMember{}).
		Select("workspace_id").
		Where("user_id = ? AND member_role = ?", userID, constants.WorkspaceRoleAdmin)

	var ids []int64
	err := db.Model(&model.WorkspaceMember{}).
		Where("member_role = ? AND workspace_id IN (?)", constants.WorkspaceRoleAdmin, adminOf).
		Group("workspace_id").
		Having("COUNT(*) = 1").
		Pluck("workspace_id", &ids).Error
	if err != nil {
		return nil, dbError(err, "查询唯一管理员失败")
	}
	return ids, nil
}

func (r *workspaceMemberRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Delete(&model.WorkspaceMember{}).Error
	return dbError(err, "删除工作空间成员失败")
}

func (r *workspaceMemberRepository) DeleteByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.WorkspaceMember{}).Error
	return dbError(err, "删除用户工作空间成员关系失败")
}
