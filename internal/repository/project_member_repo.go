package repository

import (
	"context"

	"gorm.io/gorm"

	"collabtrack/internal/model"
)

type ProjectMemberRepository interface {
	Create(ctx context.Context, member *model.ProjectMember) error
	Find(ctx context.Context, projectID, userID int64) (*model.ProjectMember, error)
	Exists(ctx context.Context, projectID, userID int64) (bool, error)
	ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectMember, error)
	CountByProjects(ctx context.Context, projectIDs []int64) (map[int64]int64, error)
	UpdateRole(ctx context.Context, projectID, userID int64, role string) error
	Delete(ctx context.Context, projectID, userID int64) error
	DeleteByProjects(ctx context.Context, projectIDs []int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type projectMemberRepository struct {
	db *gorm.DB
}

func NewProjectMemberRepository(db *gorm.DB) ProjectMemberRepository {
	return &projectMemberRepository{db: db}
}

func (r *projectMemberRepository) Create(ctx context.Context, member *model.ProjectMember) error {
	return memberError(r.db.WithContext(ctx).Omit("User").Create(member).Error, "添加项目成员失败")
}

func (r *projectMemberRepository) Find(ctx context.Context, projectID, userID int64) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		return nil, dbError(err, "查询项目成员失败")
	}
	return &member, nil
}

func (r *projectMemberRepository) Exists(ctx context.Context, projectID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "查询项目成员失败")
	}
	return count > 0, nil
}

func (r *projectMemberRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectMember, error) {
	var members []*model.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, dbError(err, "查询项目成员失败")
	}
	return members, nil
}

func (r *projectMemberRepository) CountByProjects(ctx context.Context, projectIDs []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ProjectID int64
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "统计项目成员失败")
	}
	for _, row := range rows {
		result[row.ProjectID] = row.Total
	}
	return result, nil
}

func (r *projectMemberRepository) UpdateRole(ctx context.Context, projectID, userID int64, role string) error {
	result := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return dbError(result.Error, "更新项目成员角色失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *projectMemberRepository) Delete(ctx context.Context, projectID, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{})
	if result.Error != nil {
		return dbError(result.Error, "移除项目成员失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *projectMemberRepository) DeleteByProjects(ctx context.Context, projectIDs []int64) error {
	if len(projectIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("project_id IN ?", projectIDs).Delete(&model.ProjectMember{}).Error
	return dbError(err, "删除项目成员失败")
}

func (r *projectMemberRepository) DeleteByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ProjectMember{}).Error
	return dbError(err, "删除用户项目成员关系失败")
}
