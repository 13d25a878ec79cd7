package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collabtrack/internal/model"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error)
	List(ctx context.Context, opts ...QueryOption) ([]*model.Project, error)
	ListByMember(ctx context.Context, userID int64, opts ...QueryOption) ([]*model.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]*model.Project, error)
	Delete(ctx context.Context, id int64) error
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
	return dbError(err, "创建项目失败")
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
	return dbError(err, "更新项目失败")
}

func (r *projectRepository) FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	if err := applyOptions(r.db.WithContext(ctx), opts).First(&project, id).Error; err != nil {
		return nil, dbError(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, opts ...QueryOption) ([]*model.Project, error) {
	var projects []*model.Project
	err := applyOptions(r.db.WithContext(ctx), opts).
		Order("title ASC, id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, dbError(err, "查询项目列表失败")
	}
	return projects, nil
}

func (r *projectRepository) ListByMember(ctx context.Context, userID int64, opts ...QueryOption) ([]*model.Project, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&model.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	var projects []*model.Project
	err := applyOptions(db, opts).
		Where("id IN (?)", memberOf).
		Order("title ASC, id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, dbError(err, "查询项目列表失败")
	}
	return projects, nil
}

func (r *projectRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("title ASC, id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, dbError(err, "查询工作空间项目失败")
	}
	return projects, nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Project{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除项目失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *projectRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Delete(&model.Project{}).Error
	return dbError(err, "删除工作空间项目失败")
}
