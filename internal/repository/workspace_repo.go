package repository

import (
	"context"

	"gorm.io/gorm"

	"collabtrack/internal/model"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *model.Workspace) error
	Update(ctx context.Context, ws *model.Workspace) error
	FindByID(ctx context.Context, id int64) (*model.Workspace, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error)
	Delete(ctx context.Context, id int64) error
}

type workspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	return dbError(r.db.WithContext(ctx).Create(ws).Error, "创建工作空间失败")
}

func (r *workspaceRepository) Update(ctx context.Context, ws *model.Workspace) error {
	return dbError(r.db.WithContext(ctx).Save(ws).Error, "更新工作空间失败")
}

func (r *workspaceRepository) FindByID(ctx context.Context, id int64) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, id).Error; err != nil {
		return nil, dbError(err, "查询工作空间失败")
	}
	return &ws, nil
}

func (r *workspaceRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error) {
	var list []*model.Workspace
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC, id ASC").Find(&list).Error; err != nil {
		return nil, dbError(err, "查询工作空间失败")
	}
	return list, nil
}

func (r *workspaceRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Workspace{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除工作空间失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}
