package repository

import (
	"context"

	"gorm.io/gorm"

	"collabtrack/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByProject(ctx context.Context, projectID int64) ([]*model.Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]*model.Comment, error)
	Delete(ctx context.Context, id int64) error
	DeleteByProjects(ctx context.Context, projectIDs []int64) error
	DeleteByTasks(ctx context.Context, taskIDs []int64) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return dbError(r.db.WithContext(ctx).Create(comment).Error, "创建评论失败")
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return dbError(r.db.WithContext(ctx).Save(comment).Error, "更新评论失败")
}

func (r *commentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, dbError(err, "查询评论失败")
	}
	return &comment, nil
}

func (r *commentRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.Comment, error) {
	return r.list(ctx, "project_id = ?", projectID)
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]*model.Comment, error) {
	return r.list(ctx, "task_id = ?", taskID)
}

func (r *commentRepository) list(ctx context.Context, cond string, id int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).Where(cond, id).Order("created_at ASC, id ASC").Find(&comments).Error
	if err != nil {
		return nil, dbError(err, "查询评论失败")
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *commentRepository) DeleteByProjects(ctx context.Context, projectIDs []int64) error {
	if len(projectIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("project_id IN ?", projectIDs).Delete(&model.Comment{}).Error
	return dbError(err, "删除项目评论失败")
}

func (r *commentRepository) DeleteByTasks(ctx context.Context, taskIDs []int64) error {
	if len(taskIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Delete(&model.Comment{}).Error
	return dbError(err, "删除任务评论失败")
}
