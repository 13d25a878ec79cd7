package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collabtrack/internal/model"
	"collabtrack/pkg/constants"
)

// TaskStats 单个项目的任务统计
type TaskStats struct {
	ProjectID int64
	Total     int64
	Done      int64
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id int64) (*model.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*model.Task, error)
	ListAssignedTo(ctx context.Context, userID int64) ([]*model.Task, error)
	ListIDsByProjects(ctx context.Context, projectIDs []int64) ([]int64, error)
	StatsByProjects(ctx context.Context, projectIDs []int64) (map[int64]TaskStats, error)
	ClearAssignee(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByProjects(ctx context.Context, projectIDs []int64) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return dbError(r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error, "创建任务失败")
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return dbError(r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error, "更新任务失败")
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, dbError(err, "查询任务失败")
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order(taskPriorityOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, dbError(err, "查询项目任务失败")
	}
	return tasks, nil
}

func (r *taskRepository) ListAssignedTo(ctx context.Context, userID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("assigned_to = ?", userID).
		Order(taskDueDateOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, dbError(err, "查询分配任务失败")
	}
	return tasks, nil
}

func (r *taskRepository) ListIDsByProjects(ctx context.Context, projectIDs []int64) ([]int64, error) {
	var ids []int64
	if len(projectIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id IN ?", projectIDs).
		Pluck("id", &ids).Error
	return ids, dbError(err, "查询任务失败")
}

func (r *taskRepository) StatsByProjects(ctx context.Context, projectIDs []int64) (map[int64]TaskStats, error) {
	result := make(map[int64]TaskStats, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var rows []TaskStats
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("project_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", constants.TaskStatusDone).
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "统计项目任务失败")
	}
	for _, row := range rows {
		result[row.ProjectID] = row
	}
	return result, nil
}

func (r *taskRepository) ClearAssignee(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_to = ?", userID).
		Update("assigned_to", nil).Error
	return dbError(err, "清除任务负责人失败")
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除任务失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *taskRepository) DeleteByProjects(ctx context.Context, projectIDs []int64) error {
	if len(projectIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("project_id IN ?", projectIDs).Delete(&model.Task{}).Error
	return dbError(err, "删除项目任务失败")
}
