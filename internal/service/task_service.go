package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

// taskStatusAliases 不同客户端使用的状态写法
var taskStatusAliases = map[string]string{
	"backlog":   constants.TaskStatusPending,
	"todo":      constants.TaskStatusPending,
	"completed": constants.TaskStatusDone,
}

// NormalizeTaskStatus 归一任务状态, 空串返回 pending
func NormalizeTaskStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return constants.TaskStatusPending
	}
	if v, ok := taskStatusAliases[s]; ok {
		return v
	}
	return s
}

type TaskService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.TaskCreateRequest) (*dto.TaskResponse, error)
	GetByID(ctx context.Context, id auth.Identity, taskID int64) (*dto.TaskResponse, error)
	ListByProject(ctx context.Context, id auth.Identity, projectID int64) ([]*dto.TaskResponse, error)
	ListAssigned(ctx context.Context, id auth.Identity) ([]*dto.TaskResponse, error)
	Update(ctx context.Context, id auth.Identity, taskID int64, req *dto.TaskUpdateRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id auth.Identity, taskID int64) error
}

type taskService struct {
	store *repository.Store
	authz AuthorizationService
}

func NewTaskService(store *repository.Store, authz AuthorizationService) TaskService {
	return &taskService{store: store, authz: authz}
}

func (s *taskService) Create(ctx context.Context, id auth.Identity, req *dto.TaskCreateRequest) (*dto.TaskResponse, error) {
	title := utils.SanitizeText(req.Title)
	if title == "" {
		return nil, pkgErrors.Required("title")
	}
	if req.ProjectID <= 0 {
		return nil, pkgErrors.Required("project_id")
	}
	if _, err := s.store.Projects.FindByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.Validation("project_id", "does not reference an existing project")
		}
		return nil, err
	}
	if err := s.authz.Project(ctx, id, req.ProjectID, auth.PermTaskCreate); err != nil {
		return nil, err
	}

	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolveAssignee(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = constants.TaskPriorityMedium
	}

	task := &model.Task{
		Title:       title,
		Description: utils.SanitizeTextPtr(req.Description),
		Status:      NormalizeTaskStatus(req.Status),
		Priority:    priority,
		ProjectID:   req.ProjectID,
		AssignedTo:  assignee,
		CreatedBy:   id.ID,
		DueDate:     dueDate,
	}
	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.Info("创建任务", zap.Int64("task_id", task.ID), zap.Int64("project_id", task.ProjectID))
	return toTaskResponse(task), nil
}

// resolveAssignee nil 或 0 表示不分配
func (s *taskService) resolveAssignee(ctx context.Context, assignedTo *int64) (*int64, error) {
	if assignedTo == nil || *assignedTo == 0 {
		return nil, nil
	}
	user, err := s.store.Users.FindByID(ctx, *assignedTo)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.Validation("assigned_to", "does not reference an existing user")
		}
		return nil, err
	}
	return &user.ID, nil
}

func (s *taskService) GetByID(ctx context.Context, id auth.Identity, taskID int64) (*dto.TaskResponse, error) {
	task, err := s.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, task.ProjectID, auth.PermTaskView); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// ListByProject 按优先级降序、创建时间升序
func (s *taskService) ListByProject(ctx context.Context, id auth.Identity, projectID int64) ([]*dto.TaskResponse, error) {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermTaskView); err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return lo.Map(tasks, func(t *model.Task, _ int) *dto.TaskResponse { return toTaskResponse(t) }), nil
}

// ListAssigned 分配给当前用户的任务, 按截止日期升序
func (s *taskService) ListAssigned(ctx context.Context, id auth.Identity) ([]*dto.TaskResponse, error) {
	tasks, err := s.store.Tasks.ListAssignedTo(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	return lo.Map(tasks, func(t *model.Task, _ int) *dto.TaskResponse { return toTaskResponse(t) }), nil
}

func (s *taskService) Update(ctx context.Context, id auth.Identity, taskID int64, req *dto.TaskUpdateRequest) (*dto.TaskResponse, error) {
	task, err := s.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, task.ProjectID, auth.PermTaskUpdate); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := utils.SanitizeText(*req.Title)
		if title == "" {
			return nil, pkgErrors.Validation("title", "must not be empty")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = utils.SanitizeTextPtr(req.Description)
	}
	if req.Status != nil {
		task.Status = NormalizeTaskStatus(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDate("due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}
	if req.AssignedTo != nil {
		assignee, err := s.resolveAssignee(ctx, req.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee
	}

	if err := s.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, id auth.Identity, taskID int64) error {
	task, err := s.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.authz.Project(ctx, id, task.ProjectID, auth.PermTaskDelete); err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Comments.DeleteByTasks(ctx, []int64{taskID}); err != nil {
			return err
		}
		return tx.Tasks.Delete(ctx, taskID)
	})
	if err != nil {
		return err
	}

	logger.Info("删除任务", zap.Int64("task_id", taskID), zap.Int64("user_id", id.ID))
	return nil
}
