package service

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/repository"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

type CommentService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.CommentCreateRequest) (*dto.CommentResponse, error)
	List(ctx context.Context, id auth.Identity, query *dto.CommentListQuery) ([]*dto.CommentResponse, error)
	GetByID(ctx context.Context, id auth.Identity, commentID int64) (*dto.CommentResponse, error)
	// Update 先判断评论是否存在, 再判断是否为作者或 admin/project_manager
	Update(ctx context.Context, id auth.Identity, commentID int64, req *dto.CommentUpdateRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, id auth.Identity, commentID int64) error
}

type commentService struct {
	store *repository.Store
	authz AuthorizationService
}

func NewCommentService(store *repository.Store, authz AuthorizationService) CommentService {
	return &commentService{store: store, authz: authz}
}

// target 校验 project_id/task_id 二选一, 返回评论所属项目
func (s *commentService) target(ctx context.Context, projectID, taskID *int64) (int64, error) {
	hasProject := projectID != nil && *projectID > 0
	hasTask := taskID != nil && *taskID > 0
	if hasProject == hasTask {
		return 0, pkgErrors.Validation("project_id", "exactly one of project_id or task_id is required")
	}

	if hasProject {
		project, err := s.store.Projects.FindByID(ctx, *projectID)
		if err != nil {
			return 0, err
		}
		return project.ID, nil
	}

	task, err := s.store.Tasks.FindByID(ctx, *taskID)
	if err != nil {
		return 0, err
	}
	return task.ProjectID, nil
}

func (s *commentService) Create(ctx context.Context, id auth.Identity, req *dto.CommentCreateRequest) (*dto.CommentResponse, error) {
	content := utils.SanitizeText(req.Content)
	if content == "" {
		return nil, pkgErrors.Required("content")
	}

	projectID, err := s.target(ctx, req.ProjectID, req.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermCommentCreate); err != nil {
		return nil, err
	}

	author, err := s.store.Users.FindByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.ErrUnauthenticated
		}
		return nil, err
	}

	comment := &model.Comment{
		Content:  content,
		UserID:   id.ID,
		UserName: author.DisplayName(),
		UserRole: string(id.Role),
	}
	if req.TaskID != nil && *req.TaskID > 0 {
		comment.TaskID = req.TaskID
	} else {
		comment.ProjectID = req.ProjectID
	}

	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

func (s *commentService) List(ctx context.Context, id auth.Identity, query *dto.CommentListQuery) ([]*dto.CommentResponse, error) {
	projectID, err := s.target(ctx, query.ProjectID, query.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermCommentView); err != nil {
		return nil, err
	}

	var comments []*model.Comment
	if query.TaskID != nil && *query.TaskID > 0 {
		comments, err = s.store.Comments.ListByTask(ctx, *query.TaskID)
	} else {
		comments, err = s.store.Comments.ListByProject(ctx, *query.ProjectID)
	}
	if err != nil {
		return nil, err
	}
	return lo.Map(comments, func(c *model.Comment, _ int) *dto.CommentResponse { return toCommentResponse(c) }), nil
}

func (s *commentService) GetByID(ctx context.Context, id auth.Identity, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	projectID, err := s.projectOf(ctx, comment)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermCommentView); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, id auth.Identity, commentID int64, req *dto.CommentUpdateRequest) (*dto.CommentResponse, error) {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Comment(ctx, id, comment, auth.PermCommentUpdate); err != nil {
		return nil, err
	}

	content := utils.SanitizeText(req.Content)
	if content == "" {
		return nil, pkgErrors.Required("content")
	}
	comment.Content = content

	if err := s.store.Comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, id auth.Identity, commentID int64) error {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authz.Comment(ctx, id, comment, auth.PermCommentDelete); err != nil {
		return err
	}
	return s.store.Comments.Delete(ctx, commentID)
}

// projectOf 评论所属项目, 任务评论取任务的项目
func (s *commentService) projectOf(ctx context.Context, comment *model.Comment) (int64, error) {
	if comment.ProjectID != nil {
		return *comment.ProjectID, nil
	}
	if comment.TaskID == nil {
		return 0, pkgErrors.ErrNotFound
	}
	task, err := s.store.Tasks.FindByID(ctx, *comment.TaskID)
	if err != nil {
		return 0, err
	}
	return task.ProjectID, nil
}
