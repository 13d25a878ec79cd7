package service

import (
	"context"
	"errors"
	"math"
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

type ProjectService interface {
	// Create 创建项目并逐个添加 team_members, 单个成员失败不影响项目和其他成员
	Create(ctx context.Context, id auth.Identity, req *dto.ProjectCreateRequest) (*dto.ProjectCreateResponse, error)
	List(ctx context.Context, id auth.Identity) ([]*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id auth.Identity, projectID int64) (*dto.ProjectResponse, error)
	Update(ctx context.Context, id auth.Identity, projectID int64, req *dto.ProjectUpdateRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id auth.Identity, projectID int64) error
	Analytics(ctx context.Context, id auth.Identity) (*dto.ProjectAnalyticsResponse, error)

	ListMembers(ctx context.Context, id auth.Identity, projectID int64) ([]*dto.ProjectMemberResponse, error)
	// AddMember 已是成员时按成功处理, created=false
	AddMember(ctx context.Context, id auth.Identity, projectID int64, req *dto.ProjectMemberAddRequest) (resp *dto.ProjectMemberResponse, created bool, err error)
	UpdateMemberRole(ctx context.Context, id auth.Identity, projectID, userID int64, req *dto.ProjectMemberUpdateRequest) (*dto.ProjectMemberResponse, error)
	RemoveMember(ctx context.Context, id auth.Identity, projectID, userID int64) error
}

type projectService struct {
	store *repository.Store
	authz AuthorizationService
}

func NewProjectService(store *repository.Store, authz AuthorizationService) ProjectService {
	return &projectService{store: store, authz: authz}
}

func (s *projectService) Create(ctx context.Context, id auth.Identity, req *dto.ProjectCreateRequest) (*dto.ProjectCreateResponse, error) {
	if err := s.authz.Global(id, auth.PermProjectCreate, auth.Resource{Kind: auth.KindProject}); err != nil {
		return nil, err
	}

	title := utils.SanitizeText(req.Title)
	if title == "" {
		return nil, pkgErrors.Required("title")
	}
	if req.WorkspaceID <= 0 {
		return nil, pkgErrors.Required("workspace_id")
	}
	if _, err := s.store.Workspaces.FindByID(ctx, req.WorkspaceID); err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.Validation("workspace_id", "does not reference an existing workspace")
		}
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = constants.ProjectStatusActive
	}

	project := &model.Project{
		Title:       title,
		Description: utils.SanitizeTextPtr(req.Description),
		DueDate:     dueDate,
		WorkspaceID: req.WorkspaceID,
		CreatedBy:   id.ID,
		Status:      status,
	}
	if err := s.store.Projects.Create(ctx, project); err != nil {
		return nil, err
	}

	resp := &dto.ProjectCreateResponse{
		Project:      toProjectResponse(project),
		AddedMembers: []int64{},
	}
	for _, userID := range lo.Uniq(req.TeamMembers) {
		if reason := s.addTeamMember(ctx, project.ID, userID); reason != "" {
			resp.FailedMembers = append(resp.FailedMembers, dto.FailedMember{UserID: userID, Reason: reason})
			continue
		}
		resp.AddedMembers = append(resp.AddedMembers, userID)
	}

	if len(resp.FailedMembers) > 0 {
		logger.Warn("项目成员部分添加失败",
			zap.Int64("project_id", project.ID),
			zap.Int("failed", len(resp.FailedMembers)),
		)
	}
	logger.Info("创建项目", zap.Int64("project_id", project.ID), zap.Int64("user_id", id.ID))
	return resp, nil
}

// addTeamMember 返回失败原因, 成功返回空串
func (s *projectService) addTeamMember(ctx context.Context, projectID, userID int64) string {
	if userID <= 0 {
		return "invalid user id"
	}
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return "user not found"
		}
		logger.Error("查询项目成员用户失败", zap.Int64("user_id", userID), zap.Error(err))
		return "could not verify user"
	}
	member := &model.ProjectMember{ProjectID: projectID, UserID: userID, Role: constants.ProjectRoleMember}
	if err := s.store.ProjectMembers.Create(ctx, member); err != nil && !errors.Is(err, pkgErrors.ErrAlreadyMember) {
		logger.Error("添加项目成员失败", zap.Int64("project_id", projectID), zap.Int64("user_id", userID), zap.Error(err))
		return "could not add member"
	}
	return ""
}

// List admin/project_manager 返回全部项目, 其他人只返回自己是成员的项目
func (s *projectService) List(ctx context.Context, id auth.Identity) ([]*dto.ProjectResponse, error) {
	projects, err := s.visibleProjects(ctx, id, repository.WithMembersAndTasks())
	if err != nil {
		return nil, err
	}
	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectResponse { return toProjectResponse(p) }), nil
}

func (s *projectService) visibleProjects(ctx context.Context, id auth.Identity, opts ...repository.QueryOption) ([]*model.Project, error) {
	if s.authz.CanListAllProjects(id) {
		return s.store.Projects.List(ctx, opts...)
	}
	return s.store.Projects.ListByMember(ctx, id.ID, opts...)
}

func (s *projectService) GetByID(ctx context.Context, id auth.Identity, projectID int64) (*dto.ProjectResponse, error) {
	project, err := s.store.Projects.FindByID(ctx, projectID, repository.WithMembersAndTasks())
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectView); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) Update(ctx context.Context, id auth.Identity, projectID int64, req *dto.ProjectUpdateRequest) (*dto.ProjectResponse, error) {
	project, err := s.store.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectUpdate); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := utils.SanitizeText(*req.Title)
		if title == "" {
			return nil, pkgErrors.Validation("title", "must not be empty")
		}
		project.Title = title
	}
	if req.Description != nil {
		project.Description = utils.SanitizeTextPtr(req.Description)
	}
	if req.DueDate != nil {
		dueDate, err := parseDate("due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
		project.DueDate = dueDate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if err := s.store.Projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// Delete 删除项目及其评论、任务、成员
func (s *projectService) Delete(ctx context.Context, id auth.Identity, projectID int64) error {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectDelete); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := deleteProjects(ctx, tx, []int64{projectID}); err != nil {
			return err
		}
		return tx.Projects.Delete(ctx, projectID)
	})
	if err != nil {
		return err
	}

	logger.Info("删除项目", zap.Int64("project_id", projectID), zap.Int64("user_id", id.ID))
	return nil
}

// Analytics 当前用户可见项目的进度统计, 进度 = 已完成任务 / 全部任务
func (s *projectService) Analytics(ctx context.Context, id auth.Identity) (*dto.ProjectAnalyticsResponse, error) {
	projects, err := s.visibleProjects(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(projects, func(p *model.Project, _ int) int64 { return p.ID })

	stats, err := s.store.Tasks.StatsByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	memberCounts, err := s.store.ProjectMembers.CountByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProjectAnalyticsResponse{
		TotalProjects: len(projects),
		Projects:      make([]*dto.ProjectProgress, 0, len(projects)),
	}
	var progressSum float64
	for _, p := range projects {
		st := stats[p.ID]
		item := &dto.ProjectProgress{
			ProjectID:   p.ID,
			Title:       p.Title,
			Status:      p.Status,
			TotalTasks:  st.Total,
			DoneTasks:   st.Done,
			MemberCount: memberCounts[p.ID],
		}
		if st.Total > 0 {
			item.Progress = round2(float64(st.Done) * 100 / float64(st.Total))
		}
		progressSum += item.Progress

		switch p.Status {
		case constants.ProjectStatusCompleted:
			resp.CompletedProjects++
		case constants.ProjectStatusActive, constants.ProjectStatusInProgress:
			resp.ActiveProjects++
		}
		resp.Projects = append(resp.Projects, item)
	}
	if len(projects) > 0 {
		resp.AverageProgress = round2(progressSum / float64(len(projects)))
	}
	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *projectService) ListMembers(ctx context.Context, id auth.Identity, projectID int64) ([]*dto.ProjectMemberResponse, error) {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectView); err != nil {
		return nil, err
	}

	members, err := s.store.ProjectMembers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return lo.Map(members, func(m *model.ProjectMember, _ int) *dto.ProjectMemberResponse {
		return toProjectMemberResponse(m)
	}), nil
}

func (s *projectService) AddMember(ctx context.Context, id auth.Identity, projectID int64, req *dto.ProjectMemberAddRequest) (*dto.ProjectMemberResponse, bool, error) {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return nil, false, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectMemberManage); err != nil {
		return nil, false, err
	}

	user, err := s.store.Users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, false, pkgErrors.Validation("user_id", "does not reference an existing user")
		}
		return nil, false, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = constants.ProjectRoleMember
	}

	member := &model.ProjectMember{ProjectID: projectID, UserID: user.ID, Role: role}
	if err := s.store.ProjectMembers.Create(ctx, member); err != nil {
		if !errors.Is(err, pkgErrors.ErrAlreadyMember) {
			return nil, false, err
		}
		existing, err := s.store.ProjectMembers.Find(ctx, projectID, user.ID)
		if err != nil {
			return nil, false, err
		}
		return toProjectMemberResponse(existing), false, nil
	}
	member.User = user

	logger.Info("添加项目成员", zap.Int64("project_id", projectID), zap.Int64("member_id", user.ID))
	return toProjectMemberResponse(member), true, nil
}

func (s *projectService) UpdateMemberRole(ctx context.Context, id auth.Identity, projectID, userID int64, req *dto.ProjectMemberUpdateRequest) (*dto.ProjectMemberResponse, error) {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectMemberManage); err != nil {
		return nil, err
	}

	if err := s.store.ProjectMembers.UpdateRole(ctx, projectID, userID, req.Role); err != nil {
		return nil, err
	}
	member, err := s.store.ProjectMembers.Find(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return toProjectMemberResponse(member), nil
}

func (s *projectService) RemoveMember(ctx context.Context, id auth.Identity, projectID, userID int64) error {
	if _, err := s.store.Projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.authz.Project(ctx, id, projectID, auth.PermProjectMemberManage); err != nil {
		return err
	}
	if err := s.store.ProjectMembers.Delete(ctx, projectID, userID); err != nil {
		return err
	}

	logger.Info("移除项目成员", zap.Int64("project_id", projectID), zap.Int64("member_id", userID))
	return nil
}
