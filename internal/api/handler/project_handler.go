package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabtrack/internal/dto"
	"collabtrack/internal/service"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
	taskService    service.TaskService
}

func NewProjectHandler(projectService service.ProjectService, taskService service.TaskService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		taskService:    taskService,
	}
}

// Create 创建项目
// @Summary 创建项目
// @Description 仅 admin/project_manager; team_members 中添加失败的成员在 failed_members 中返回, 业务码 206
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProjectCreateRequest true "创建项目请求"
// @Success 201 {object} utils.Response{data=dto.ProjectCreateResponse}
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	resp, err := h.projectService.Create(c.Request.Context(), id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	if len(resp.FailedMembers) > 0 {
		utils.PartialSuccess(c, pkgErrors.ReasonPartialMembership, "Project created, but some members could not be added", resp)
		return
	}
	utils.Created(c, "Project created", resp)
}

// List 项目列表
// @Summary 项目列表
// @Description admin/project_manager 返回全部项目, 其他用户返回自己参与的项目
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=[]dto.ProjectResponse}
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, projects)
}

// Analytics 项目统计
// @Summary 项目进度统计
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=dto.ProjectAnalyticsResponse}
// @Router /api/v1/projects/analytics [get]
func (h *ProjectHandler) Analytics(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	stats, err := h.projectService.Analytics(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, stats)
}

// GetByID 项目详情
// @Summary 项目详情(含成员与任务)
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// Update 更新项目
// @Summary 更新项目
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.ProjectUpdateRequest true "更新请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, projectID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id, projectID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Project deleted", nil)
}

// ListTasks 项目任务
// @Summary 项目下的任务
// @Description 按优先级降序
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.TaskResponse}
// @Router /api/v1/projects/{id}/tasks [get]
func (h *ProjectHandler) ListTasks(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), id, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, tasks)
}

// ListMembers 项目成员
// @Summary 项目成员列表
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.ProjectMemberResponse}
// @Router /api/v1/projects/{id}/members [get]
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), id, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, members)
}

// AddMember 添加项目成员
// @Summary 添加项目成员
// @Description 已是成员时返回 200 与已有成员信息
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.ProjectMemberAddRequest true "成员"
// @Success 201 {object} utils.Response{data=dto.ProjectMemberResponse}
// @Router /api/v1/projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.ProjectMemberAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	member, created, err := h.projectService.AddMember(c.Request.Context(), id, projectID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, utils.Response{Code: pkgErrors.CodeSuccess, Message: "User is already a member", Data: member})
		return
	}
	utils.Created(c, "Member added", member)
}

// UpdateMember 修改项目成员角色
// @Summary 修改项目成员角色
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param userId path int true "用户ID"
// @Param request body dto.ProjectMemberUpdateRequest true "角色"
// @Success 200 {object} utils.Response{data=dto.ProjectMemberResponse}
// @Router /api/v1/projects/{id}/members/{userId} [put]
func (h *ProjectHandler) UpdateMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, ok := bindMember(c)
	if !ok {
		return
	}
	var req dto.ProjectMemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	member, err := h.projectService.UpdateMemberRole(c.Request.Context(), id, p.ID, p.UserID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, member)
}

// RemoveMember 移除项目成员
// @Summary 移除项目成员
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param userId path int true "用户ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, ok := bindMember(c)
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), id, p.ID, p.UserID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Member removed", nil)
}
