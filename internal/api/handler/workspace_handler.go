package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"collabtrack/internal/dto"
	"collabtrack/internal/service"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// Create 创建工作空间
// @Summary 创建工作空间
// @Description 创建者自动成为该空间的 admin 成员
// @Tags 工作空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.WorkspaceCreateRequest true "创建工作空间请求"
// @Success 201 {object} utils.Response{data=dto.WorkspaceResponse}
// @Router /api/v1/workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.WorkspaceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	ws, err := h.workspaceService.Create(c.Request.Context(), id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, "Workspace created", ws)
}

// List 我的工作空间
// @Summary 当前用户加入的工作空间
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=[]dto.WorkspaceResponse}
// @Router /api/v1/workspaces [get]
func (h *WorkspaceHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	list, err := h.workspaceService.List(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, list)
}

// Get 工作空间详情
// @Summary 工作空间详情
// @Description 仅成员可见
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Success 200 {object} utils.Response{data=dto.WorkspaceResponse}
// @Router /api/v1/workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceService.Get(c.Request.Context(), id, wsID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, ws)
}

// Update 更新工作空间
// @Summary 更新工作空间
// @Description 空间 admin 或全局 admin
// @Tags 工作空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Param request body dto.WorkspaceUpdateRequest true "更新请求"
// @Success 200 {object} utils.Response{data=dto.WorkspaceResponse}
// @Router /api/v1/workspaces/{id} [put]
func (h *WorkspaceHandler) Update(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.WorkspaceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	ws, err := h.workspaceService.Update(c.Request.Context(), id, wsID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, ws)
}

// Delete 删除工作空间
// @Summary 删除工作空间
// @Description 同时删除空间下的项目、任务、评论与成员
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/workspaces/{id} [delete]
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), id, wsID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Workspace deleted", nil)
}

// ListProjects 工作空间下的项目
// @Summary 工作空间下的项目
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Success 200 {object} utils.Response{data=[]dto.ProjectResponse}
// @Router /api/v1/workspaces/{id}/projects [get]
func (h *WorkspaceHandler) ListProjects(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}

	projects, err := h.workspaceService.ListProjects(c.Request.Context(), id, wsID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, projects)
}

// ListMembers 成员列表
// @Summary 工作空间成员列表
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Success 200 {object} utils.Response{data=[]dto.WorkspaceMemberResponse}
// @Router /api/v1/workspaces/{id}/members [get]
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(c.Request.Context(), id, wsID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, members)
}

// AddMember 添加成员
// @Summary 添加工作空间成员
// @Description 已是成员时返回 409 与已有成员信息
// @Tags 工作空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Param request body dto.WorkspaceMemberAddRequest true "成员"
// @Success 201 {object} utils.Response{data=dto.WorkspaceMemberResponse}
// @Failure 409 {object} utils.Response{data=dto.WorkspaceMemberResponse}
// @Router /api/v1/workspaces/{id}/members [post]
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	wsID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.WorkspaceMemberAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	member, err := h.workspaceService.AddMember(c.Request.Context(), id, wsID, &req)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrAlreadyMember) {
			utils.ErrorWithData(c, err, member)
			return
		}
		utils.Error(c, err)
		return
	}
	utils.Created(c, "Member added", member)
}

// UpdateMember 修改成员角色
// @Summary 修改工作空间成员角色
// @Description 唯一管理员不能被降级
// @Tags 工作空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Param userId path int true "用户ID"
// @Param request body dto.WorkspaceMemberUpdateRequest true "角色"
// @Success 200 {object} utils.Response{data=dto.WorkspaceMemberResponse}
// @Router /api/v1/workspaces/{id}/members/{userId} [put]
func (h *WorkspaceHandler) UpdateMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, ok := bindMember(c)
	if !ok {
		return
	}
	var req dto.WorkspaceMemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	member, err := h.workspaceService.UpdateMemberRole(c.Request.Context(), id, p.ID, p.UserID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, member)
}

// RemoveMember 移除成员
// @Summary 移除工作空间成员
// @Description 不能移除自己, 不能移除唯一管理员
// @Tags 工作空间
// @Produce json
// @Security BearerAuth
// @Param id path int true "工作空间ID"
// @Param userId path int true "用户ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/workspaces/{id}/members/{userId} [delete]
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, ok := bindMember(c)
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(c.Request.Context(), id, p.ID, p.UserID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Member removed", nil)
}
