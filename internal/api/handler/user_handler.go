package handler

import (
	"github.com/gin-gonic/gin"

	"collabtrack/internal/dto"
	"collabtrack/internal/service"
	"collabtrack/pkg/utils"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List 用户列表
// @Summary 用户列表
// @Description 仅 admin/project_manager, 支持关键字搜索
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "关键字"
// @Param role query string false "全局角色"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} utils.PageResponse{data=[]dto.UserResponse}
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BindError(c, err)
		return
	}

	page, err := h.userService.List(c.Request.Context(), id, &query)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.PageSuccess(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Profile 当前用户资料
// @Summary 当前用户资料
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=dto.UserResponse}
// @Router /api/v1/users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id.ID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// UpdateRole 修改全局角色
// @Summary 修改用户全局角色
// @Description 仅 admin, 不能修改自己的角色
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.UserUpdateRoleRequest true "角色"
// @Success 200 {object} utils.Response{data=dto.UserResponse}
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	userID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.UserUpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), id, userID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// Delete 删除用户
// @Summary 删除用户
// @Description 仅 admin, 不能删除自己, 不能删除工作空间的唯一管理员
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	userID, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, userID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "User deleted", nil)
}
