package handler

import (
	"github.com/gin-gonic/gin"

	"collabtrack/internal/dto"
	"collabtrack/internal/service"
	"collabtrack/pkg/utils"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// Create 创建任务
// @Summary 创建任务
// @Description status 接受 backlog/todo(归一为 pending)与 completed(归一为 done)
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TaskCreateRequest true "创建任务请求"
// @Success 201 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, "Task created", task)
}

// List 任务列表
// @Summary 任务列表
// @Description 传 project_id 返回该项目任务, 否则返回分配给当前用户的任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.TaskResponse}
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var query dto.TaskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BindError(c, err)
		return
	}

	var (
		tasks []*dto.TaskResponse
		err   error
	)
	if query.ProjectID > 0 {
		tasks, err = h.taskService.ListByProject(c.Request.Context(), id, query.ProjectID)
	} else {
		tasks, err = h.taskService.ListAssigned(c.Request.Context(), id)
	}
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, tasks)
}

// ListAssigned 我的任务
// @Summary 分配给当前用户的任务
// @Description 按截止日期升序
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=[]dto.TaskResponse}
// @Router /api/v1/tasks/user-assigned [get]
func (h *TaskHandler) ListAssigned(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAssigned(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, tasks)
}

// GetByID 任务详情
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	taskID, ok := bindID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id, taskID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, task)
}

// Update 更新任务
// @Summary 更新任务
// @Description assigned_to 传 0 取消分配
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Param request body dto.TaskUpdateRequest true "更新请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	taskID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, taskID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, task)
}

// Delete 删除任务
// @Summary 删除任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	taskID, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id, taskID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Task deleted", nil)
}
