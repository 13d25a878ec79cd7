package handler

import (
	"github.com/gin-gonic/gin"

	"collabtrack/internal/dto"
	"collabtrack/internal/service"
	"collabtrack/pkg/utils"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create 发表评论
// @Summary 发表评论
// @Description project_id 与 task_id 二选一
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CommentCreateRequest true "评论"
// @Success 201 {object} utils.Response{data=dto.CommentResponse}
// @Router /api/v1/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}
	h.create(c, &req)
}

// CreateForProject 项目评论
// @Summary 发表项目评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Param request body dto.CommentUpdateRequest true "评论内容"
// @Success 201 {object} utils.Response{data=dto.CommentResponse}
// @Router /api/v1/projects/{id}/comments [post]
func (h *CommentHandler) CreateForProject(c *gin.Context) {
	projectID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}
	req.ProjectID, req.TaskID = &projectID, nil
	h.create(c, &req)
}

// CreateForTask 任务评论
// @Summary 发表任务评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Param request body dto.CommentUpdateRequest true "评论内容"
// @Success 201 {object} utils.Response{data=dto.CommentResponse}
// @Router /api/v1/tasks/{id}/comments [post]
func (h *CommentHandler) CreateForTask(c *gin.Context) {
	taskID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}
	req.ProjectID, req.TaskID = nil, &taskID
	h.create(c, &req)
}

func (h *CommentHandler) create(c *gin.Context, req *dto.CommentCreateRequest) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), id, req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, "Comment created", comment)
}

// List 评论列表
// @Summary 评论列表
// @Description project_id 与 task_id 二选一
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "项目ID"
// @Param task_id query int false "任务ID"
// @Success 200 {object} utils.Response{data=[]dto.CommentResponse}
// @Router /api/v1/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	var query dto.CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BindError(c, err)
		return
	}
	h.list(c, &query)
}

// ListForProject 项目评论列表
// @Summary 项目评论列表
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.CommentResponse}
// @Router /api/v1/projects/{id}/comments [get]
func (h *CommentHandler) ListForProject(c *gin.Context) {
	projectID, ok := bindID(c)
	if !ok {
		return
	}
	h.list(c, &dto.CommentListQuery{ProjectID: &projectID})
}

// ListForTask 任务评论列表
// @Summary 任务评论列表
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} utils.Response{data=[]dto.CommentResponse}
// @Router /api/v1/tasks/{id}/comments [get]
func (h *CommentHandler) ListForTask(c *gin.Context) {
	taskID, ok := bindID(c)
	if !ok {
		return
	}
	h.list(c, &dto.CommentListQuery{TaskID: &taskID})
}

func (h *CommentHandler) list(c *gin.Context, query *dto.CommentListQuery) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), id, query)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, comments)
}

// GetByID 评论详情
// @Summary 评论详情
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} utils.Response{data=dto.CommentResponse}
// @Router /api/v1/comments/{id} [get]
func (h *CommentHandler) GetByID(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	commentID, ok := bindID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.GetByID(c.Request.Context(), id, commentID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, comment)
}

// Update 修改评论
// @Summary 修改评论
// @Description 作者本人或 admin/project_manager
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Param request body dto.CommentUpdateRequest true "评论内容"
// @Success 200 {object} utils.Response{data=dto.CommentResponse}
// @Router /api/v1/comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	commentID, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), id, commentID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, comment)
}

// Delete 删除评论
// @Summary 删除评论
// @Description 作者本人或 admin/project_manager
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	commentID, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id, commentID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Comment deleted", nil)
}
