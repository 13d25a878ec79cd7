package service

import (
	"strings"
	"time"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	pkgErrors "collabtrack/pkg/errors"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseDate 接受 YYYY-MM-DD 或 RFC3339, 空串表示清空
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}
	return nil, pkgErrors.Validation(field, "must be a date (YYYY-MM-DD or RFC3339)")
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.DisplayName(),
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		LastLoginAt:  formatTimePtr(u.LastLoginAt),
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

func toWorkspaceResponse(ws *model.Workspace, memberRole string) *dto.WorkspaceResponse {
	settings := map[string]interface{}(ws.Settings)
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return &dto.WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		CreatedBy:   ws.CreatedBy,
		Settings:    settings,
		MemberRole:  memberRole,
		CreatedAt:   formatTime(ws.CreatedAt),
		UpdatedAt:   formatTime(ws.UpdatedAt),
	}
}

func toWorkspaceMemberResponse(m *model.WorkspaceMember) *dto.WorkspaceMemberResponse {
	resp := &dto.WorkspaceMemberResponse{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		MemberRole:  m.MemberRole,
		JoinedAt:    formatTime(m.JoinedAt),
	}
	if m.User != nil {
		resp.Username = m.User.Username
		resp.FullName = m.User.DisplayName()
		resp.Email = m.User.Email
	}
	return resp
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     formatTimePtr(p.DueDate),
		WorkspaceID: p.WorkspaceID,
		CreatedBy:   p.CreatedBy,
		Status:      p.Status,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	for i := range p.Members {
		resp.Members = append(resp.Members, toProjectMemberResponse(&p.Members[i]))
	}
	for i := range p.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&p.Tasks[i]))
	}
	return resp
}

func toProjectMemberResponse(m *model.ProjectMember) *dto.ProjectMemberResponse {
	resp := &dto.ProjectMemberResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: formatTime(m.CreatedAt),
	}
	if m.User != nil {
		resp.Username = m.User.Username
		resp.FullName = m.User.DisplayName()
		resp.Email = m.User.Email
	}
	return resp
}

func toTaskResponse(t *model.Task) *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		DueDate:     formatTimePtr(t.DueDate),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Project != nil {
		resp.ProjectTitle = t.Project.Title
	}
	return resp
}

func toCommentResponse(c *model.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ProjectID: c.ProjectID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		UserRole:  c.UserRole,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}
