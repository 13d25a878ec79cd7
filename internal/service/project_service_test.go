package service

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/dto"
	"collabtrack/internal/pkg/auth"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

func projectTitles(t *testing.T, env *testEnv, id auth.Identity) []string {
	t.Helper()
	list, err := env.projects.List(context.Background(), id)
	require.NoError(t, err)
	return lo.Map(list, func(p *dto.ProjectResponse, _ int) string { return p.Title })
}

func TestProjectVisibilityFollowsMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", constants.RoleAdmin)
	bob := env.user(t, "bob", constants.RoleTeamMember)
	ws := env.workspace(t, alice, "Eng")

	p := env.project(t, alice, ws.ID, "API Revamp")
	assert.Empty(t, projectTitles(t, env, bob))

	_, created, err := env.projects.AddMember(ctx, alice, p.ID, &dto.ProjectMemberAddRequest{UserID: bob.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"API Revamp"}, projectTitles(t, env, bob))

	// 重复添加按成功处理
	_, created, err = env.projects.AddMember(ctx, alice, p.ID, &dto.ProjectMemberAddRequest{UserID: bob.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"API Revamp"}, projectTitles(t, env, bob))

	require.NoError(t, env.projects.RemoveMember(ctx, alice, p.ID, bob.ID))
	assert.Empty(t, projectTitles(t, env, bob))

	_, err = env.projects.GetByID(ctx, bob, p.ID)
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)
}

func TestGlobalRolesListEveryProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", constants.RoleAdmin)
	paul := env.user(t, "paul", constants.RoleProjectManager)
	ws := env.workspace(t, alice, "Eng")
	env.project(t, alice, ws.ID, "Beta")
	env.project(t, alice, ws.ID, "Alpha")

	assert.Equal(t, []string{"Alpha", "Beta"}, projectTitles(t, env, paul))
	assert.Equal(t, []string{"Alpha", "Beta"}, projectTitles(t, env, alice))
}

func TestTeamMemberCannotCreateProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carol := env.user(t, "carol", constants.RoleTeamMember)
	ws := env.workspace(t, carol, "Carol's")

	_, err := env.projects.Create(ctx, carol, &dto.ProjectCreateRequest{Title: "Side Project", WorkspaceID: ws.ID})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	// 无权限时不暴露字段错误
	_, err = env.projects.Create(ctx, carol, &dto.ProjectCreateRequest{})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	projects, err := env.store.Projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	paul := env.user(t, "paul", constants.RoleProjectManager)

	cases := []struct {
		req   dto.ProjectCreateRequest
		field string
	}{
		{dto.ProjectCreateRequest{WorkspaceID: 1}, "title"},
		{dto.ProjectCreateRequest{Title: "X"}, "workspace_id"},
		{dto.ProjectCreateRequest{Title: "X", WorkspaceID: 404}, "workspace_id"},
	}
	for _, c := range cases {
		_, err := env.projects.Create(ctx, paul, &c.req)
		appErr, ok := pkgErrors.As(err)
		require.True(t, ok, "field %s", c.field)
		assert.Equal(t, pkgErrors.ReasonValidation, appErr.Reason)
		assert.Contains(t, appErr.Message, c.field)
	}

	ws := env.workspace(t, paul, "Eng")
	bad := "next tuesday"
	_, err := env.projects.Create(ctx, paul, &dto.ProjectCreateRequest{Title: "X", WorkspaceID: ws.ID, DueDate: &bad})
	appErr, ok := pkgErrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "due_date")
}

func TestCreateProjectReportsFailedMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", constants.RoleAdmin)
	bob := env.user(t, "bob", constants.RoleTeamMember)
	ws := env.workspace(t, alice, "Eng")

	resp, err := env.projects.Create(ctx, alice, &dto.ProjectCreateRequest{
		Title:       "API Revamp",
		WorkspaceID: ws.ID,
		TeamMembers: []int64{bob.ID, 9999, bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, resp.AddedMembers)
	require.Len(t, resp.FailedMembers, 1)
	assert.Equal(t, int64(9999), resp.FailedMembers[0].UserID)
	assert.Equal(t, "user not found", resp.FailedMembers[0].Reason)

	members, err := env.store.ProjectMembers.ListByProject(ctx, resp.Project.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestProjectUpdateDeleteChecksExistenceFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", constants.RoleAdmin)
	bob := env.user(t, "bob", constants.RoleTeamMember)
	ws := env.workspace(t, alice, "Eng")
	p := env.project(t, alice, ws.ID, "API Revamp", bob.ID)

	title := "Renamed"
	_, err := env.projects.Update(ctx, bob, 404, &dto.ProjectUpdateRequest{Title: &title})
	assertErrIs(t, err, pkgErrors.ErrNotFound)
	_, err = env.projects.Update(ctx, bob, p.ID, &dto.ProjectUpdateRequest{Title: &title})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	status := constants.ProjectStatusCompleted
	updated, err := env.projects.Update(ctx, alice, p.ID, &dto.ProjectUpdateRequest{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, constants.ProjectStatusCompleted, updated.Status)

	assertErrIs(t, env.projects.Delete(ctx, bob, p.ID), pkgErrors.ErrAccessDenied)
	require.NoError(t, env.projects.Delete(ctx, alice, p.ID))
	assertErrIs(t, env.projects.Delete(ctx, alice, p.ID), pkgErrors.ErrNotFound)
}

func TestProjectAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", constants.RoleAdmin)
	bob := env.user(t, "bob", constants.RoleTeamMember)
	ws := env.workspace(t, alice, "Eng")
	p := env.project(t, alice, ws.ID, "API Revamp", bob.ID)
	env.project(t, alice, ws.ID, "Hidden")

	for _, status := range []string{"done", "todo", "completed", "in_progress"} {
		_, err := env.tasks.Create(ctx, alice, &dto.TaskCreateRequest{Title: status, ProjectID: p.ID, Status: status})
		require.NoError(t, err)
	}

	stats, err := env.projects.Analytics(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProjects)
	assert.Equal(t, 1, stats.ActiveProjects)
	require.Len(t, stats.Projects, 1)
	assert.Equal(t, int64(4), stats.Projects[0].TotalTasks)
	assert.Equal(t, int64(2), stats.Projects[0].DoneTasks)
	assert.Equal(t, 50.0, stats.Projects[0].Progress)
	assert.Equal(t, int64(1), stats.Projects[0].MemberCount)
	assert.Equal(t, 50.0, stats.AverageProgress)

	all, err := env.projects.Analytics(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalProjects)
	assert.Equal(t, 25.0, all.AverageProgress)
}

func TestProjectMemberManagementNeedsGlobalRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", constants.RoleAdmin)
	bob := env.user(t, "bob", constants.RoleTeamMember)
	carol := env.user(t, "carol", constants.RoleTeamMember)
	ws := env.workspace(t, alice, "Eng")
	p := env.project(t, alice, ws.ID, "API Revamp", bob.ID)

	_, _, err := env.projects.AddMember(ctx, bob, p.ID, &dto.ProjectMemberAddRequest{UserID: carol.ID})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	members, err := env.projects.ListMembers(ctx, bob, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Username)

	lead, err := env.projects.UpdateMemberRole(ctx, alice, p.ID, bob.ID, &dto.ProjectMemberUpdateRequest{Role: constants.ProjectRoleLead})
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectRoleLead, lead.Role)

	assertErrIs(t, env.projects.RemoveMember(ctx, alice, p.ID, carol.ID), pkgErrors.ErrNotFound)
}
