package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/dto"
	"collabtrack/internal/pkg/auth"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

func TestCommentUpdateByOtherUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.user(t, "root", constants.RoleAdmin)
	a := env.user(t, "anna", constants.RoleTeamMember)
	b := env.user(t, "ben", constants.RoleTeamMember)
	ws := env.workspace(t, root, "Eng")
	p := env.project(t, root, ws.ID, "API Revamp", a.ID, b.ID)

	c, err := env.comments.Create(ctx, a, &dto.CommentCreateRequest{Content: "first draft", ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Equal(t, "anna", c.UserName)
	assert.Equal(t, constants.RoleTeamMember, c.UserRole)

	_, err = env.comments.Update(ctx, b, c.ID, &dto.CommentUpdateRequest{Content: "hijack"})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	assertErrIs(t, env.comments.Delete(ctx, b, c.ID), pkgErrors.ErrAccessDenied)

	// 角色提升后下一次请求立即生效
	require.NoError(t, env.store.Users.UpdateRole(ctx, b.ID, constants.RoleAdmin))
	bAdmin := auth.Identity{ID: b.ID, Username: b.Username, Role: auth.RoleAdmin}
	updated, err := env.comments.Update(ctx, bAdmin, c.ID, &dto.CommentUpdateRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestCommentNotFoundBeforeAccessDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.user(t, "ben", constants.RoleTeamMember)

	_, err := env.comments.Update(ctx, b, 404, &dto.CommentUpdateRequest{Content: "x"})
	assertErrIs(t, err, pkgErrors.ErrNotFound)
	assertErrIs(t, env.comments.Delete(ctx, b, 404), pkgErrors.ErrNotFound)
}

func TestCommentTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.user(t, "root", constants.RoleAdmin)
	a := env.user(t, "anna", constants.RoleTeamMember)
	outsider := env.user(t, "olga", constants.RoleTeamMember)
	ws := env.workspace(t, root, "Eng")
	p := env.project(t, root, ws.ID, "API Revamp", a.ID)
	task, err := env.tasks.Create(ctx, a, &dto.TaskCreateRequest{Title: "Schema", ProjectID: p.ID})
	require.NoError(t, err)

	_, err = env.comments.Create(ctx, a, &dto.CommentCreateRequest{Content: "both", ProjectID: &p.ID, TaskID: &task.ID})
	appErr, ok := pkgErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.ReasonValidation, appErr.Reason)

	_, err = env.comments.Create(ctx, a, &dto.CommentCreateRequest{Content: "<script>x</script>", TaskID: &task.ID})
	appErr, ok = pkgErrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "content")

	missing := int64(404)
	_, err = env.comments.Create(ctx, a, &dto.CommentCreateRequest{Content: "hi", TaskID: &missing})
	assertErrIs(t, err, pkgErrors.ErrNotFound)

	_, err = env.comments.Create(ctx, outsider, &dto.CommentCreateRequest{Content: "hi", TaskID: &task.ID})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	created, err := env.comments.Create(ctx, a, &dto.CommentCreateRequest{Content: "<b>looks</b> good", TaskID: &task.ID})
	require.NoError(t, err)
	assert.Equal(t, "looks good", created.Content)
	assert.Nil(t, created.ProjectID)

	list, err := env.comments.List(ctx, a, &dto.CommentListQuery{TaskID: &task.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := env.comments.GetByID(ctx, a, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = env.comments.List(ctx, outsider, &dto.CommentListQuery{ProjectID: &p.ID})
	assertErrIs(t, err, pkgErrors.ErrAccessDenied)

	require.NoError(t, env.comments.Delete(ctx, a, created.ID))
}
