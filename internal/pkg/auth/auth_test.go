package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgErrors "collabtrack/pkg/errors"
)

var (
	admin  = Identity{ID: 1, Username: "alice", Role: RoleAdmin}
	pm     = Identity{ID: 2, Username: "paul", Role: RoleProjectManager}
	member = Identity{ID: 3, Username: "bob", Role: RoleTeamMember}
)

func TestMatch(t *testing.T) {
	cases := []struct {
		have Permission
		need Permission
		want bool
	}{
		{"*", "project:view", true},
		{"project:*", "project:view", true},
		{"project:*", "project:member:manage", true},
		{"project:*", "task:view", false},
		{"project:view", "project:view", true},
		{"project:view", "project:update", false},
		{"workspace:member:add", "workspace:member", false},
		{"workspace:member", "workspace:member:add", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, match(c.have, c.need), "%s vs %s", c.have, c.need)
	}
}

func TestAllowChecksEveryPermission(t *testing.T) {
	// 第一条不匹配时要继续看后续权限
	assert.True(t, allow([]Permission{"task:*", "user:list"}, PermUserList))
	assert.False(t, allow(nil, PermUserList))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleProjectManager, NormalizeRole("manager"))
	assert.Equal(t, RoleProjectManager, NormalizeRole(" Project_Manager "))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleTeamMember, NormalizeRole("team_member"))
	assert.Equal(t, RoleTeamMember, NormalizeRole("superuser"))
	assert.True(t, ValidRole("manager"))
	assert.False(t, ValidRole("root"))
}

func TestAuthorizeDecisionTable(t *testing.T) {
	cases := []struct {
		name string
		id   Identity
		perm Permission
		res  Resource
		want bool
	}{
		{"admin creates project", admin, PermProjectCreate, Resource{Kind: KindProject}, true},
		{"pm creates project", pm, PermProjectCreate, Resource{Kind: KindProject}, true},
		{"team member creates project", member, PermProjectCreate, Resource{Kind: KindProject}, false},
		{"team member updates project even as member", member, PermProjectUpdate, Resource{Kind: KindProject, ProjectMember: true}, false},

		{"admin views any project", admin, PermProjectView, Resource{Kind: KindProject}, true},
		{"pm lists all projects", pm, PermProjectListAll, Resource{Kind: KindProject}, true},
		{"member views own project", member, PermProjectView, Resource{Kind: KindProject, ProjectMember: true}, true},
		{"member views foreign project", member, PermProjectView, Resource{Kind: KindProject}, false},
		{"member manages project members", member, PermProjectMemberManage, Resource{Kind: KindProject, ProjectMember: true}, false},
		{"pm manages project members", pm, PermProjectMemberManage, Resource{Kind: KindProject}, true},

		{"admin does not read foreign workspace", admin, PermWorkspaceView, Resource{Kind: KindWorkspace}, false},
		{"workspace viewer reads workspace", member, PermWorkspaceView, Resource{Kind: KindWorkspace, WorkspaceRole: "viewer"}, true},
		{"workspace member cannot update", member, PermWorkspaceUpdate, Resource{Kind: KindWorkspace, WorkspaceRole: "member"}, false},
		{"workspace admin updates", member, PermWorkspaceUpdate, Resource{Kind: KindWorkspace, WorkspaceRole: "admin"}, true},
		{"workspace admin adds member", member, PermWorkspaceMemberAdd, Resource{Kind: KindWorkspace, WorkspaceRole: "admin"}, true},
		{"global admin deletes workspace", admin, PermWorkspaceDelete, Resource{Kind: KindWorkspace}, true},
		{"pm cannot delete workspace", pm, PermWorkspaceDelete, Resource{Kind: KindWorkspace}, false},

		{"member creates task in own project", member, PermTaskCreate, Resource{Kind: KindTask, ProjectMember: true}, true},
		{"member updates task in foreign project", member, PermTaskUpdate, Resource{Kind: KindTask}, false},
		{"pm deletes any task", pm, PermTaskDelete, Resource{Kind: KindTask}, true},

		{"author updates comment", member, PermCommentUpdate, Resource{Kind: KindComment, OwnerID: member.ID}, true},
		{"other member updates comment", member, PermCommentUpdate, Resource{Kind: KindComment, OwnerID: 99, ProjectMember: true}, false},
		{"admin deletes comment", admin, PermCommentDelete, Resource{Kind: KindComment, OwnerID: 99}, true},
		{"pm deletes comment", pm, PermCommentDelete, Resource{Kind: KindComment, OwnerID: 99}, true},
		{"member comments on readable project", member, PermCommentCreate, Resource{Kind: KindComment, ProjectMember: true}, true},
		{"member comments on unreadable project", member, PermCommentCreate, Resource{Kind: KindComment}, false},

		{"pm lists users", pm, PermUserList, Resource{Kind: KindUser}, true},
		{"pm cannot delete users", pm, PermUserDelete, Resource{Kind: KindUser, TargetUserID: 9}, false},
		{"admin deletes other user", admin, PermUserDelete, Resource{Kind: KindUser, TargetUserID: 9}, true},
		{"member lists users", member, PermUserList, Resource{Kind: KindUser}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := Authorize(c.id, c.perm, c.res)
			assert.Equal(t, c.want, d.Allowed, "rule=%s", d.Rule)
			if c.want {
				assert.NoError(t, d.Err())
			} else {
				assert.True(t, errors.Is(d.Err(), pkgErrors.ErrAccessDenied))
			}
		})
	}
}

func TestAuthorizeSelfActionBeforeGlobalRole(t *testing.T) {
	d := Authorize(admin, PermUserDelete, Resource{Kind: KindUser, TargetUserID: admin.ID})
	assert.False(t, d.Allowed)
	assert.True(t, errors.Is(d.Err(), pkgErrors.ErrSelfAction))

	d = Authorize(admin, PermUserUpdateRole, Resource{Kind: KindUser, TargetUserID: admin.ID})
	assert.True(t, errors.Is(d.Err(), pkgErrors.ErrSelfAction))

	d = Authorize(member, PermWorkspaceMemberRemove, Resource{Kind: KindWorkspace, WorkspaceRole: "admin", TargetUserID: member.ID})
	assert.True(t, errors.Is(d.Err(), pkgErrors.ErrSelfAction))
}

func TestAuthorizeGlobalRoleWinsOverResourceDenial(t *testing.T) {
	for _, perm := range []Permission{PermProjectView, PermTaskUpdate, PermCommentUpdate} {
		d := Authorize(pm, perm, Resource{OwnerID: 42})
		assert.True(t, d.Allowed, "perm=%s", perm)
	}
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	res := Resource{Kind: KindProject, ID: 7, ProjectMember: true}
	first := Authorize(member, PermProjectView, res)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Authorize(member, PermProjectView, res))
	}
	assert.Equal(t, Resource{Kind: KindProject, ID: 7, ProjectMember: true}, res)
}

func TestWorkspaceReadRequiresMembershipForEveryRole(t *testing.T) {
	for _, id := range []Identity{admin, pm, member} {
		for _, role := range []string{"", "viewer", "member", "admin"} {
			d := Authorize(id, PermWorkspaceView, Resource{Kind: KindWorkspace, WorkspaceRole: role})
			assert.Equal(t, role != "", d.Allowed, "role=%s member_role=%q", id.Role, role)
		}
	}
}
