package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/database"
	pkgErrors "collabtrack/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return NewStore(db)
}

func createUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	email := username + "@example.com"
	u := &model.User{Username: username, Email: &email, Role: "team_member", AuthProvider: "local", Status: 1}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func TestUserRepositoryDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUser(t, s, "alice")

	email := "other@example.com"
	err := s.Users.Create(ctx, &model.User{Username: "alice", Email: &email, Role: "team_member"})
	assert.True(t, errors.Is(err, pkgErrors.ErrAlreadyExists))

	_, err = s.Users.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, pkgErrors.ErrNotFound))
}

func TestWorkspaceMemberUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	ws := &model.Workspace{Name: "Eng", CreatedBy: alice.ID}
	require.NoError(t, s.Workspaces.Create(ctx, ws))

	m := &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: alice.ID, MemberRole: "admin", JoinedAt: time.Now()}
	require.NoError(t, s.WorkspaceMembers.Create(ctx, m))

	dup := &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: alice.ID, MemberRole: "member", JoinedAt: time.Now()}
	err := s.WorkspaceMembers.Create(ctx, dup)
	assert.True(t, errors.Is(err, pkgErrors.ErrAlreadyMember))

	members, err := s.WorkspaceMembers.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].User.Username)
}

func TestSoleAdminWorkspaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	solo := &model.Workspace{Name: "Solo", CreatedBy: alice.ID}
	shared := &model.Workspace{Name: "Shared", CreatedBy: alice.ID}
	require.NoError(t, s.Workspaces.Create(ctx, solo))
	require.NoError(t, s.Workspaces.Create(ctx, shared))

	now := time.Now()
	for _, m := range []*model.WorkspaceMember{
		{WorkspaceID: solo.ID, UserID: alice.ID, MemberRole: "admin", JoinedAt: now},
		{WorkspaceID: solo.ID, UserID: bob.ID, MemberRole: "member", JoinedAt: now},
		{WorkspaceID: shared.ID, UserID: alice.ID, MemberRole: "admin", JoinedAt: now},
		{WorkspaceID: shared.ID, UserID: bob.ID, MemberRole: "admin", JoinedAt: now},
	} {
		require.NoError(t, s.WorkspaceMembers.Create(ctx, m))
	}

	ids, err := s.WorkspaceMembers.SoleAdminWorkspaces(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{solo.ID}, ids)

	count, err := s.WorkspaceMembers.CountAdmins(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTaskOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	p := &model.Project{Title: "API", WorkspaceID: 1, CreatedBy: alice.ID, Status: "active"}
	require.NoError(t, s.Projects.Create(ctx, p))

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)
	tasks := []*model.Task{
		{Title: "low", Priority: "low", Status: "pending", ProjectID: p.ID, CreatedBy: alice.ID, AssignedTo: &alice.ID},
		{Title: "high-1", Priority: "high", Status: "pending", ProjectID: p.ID, CreatedBy: alice.ID, AssignedTo: &alice.ID, DueDate: &later},
		{Title: "medium", Priority: "medium", Status: "done", ProjectID: p.ID, CreatedBy: alice.ID},
		{Title: "high-2", Priority: "high", Status: "done", ProjectID: p.ID, CreatedBy: alice.ID, AssignedTo: &alice.ID, DueDate: &sooner},
	}
	for _, task := range tasks {
		require.NoError(t, s.Tasks.Create(ctx, task))
	}

	list, err := s.Tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	titles := make([]string, 0, len(list))
	for _, task := range list {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"high-1", "high-2", "medium", "low"}, titles)

	assigned, err := s.Tasks.ListAssignedTo(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 3)
	assert.Equal(t, "high-2", assigned[0].Title)
	assert.Equal(t, "high-1", assigned[1].Title)
	assert.Equal(t, "low", assigned[2].Title)
	require.NotNil(t, assigned[0].Project)
	assert.Equal(t, "API", assigned[0].Project.Title)

	stats, err := s.Tasks.StatsByProjects(ctx, []int64{p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats[p.ID].Total)
	assert.Equal(t, int64(2), stats[p.ID].Done)
}

func TestTransactionRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Store) error {
		email := "x@example.com"
		if err := tx.Users.Create(ctx, &model.User{Username: "x", Email: &email, Role: "team_member"}); err != nil {
			return err
		}
		return pkgErrors.ErrIncompleteWorkspaceCreation
	})
	assert.True(t, errors.Is(err, pkgErrors.ErrIncompleteWorkspaceCreation))

	_, err = s.Users.FindByUsername(ctx, "x")
	assert.True(t, errors.Is(err, pkgErrors.ErrNotFound))
}

func TestDeleteMissingRowIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	assert.True(t, errors.Is(s.Comments.Delete(ctx, 1), pkgErrors.ErrNotFound))
	assert.True(t, errors.Is(s.ProjectMembers.Delete(ctx, 1, 1), pkgErrors.ErrNotFound))
	assert.True(t, errors.Is(s.WorkspaceMembers.Delete(ctx, 1, 1), pkgErrors.ErrNotFound))
}

func TestDBErrorTranslation(t *testing.T) {
	assert.True(t, errors.Is(dbError(context.DeadlineExceeded, "x"), pkgErrors.ErrUpstreamUnavailable))
	appErr, ok := pkgErrors.As(dbError(errors.New("syntax error"), "x"))
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeDatabaseError, appErr.Code)
	assert.Nil(t, dbError(nil, "x"))
}

func TestCountAdminsLocksAdminRows(t *testing.T) {
	// DryRun 只生成 SQL, 不连接数据库
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=5432 user=collabtrack dbname=collabtrack sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))

	_, err = NewWorkspaceMemberRepository(db).CountAdmins(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "FOR UPDATE")
	assert.Contains(t, statements[0], "member_role")
	assert.NotContains(t, statements[0], "count(")
}
