package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/config"
)

const fixtureYAML = `
users:
  - username: alice
    email: alice@example.com
    password: secret123
    first_name: Alice
    role: admin
  - username: bob
    email: bob@example.com
    password: secret123
    role: team_member
workspaces:
  - name: Eng
    owner: alice
    settings:
      default_view: kanban
    members:
      - username: bob
        role: viewer
    projects:
      - title: API Revamp
        members: [bob]
        tasks:
          - title: Design schema
            priority: high
            assigned_to: bob
          - title: Write docs
`

func TestOpenMemoryWithFixtures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))

	db, err := Open(&config.DatabaseConfig{
		Driver:       "memory",
		DSN:          "file:fixtures_test?mode=memory&cache=shared",
		FixturesFile: path,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	var users int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)

	var ws model.Workspace
	require.NoError(t, db.First(&ws, "name = ?", "Eng").Error)
	assert.Equal(t, "kanban", ws.Settings["default_view"])

	var members []model.WorkspaceMember
	require.NoError(t, db.Where("workspace_id = ?", ws.ID).Order("id").Find(&members).Error)
	require.Len(t, members, 2)
	assert.Equal(t, "admin", members[0].MemberRole)
	assert.Equal(t, "viewer", members[1].MemberRole)

	var tasks []model.Task
	require.NoError(t, db.Order("id").Find(&tasks).Error)
	require.Len(t, tasks, 2)
	assert.Equal(t, "high", tasks[0].Priority)
	assert.Equal(t, "medium", tasks[1].Priority)
	assert.Equal(t, "pending", tasks[1].Status)
	assert.NotNil(t, tasks[0].AssignedTo)

	assert.NoError(t, Ping(context.Background(), db))
}

func TestLoadFixturesRejectsUnknownUser(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Driver: "memory", DSN: "file:fixtures_bad?mode=memory&cache=shared"})
	require.NoError(t, err)

	err = LoadFixtures(context.Background(), db, &Fixtures{
		Workspaces: []FixtureWorkspace{{Name: "Ghost", Owner: "nobody"}},
	})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Workspace{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDialectorForUnknownDriver(t *testing.T) {
	_, err := dialectorFor(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
