package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/crypto"
	"collabtrack/pkg/constants"
)

// Fixtures memory 驱动的演示数据, 引用关系全部使用用户名
type Fixtures struct {
	Users      []FixtureUser      `yaml:"users"`
	Workspaces []FixtureWorkspace `yaml:"workspaces"`
}

type FixtureUser struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type FixtureWorkspace struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Owner       string                 `yaml:"owner"`
	Settings    map[string]interface{} `yaml:"settings"`
	Members     []FixtureMember        `yaml:"members"`
	Projects    []FixtureProject       `yaml:"projects"`
}

type FixtureMember struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
}

type FixtureProject struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Status      string        `yaml:"status"`
	Owner       string        `yaml:"owner"`
	Members     []string      `yaml:"members"`
	Tasks       []FixtureTask `yaml:"tasks"`
}

type FixtureTask struct {
	Title      string `yaml:"title"`
	Status     string `yaml:"status"`
	Priority   string `yaml:"priority"`
	AssignedTo string `yaml:"assigned_to"`
}

// LoadFixturesFile 读取 YAML 文件并写入数据库
func LoadFixturesFile(ctx context.Context, db *gorm.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取演示数据失败: %w", err)
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("解析演示数据失败: %w", err)
	}
	return LoadFixtures(ctx, db, &fx)
}

// LoadFixtures 在一个事务中写入演示数据
func LoadFixtures(ctx context.Context, db *gorm.DB, fx *Fixtures) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make(map[string]int64, len(fx.Users))
		for _, u := range fx.Users {
			hash, err := crypto.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("用户 %s 密码无效: %w", u.Username, err)
			}
			user := model.User{
				Username:     u.Username,
				PasswordHash: hash,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				Role:         defaultString(u.Role, constants.RoleTeamMember),
				AuthProvider: constants.AuthTypeLocal,
				Status:       constants.StatusEnabled,
			}
			if u.Email != "" {
				email := u.Email
				user.Email = &email
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("写入用户 %s 失败: %w", u.Username, err)
			}
			users[u.Username] = user.ID
		}

		lookup := func(name string) (int64, error) {
			id, ok := users[name]
			if !ok {
				return 0, fmt.Errorf("演示数据引用了未定义的用户: %s", name)
			}
			return id, nil
		}

		for _, w := range fx.Workspaces {
			ownerID, err := lookup(w.Owner)
			if err != nil {
				return err
			}
			ws := model.Workspace{
				Name:        w.Name,
				Description: optional(w.Description),
				CreatedBy:   ownerID,
				Settings:    datatypes.JSONMap(w.Settings),
			}
			if err := tx.Create(&ws).Error; err != nil {
				return err
			}

			members := append([]FixtureMember{{Username: w.Owner, Role: constants.WorkspaceRoleAdmin}}, w.Members...)
			seen := map[int64]bool{}
			for _, m := range members {
				uid, err := lookup(m.Username)
				if err != nil {
					return err
				}
				if seen[uid] {
					continue
				}
				seen[uid] = true
				wm := model.WorkspaceMember{
					WorkspaceID: ws.ID,
					UserID:      uid,
					MemberRole:  defaultString(m.Role, constants.WorkspaceRoleMember),
					JoinedAt:    time.Now().UTC(),
				}
				if err := tx.Create(&wm).Error; err != nil {
					return err
				}
			}

			for _, p := range w.Projects {
				if err := loadProject(tx, ws.ID, ownerID, p, lookup); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func loadProject(tx *gorm.DB, workspaceID, defaultOwner int64, p FixtureProject, lookup func(string) (int64, error)) error {
	owner := defaultOwner
	if p.Owner != "" {
		id, err := lookup(p.Owner)
		if err != nil {
			return err
		}
		owner = id
	}
	project := model.Project{
		Title:       p.Title,
		Description: optional(p.Description),
		WorkspaceID: workspaceID,
		CreatedBy:   owner,
		Status:      defaultString(p.Status, constants.ProjectStatusActive),
	}
	if err := tx.Create(&project).Error; err != nil {
		return err
	}
	for _, name := range p.Members {
		uid, err := lookup(name)
		if err != nil {
			return err
		}
		pm := model.ProjectMember{ProjectID: project.ID, UserID: uid, Role: constants.ProjectRoleMember}
		if err := tx.Create(&pm).Error; err != nil {
			return err
		}
	}
	for _, t := range p.Tasks {
		task := model.Task{
			Title:     t.Title,
			Status:    defaultString(t.Status, constants.TaskStatusPending),
			Priority:  defaultString(t.Priority, constants.TaskPriorityMedium),
			ProjectID: project.ID,
			CreatedBy: owner,
		}
		if t.AssignedTo != "" {
			uid, err := lookup(t.AssignedTo)
			if err != nil {
				return err
			}
			task.AssignedTo = &uid
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
	}
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
