package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合全部仓储, 事务内通过 tx 版本的 Store 访问
type Store struct {
	db *gorm.DB

	Users            UserRepository
	Workspaces       WorkspaceRepository
	WorkspaceMembers WorkspaceMemberRepository
	Projects         ProjectRepository
	ProjectMembers   ProjectMemberRepository
	Tasks            TaskRepository
	Comments         CommentRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:               db,
		Users:            NewUserRepository(db),
		Workspaces:       NewWorkspaceRepository(db),
		WorkspaceMembers: NewWorkspaceMemberRepository(db),
		Projects:         NewProjectRepository(db),
		ProjectMembers:   NewProjectMemberRepository(db),
		Tasks:            NewTaskRepository(db),
		Comments:         NewCommentRepository(db),
	}
}

// Transaction 在同一事务中执行 fn, fn 返回错误时回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return dbError(err, "事务执行失败")
}

// Ping 检查数据库连接
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "获取数据库实例失败")
	}
	return dbError(sqlDB.PingContext(ctx), "数据库连接检查失败")
}
