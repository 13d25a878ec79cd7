package repository

import "gorm.io/gorm"

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

// WithMembersAndTasks 项目详情/列表附带成员与任务
func WithMembersAndTasks() QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload("Members").Preload("Members.User").Preload("Tasks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(taskPriorityOrder)
		})
	}
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

// taskPriorityOrder 优先级 high > medium > low, 同级按创建时间
const taskPriorityOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, created_at ASC, id ASC"

// taskDueDateOrder 截止日期升序, 无截止日期的排在最后
const taskDueDateOrder = "CASE WHEN due_date IS NULL THEN 1 ELSE 0 END ASC, due_date ASC, id ASC"
