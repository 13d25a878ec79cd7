package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collabtrack/internal/pkg/config"
)

// OpenTestDB 返回一个独立的内存 sqlite 库并完成建表, 供各层测试使用
func OpenTestDB() (*gorm.DB, error) {
	return Open(&config.DatabaseConfig{
		Driver:      "memory",
		DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel:    "silent",
		AutoMigrate: true,
	})
}
