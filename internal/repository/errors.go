package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"gorm.io/gorm"

	pkgErrors "collabtrack/pkg/errors"
)

// dbError 把 gorm/驱动错误转换为业务错误
// 未知错误统一为 ErrDatabaseError, 原始错误只保留在 Err 中用于日志
func dbError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := pkgErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgErrors.ErrNotFound
	case isDuplicateKey(err):
		return pkgErrors.ErrAlreadyExists.WithErr(err)
	case isUnavailable(err):
		return pkgErrors.ErrUpstreamUnavailable.WithErr(fmt.Errorf("%s: %w", msg, err))
	default:
		return pkgErrors.ErrDatabaseError.WithErr(fmt.Errorf("%s: %w", msg, err))
	}
}

// memberError 成员表的唯一约束冲突视为已是成员
func memberError(err error, msg string) error {
	if err != nil && isDuplicateKey(err) {
		return pkgErrors.ErrAlreadyMember.WithErr(err)
	}
	return dbError(err, msg)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容未实现 ErrorTranslator 的驱动
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
