package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"collabtrack/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	List(ctx context.Context, keyword, role string, page, pageSize int) ([]*model.User, int64, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return dbError(r.db.WithContext(ctx).Create(user).Error, "创建用户失败")
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return dbError(r.db.WithContext(ctx).Save(user).Error, "更新用户失败")
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return dbError(result.Error, "更新用户角色失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
	return dbError(err, "更新登录时间失败")
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, dbError(err, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, dbError(err, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, dbError(err, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, dbError(err, "查询用户失败")
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, keyword, role string, page, pageSize int) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})

	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like, like)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "统计用户失败")
	}

	offset := (page - 1) * pageSize
	if err := query.Order("username ASC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, dbError(err, "查询用户失败")
	}

	return users, total, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除用户失败")
	}
	if result.RowsAffected == 0 {
		return dbError(gorm.ErrRecordNotFound, "")
	}
	return nil
}
