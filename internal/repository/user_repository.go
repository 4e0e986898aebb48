package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dayplan/internal/model"
)

const defaultOwnerName = "Owner"

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureDefault returns the first user, creating the installation owner on
// first run. The API falls back to this user when no identity header is
// present.
func (r *UserRepository) EnsureDefault(ctx context.Context) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Order("id ASC").First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{Name: defaultOwnerName, Timezone: "UTC"}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create default user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find default user: %w", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListNotifiable returns users with a Telegram chat bound.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id IS NOT NULL").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
