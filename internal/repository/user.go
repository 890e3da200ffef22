package repository

import (
	"context"
	"time"

	"github.com/contactbook/api/internal/model"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail finds a user by email. Callers translate
// gorm.ErrRecordNotFound into a domain error.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")

	logger.DebugWithContext(ctx, "Getting user by email").
		String("email", email).
		Log()

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "User lookup by email failed").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully by email").
		String("email", email).
		Int("user_id", int(user.ID)).
		Duration(duration).
		Log()

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByID")

	logger.DebugWithContext(ctx, "Getting user by ID").
		Int("user_id", int(id)).
		Log()

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Int("user_id", int(id)).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	logger.DebugWithContext(ctx, "Creating new user").
		String("email", user.Email).
		String("username", user.Username).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("email", user.Email).
		Int("user_id", int(user.ID)).
		Duration(duration).
		Log()

	return nil
}

// UpdateRefreshToken stores the current refresh token, nil clears it.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID uint, token *string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			Int("user_id", int(userID)).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "Refresh token update matched no user").
			Int("user_id", int(userID)).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token updated").
		Int("user_id", int(userID)).
		Bool("cleared", token == nil).
		Duration(duration).
		Log()

	return nil
}

// ConfirmEmail marks the account as confirmed
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "ConfirmEmail")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to confirm email").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Email confirmed").
		String("email", email).
		Duration(duration).
		Log()

	return nil
}

// UpdateAvatar stores the public URL of the uploaded avatar
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateAvatar")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("avatar", avatarURL)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update avatar").
			Int("user_id", int(userID)).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Avatar updated").
		Int("user_id", int(userID)).
		String("avatar_url", avatarURL).
		Duration(duration).
		Log()

	return nil
}
