package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/helpers"
	"github.com/wanderbay/wanderbay-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users     models.UserRepo
	jwtSecret string
	jwtTTL    time.Duration
	logger    *slog.Logger
}

func NewUserService(users models.UserRepo, jwtSecret string, jwtTTL time.Duration, logger *slog.Logger) *UserService {
	return &UserService{users: users, jwtSecret: jwtSecret, jwtTTL: jwtTTL, logger: logger}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what login and register hand back to the client: the signed
// token plus the sanitized user document.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (us *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, apperr.BadRequest("invalid registration data").WithDetails(err.Error())
	}
	if !helpers.IsPasswordStrong(input.Password) {
		return nil, apperr.BadRequest("password must be at least 8 characters and mix upper, lower, digit and symbol")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := us.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("an account with this email already exists")
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		FullName: strings.TrimSpace(input.FullName),
		Email:    email,
		Bookings: []primitive.ObjectID{},
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if err := user.BeforeCreate(); err != nil {
		return nil, err
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := us.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := helpers.GenerateToken(us.jwtSecret, created.ID.Hex(), created.Role, created.Email, us.jwtTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: created}, nil
}

func (us *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, apperr.BadRequest("invalid login data").WithDetails(err.Error())
	}

	user, err := us.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	// Same response for unknown email and bad password.
	if user == nil || !user.CheckPassword(input.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := helpers.GenerateToken(us.jwtSecret, user.ID.Hex(), user.Role, user.Email, us.jwtTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (us *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

type UpdateProfileInput struct {
	Username    string `json:"username,omitempty" validate:"omitempty,min=3"`
	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	AvatarData  string `json:"avatar_data,omitempty"`
	Password    string `json:"password,omitempty"`
}

func (us *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*models.User, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, apperr.BadRequest("invalid profile data").WithDetails(err.Error())
	}
	user, err := us.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		user.Username = strings.TrimSpace(input.Username)
	}
	if input.FullName != "" {
		user.FullName = strings.TrimSpace(input.FullName)
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.Password != "" {
		if !helpers.IsPasswordStrong(input.Password) {
			return nil, apperr.BadRequest("password must be at least 8 characters and mix upper, lower, digit and symbol")
		}
		if err := user.SetPassword(input.Password); err != nil {
			return nil, err
		}
	}
	if input.AvatarData != "" {
		urls, _, err := uploadWithTimeout(ctx, []string{input.AvatarData}, helpers.AvatarFolder)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = urls[0]
	}
	user.UpdatedAt = time.Now()

	if err := us.users.ReplaceUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context, search string, opts models.ListOptions) ([]*models.User, int64, error) {
	if opts.Limit <= 0 {
		return nil, 0, apperr.BadRequest("invalid limit")
	}
	return us.users.ListUsers(ctx, search, opts)
}

func (us *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if _, err := us.GetProfile(ctx, id); err != nil {
		return err
	}
	return us.users.DeleteUser(ctx, id)
}
