package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserService defines the business logic for back-office accounts
type UserService interface {
	CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

// TokenConfig controls how login tokens are signed.
type TokenConfig struct {
	Secret string
	Expiry time.Duration
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	tokens    TokenConfig
	now       Clock
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, tokens TokenConfig, now Clock) UserService {
	if tokens.Expiry <= 0 {
		tokens.Expiry = 24 * time.Hour
	}
	return &userService{repo: repo, auditRepo: auditRepo, txManager: txManager, tokens: tokens, now: clockOrNow(now)}
}

var (
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

	errInvalidRole = apperror.NewValidationError("invalid role: must be admin, editor, or viewer",
		apperror.FieldError{Field: "role", Message: "must be admin, editor, or viewer"})
	errInvalidEmail     = apperror.NewValidationError("invalid email format", apperror.FieldError{Field: "email", Message: "invalid format"})
	errUsernameTaken    = apperror.NewConflictError("username already exists")
	errEmailTaken       = apperror.NewConflictError("email already exists")
	errCannotDeleteSelf = apperror.NewValidationError("you cannot delete your own account")
)

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(dateTimeLayout),
		UpdatedAt: user.UpdatedAt.Format(dateTimeLayout),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) ensureAvailable(ctx context.Context, username, email string) error {
	if username != "" {
		if _, err := s.repo.GetByUsername(ctx, username); err == nil {
			return errUsernameTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return repoError("User", "load", err)
		}
	}
	if email != "" {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return errEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return repoError("User", "load", err)
		}
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error) {
	if !model.IsValidRole(req.Role) {
		return nil, errInvalidRole
	}
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, errInvalidEmail
	}
	username := strings.TrimSpace(req.Username)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash password", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureAvailable(txCtx, username, email); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, user); err != nil {
			return repoError("User", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreateUser, user.ID.String(), user.Username,
			map[string]interface{}{"email": user.Email, "role": user.Role})
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, repoError("User", "load", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokens.Expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.tokens.Secret))
	if err != nil {
		return nil, apperror.Persistence("failed to generate token", err)
	}

	return &TokenResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt.Format(dateTimeLayout),
		User:      *mapToResponse(user),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := parseID("User", id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, repoError("User", "load", err)
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, repoError("User", "list", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (*UserResponse, error) {
	userID, err := parseID("User", id)
	if err != nil {
		return nil, err
	}
	if req.Role != "" && !model.IsValidRole(req.Role) {
		return nil, errInvalidRole
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.repo.GetByID(txCtx, userID)
		if err != nil {
			return repoError("User", "load", err)
		}

		changes := map[string]interface{}{}
		if req.Role != "" && req.Role != u.Role {
			changes["role"] = req.Role
			u.Role = req.Role
		}
		if username := strings.TrimSpace(req.Username); username != "" && username != u.Username {
			if err := s.ensureAvailable(txCtx, username, ""); err != nil {
				return err
			}
			changes["username"] = username
			u.Username = username
		}
		if email := normalizeEmail(req.Email); email != "" && email != u.Email {
			if !emailRegex.MatchString(email) {
				return errInvalidEmail
			}
			if err := s.ensureAvailable(txCtx, "", email); err != nil {
				return err
			}
			changes["email"] = email
			u.Email = email
		}
		if req.Phone != "" {
			changes["phone"] = req.Phone
			u.Phone = req.Phone
		}
		if req.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return apperror.Persistence("failed to hash password", err)
			}
			changes["password"] = "changed"
			u.Password = string(hashed)
		}

		if err := s.repo.Update(txCtx, u); err != nil {
			return repoError("User", "update", err)
		}
		user = u
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdateUser, u.ID.String(), u.Username, changes)
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	userID, err := parseID("User", id)
	if err != nil {
		return err
	}
	if actorID == userID.String() {
		return errCannotDeleteSelf
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByID(txCtx, userID)
		if err != nil {
			return repoError("User", "load", err)
		}
		if err := s.repo.Delete(txCtx, userID); err != nil {
			return repoError("User", "delete", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDeleteUser, user.ID.String(), user.Username,
			map[string]interface{}{"email": user.Email})
	})
}
