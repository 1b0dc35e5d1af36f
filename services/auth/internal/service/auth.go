package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrConflict     = errors.New("conflict")     // 409
)

const minPasswordLen = 6

type AuthService struct {
	Repo          *repo.GormRepo
	Hasher        hash.Hasher
	JWTSecret     []byte
	RefreshSecret []byte
	Now           func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(in.Name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// Register creates a shopper account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Role = identity.RoleUser
	return s.create(ctx, in)
}

// RegisterAdmin creates an admin. The first admin may register freely; after
// that only an admin caller may add another.
func (s *AuthService) RegisterAdmin(ctx context.Context, caller *identity.Identity, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register_admin")

	admins, err := s.Repo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		l.Error("register_admin_error", "status", 500, "error", err)
		return nil, err
	}
	if admins > 0 && (caller == nil || !caller.IsAdmin()) {
		l.Warn("register_admin_error", "status", 403, "reason", "admin already exists")
		return nil, fmt.Errorf("%w: only an admin can register another admin", ErrForbidden)
	}
	in.Role = identity.RoleAdmin
	return s.create(ctx, in)
}

func (s *AuthService) create(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateRegister(in); err != nil {
		l.Warn("register_error", "status", 400, "reason", err.Error())
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         in.Role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exists")
			return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}
	l.Info("register_success", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) CountUsers(ctx context.Context) (int64, error) {
	return s.Repo.CountByRole(ctx, identity.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		l.Warn("login_failed", "status", 401, "reason", "unknown email")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !s.Hasher.Check(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, rt, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if err := s.Repo.SaveRefresh(ctx, rt); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, err
	}
	l.Info("login_success", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates a refresh token and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.ParseRefresh(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	user, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	pair, next, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefresh(ctx, claims.ID, refreshToken, next, s.now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrTokenRevoked) {
			l.Warn("refresh_failed", "status", 401, "reason", err.Error(), "user_id", user.ID)
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	l.Info("refresh_success", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	return s.Repo.RevokeRefresh(ctx, refreshToken)
}

func (s *AuthService) issue(user *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := s.now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)
	sub := user.ID.String()

	access, err := tokens.SignAccess(s.JWTSecret, tokens.AccessClaims{
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	if err != nil {
		return nil, nil, err
	}

	jti := tokens.NewJTI()
	refresh, err := tokens.SignRefresh(s.RefreshSecret, tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	})
	if err != nil {
		return nil, nil, err
	}

	pair := &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		RefreshJTI:   jti,
		Role:         user.Role,
		UserID:       sub,
	}
	rt := &models.RefreshToken{
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		ExpiresAt: refreshExp,
	}
	return pair, rt, nil
}
