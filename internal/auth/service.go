package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/internal/users"
	pkgAuth "github.com/delizzia/pos-backend/pkg/auth"
	"github.com/delizzia/pos-backend/pkg/auth/session"
	"github.com/delizzia/pos-backend/pkg/clock"
	"github.com/delizzia/pos-backend/pkg/config"
	pkgdb "github.com/delizzia/pos-backend/pkg/db"
	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth and users controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	CreateUser(ctx context.Context, actorRole enums.MemberRole, req CreateUserRequest) (*models.User, error)
	EnsureOwner(ctx context.Context, bootstrap config.BootstrapConfig) (bool, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	CountByRole(ctx context.Context, role enums.MemberRole) (int64, error)
}

type sessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (session.Session, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Session, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Clock          clock.Clock
	Logger         *logger.Logger
}

type service struct {
	users       userRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	clock       clock.Clock
	logg        *logger.Logger
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		clock:       clock.OrReal(params.Clock),
		logg:        logg,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	sess, err := s.session.Start(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.issue(user, sess, now)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	sess, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil || !user.IsActive {
		_ = s.session.Revoke(ctx, sess.AccessID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is not active")
	}
	return s.issue(user, sess, s.clock.Now().UTC())
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	s.logg.Info(s.logg.WithUserID(ctx, claims.UserID.String()), "session revoked")
	return nil
}

// CreateUser adds an account. Only owners may create users.
func (s *service) CreateUser(ctx context.Context, actorRole enums.MemberRole, req CreateUserRequest) (*models.User, error) {
	if actorRole != enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can create users")
	}
	role := req.Role
	if role == "" {
		role = enums.MemberRoleStaff
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": string(role)})
	}
	return s.createUser(ctx, req.Email, req.Password, req.Name, role)
}

// EnsureOwner creates the bootstrap owner when no owner exists yet. It reports whether one was created.
func (s *service) EnsureOwner(ctx context.Context, bootstrap config.BootstrapConfig) (bool, error) {
	if !bootstrap.Enabled() {
		return false, nil
	}
	count, err := s.users.CountByRole(ctx, enums.MemberRoleOwner)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.createUser(ctx, bootstrap.OwnerEmail, bootstrap.OwnerPassword, bootstrap.OwnerName, enums.MemberRoleOwner); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) createUser(ctx context.Context, email, password, name string, role enums.MemberRole) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := security.ValidatePasswordStrength(password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(s.logg.WithActorRole(logCtx, string(user.Role)), "user created")
	return user, nil
}

func (s *service) issue(user *models.User, sess session.Session, now time.Time) (*TokenResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    sess.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := s.clock.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
