package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/hash"
	jwthelp "github.com/Skotchmaster/food_delivery/pkg/jwt"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type UserService struct {
	Store         UserStore
	AccessSecret  []byte
	RefreshSecret []byte
	Bus           *events.Bus
}

var errBadCredentials = newErr(ErrUnauthorized, "invalid username or password")

func userNotFound() error { return newErr(ErrNotFound, "user not found") }

func (s *UserService) publish(ctx context.Context, typ string, u *models.User) {
	if s.Bus == nil {
		return
	}
	s.Bus.Users.Publish(ctx, events.UserEvent{Type: typ, ID: u.ID, Username: u.Username, Role: u.Role, At: time.Now().UTC()})
}

func (s *UserService) ensureFree(ctx context.Context, username, email, exceptID string) error {
	taken, err := s.Store.UserTaken(ctx, username, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return newErr(ErrConflict, "username or email address already in use")
	}
	return nil
}

// Register creates an account. Only an admin caller may choose the role.
func (s *UserService) Register(ctx context.Context, actor Actor, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	role := RoleUser
	if req.Role != "" && req.Role != RoleUser {
		if !actor.IsAdmin() {
			return nil, newErr(ErrForbidden, "only admins may assign roles")
		}
		role = req.Role
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.EmailAddress))
	if err := s.ensureFree(ctx, username, email, ""); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	u := &models.User{
		FullName:     req.FullName,
		Username:     username,
		EmailAddress: email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newErr(ErrConflict, "username or email address already in use")
		}
		return nil, err
	}
	l.Info("user_registered", "user_id", u.ID)
	s.publish(ctx, events.UserRegistered, u)
	return u, nil
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*models.User, *tokens.Pair, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, nil, err
	}
	u, err := s.Store.GetUserByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, errBadCredentials
		}
		return nil, nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, nil, errBadCredentials
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.UserLoggedIn, u)
	return u, pair, nil
}

func (s *UserService) newPair(u *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(AccessTTL)
	access, err := tokens.SignAccess(s.AccessSecret, u.ID, u.Role, accessExp)
	if err != nil {
		return nil, nil, err
	}

	jti := jwthelp.NewJTI()
	refreshExp := now.Add(RefreshTTL)
	refresh, err := tokens.SignRefresh(s.RefreshSecret, u.ID, jti, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	rec := &models.RefreshToken{
		UserID:    u.ID,
		TokenHash: jwthelp.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: refreshExp,
	}
	return &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		UserID:       u.ID,
		Role:         u.Role,
	}, rec, nil
}

// IssueTokens signs a fresh access/refresh pair and records the refresh token.
func (s *UserService) IssueTokens(ctx context.Context, u *models.User) (*tokens.Pair, error) {
	pair, rec, err := s.newPair(u)
	if err != nil {
		return nil, err
	}
	if err := s.Store.AddRefreshToken(ctx, rec); err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh rotates refreshToken: the old token is revoked and a new pair is
// issued with the account's current role.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "user.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_error", "reason", "invalid refresh token", "error", err)
		return nil, newErr(ErrUnauthorized, "invalid refresh token")
	}
	u, err := s.Store.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newErr(ErrUnauthorized, "invalid refresh token")
		}
		return nil, err
	}

	pair, rec, err := s.newPair(u)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.RotateRefreshToken(ctx, jwthelp.Sha256Hex(refreshToken), rec); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrTokenRevoked) {
			l.Warn("refresh_error", "reason", "token expired or revoked", "user_id", u.ID)
			return nil, newErr(ErrUnauthorized, "refresh token expired or revoked")
		}
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Store.RevokeRefreshToken(ctx, jwthelp.Sha256Hex(refreshToken))
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Store.ListUsers(ctx)
}

func (s *UserService) getRaw(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, err
	}
	return u, nil
}

func selfOrAdmin(actor Actor, id string) error {
	if actor.ID != id && !actor.IsAdmin() {
		return newErr(ErrForbidden, "not allowed to access another user's account")
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.getRaw(ctx, id)
}

func (s *UserService) Update(ctx context.Context, actor Actor, id string, req transport.PatchUserRequest) (*models.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Role != nil && !actor.IsAdmin() {
		return nil, newErr(ErrForbidden, "only admins may change roles")
	}

	u, err := s.getRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil || req.EmailAddress != nil {
		username, email := u.Username, u.EmailAddress
		if req.Username != nil {
			username = strings.TrimSpace(*req.Username)
		}
		if req.EmailAddress != nil {
			email = strings.ToLower(strings.TrimSpace(*req.EmailAddress))
		}
		if err := s.ensureFree(ctx, username, email, u.ID); err != nil {
			return nil, err
		}
		u.Username, u.EmailAddress = username, email
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Password != nil {
		h, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = h
	}

	if err := s.Store.SaveUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, userNotFound()
		case errors.Is(err, repo.ErrDuplicate):
			return nil, newErr(ErrConflict, "username or email address already in use")
		}
		return nil, err
	}
	s.publish(ctx, events.UserUpdated, u)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := selfOrAdmin(actor, id); err != nil {
		return err
	}
	if err := s.Store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return userNotFound()
		}
		return err
	}
	s.publish(ctx, events.UserDeleted, &models.User{ID: id})
	return nil
}
