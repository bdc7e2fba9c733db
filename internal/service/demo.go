package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/hash"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

type demoAccount struct {
	passwordHash string
	role         string
}

// DemoService logs in accounts from a fixed credential table. Accounts are
// provisioned on first successful login.
type DemoService struct {
	Users    *UserService
	accounts map[string]demoAccount
}

// parseDemoUsers reads "user:pass[:role],user2:pass2" and hashes passwords.
func parseDemoUsers(spec string) (map[string]demoAccount, error) {
	out := map[string]demoAccount{}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("demo users: malformed entry %q", entry)
		}
		role := RoleUser
		if len(parts) == 3 && parts[2] != "" {
			role = parts[2]
		}
		if role != RoleUser && role != RoleAdmin {
			return nil, fmt.Errorf("demo users: unknown role %q for %s", role, parts[0])
		}
		h, err := hash.HashPassword(parts[1])
		if err != nil {
			return nil, err
		}
		out[parts[0]] = demoAccount{passwordHash: h, role: role}
	}
	return out, nil
}

func NewDemoService(users *UserService, spec string) (*DemoService, error) {
	accounts, err := parseDemoUsers(spec)
	if err != nil {
		return nil, err
	}
	return &DemoService{Users: users, accounts: accounts}, nil
}

func (s *DemoService) Enabled() bool { return len(s.accounts) > 0 }

func (s *DemoService) Login(ctx context.Context, req transport.DemoLoginRequest) (*models.User, *tokens.Pair, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, nil, err
	}
	acc, ok := s.accounts[req.Username]
	if !ok || !hash.CheckPassword(acc.passwordHash, req.Password) {
		return nil, nil, newErr(ErrUnauthorized, "invalid demo credentials")
	}

	u, err := s.Users.Store.GetUserByLogin(ctx, req.Username)
	if errors.Is(err, repo.ErrNotFound) {
		u = &models.User{
			FullName:     req.Username,
			Username:     req.Username,
			EmailAddress: req.Username + "@demo.local",
			PasswordHash: acc.passwordHash,
			Role:         acc.role,
		}
		err = s.Users.Store.CreateUser(ctx, u)
	} else if err == nil && !provisionedFor(u, req) {
		logging.FromContext(ctx).Warn("demo_login_rejected", "reason", "login name held by a registered account", "username", req.Username)
		return nil, nil, newErr(ErrUnauthorized, "invalid demo credentials")
	}
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.Users.IssueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// provisionedFor reports whether u is the account demo login created for req.
// The stored hash is checked rather than compared, since the table is hashed
// again with a fresh salt on every start.
func provisionedFor(u *models.User, req transport.DemoLoginRequest) bool {
	return u.Username == req.Username && hash.CheckPassword(u.PasswordHash, req.Password)
}
