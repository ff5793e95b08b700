package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/repo"
)

// UserService implements the administration of crew accounts.
// Users are keyed by employee id; email is an alternate, unique lookup key.
type UserService struct {
	users repo.UserRepo
	authz Authorizer
	log   *slog.Logger
}

// NewUserService constructs a UserService. authz and logger may be nil.
func NewUserService(users repo.UserRepo, authz Authorizer, logger *slog.Logger) *UserService {
	return &UserService{users: users, authz: authz, log: orDiscard(logger)}
}

// Create validates and stores a new user.
// Returns domain.ErrConflict if the id or email is already taken.
func (s *UserService) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const op = "service.UserService.Create"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionUserManage}); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}

	existing, err := s.users.List(ctx)
	if err != nil {
		return domain.User{}, storeErr(op, err)
	}
	for _, e := range existing {
		if e.ID == u.ID {
			return domain.User{}, fmt.Errorf("%s: %w: user %s already exists", op, domain.ErrConflict, u.ID)
		}
		if u.Email != "" && strings.EqualFold(e.Email, u.Email) {
			return domain.User{}, fmt.Errorf("%s: %w: email %s already in use", op, domain.ErrConflict, u.Email)
		}
	}

	if err := s.users.Save(ctx, u); err != nil {
		return domain.User{}, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "user created", "id", u.ID, "role", u.Role)
	return u, nil
}

// Get returns a user by id or, failing that, by email.
// Returns domain.ErrNotFound if neither matches.
func (s *UserService) Get(ctx context.Context, idOrEmail string) (domain.User, error) {
	const op = "service.UserService.Get"

	u, err := s.find(ctx, idOrEmail)
	if err != nil {
		return domain.User{}, storeErr(op, err)
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionUserRead, UserID: u.ID}); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *UserService) find(ctx context.Context, idOrEmail string) (domain.User, error) {
	u, err := s.users.Get(ctx, idOrEmail)
	if err == nil || !errors.Is(err, domain.ErrNotFound) || !strings.Contains(idOrEmail, "@") {
		return u, err
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, idOrEmail) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", idOrEmail, domain.ErrNotFound)
}

// List returns all users ordered by id. Always returns a non-nil slice.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	const op = "service.UserService.List"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionUserManage}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// Update replaces the user stored under id. The id itself cannot change.
func (s *UserService) Update(ctx context.Context, id string, u domain.User) (domain.User, error) {
	const op = "service.UserService.Update"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionUserManage}); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.Get(ctx, id); err != nil {
		return domain.User{}, storeErr(op, err)
	}
	u.ID = id
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}
	if u.Email != "" {
		all, err := s.users.List(ctx)
		if err != nil {
			return domain.User{}, storeErr(op, err)
		}
		for _, e := range all {
			if e.ID != id && strings.EqualFold(e.Email, u.Email) {
				return domain.User{}, fmt.Errorf("%s: %w: email %s already in use", op, domain.ErrConflict, u.Email)
			}
		}
	}
	if err := s.users.Save(ctx, u); err != nil {
		return domain.User{}, storeErr(op, err)
	}
	return u, nil
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	const op = "service.UserService.Delete"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionUserManage}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeErr(op, err)
	}
	s.log.InfoContext(ctx, "user deleted", "id", id)
	return nil
}

func normalizeUser(u domain.User) domain.User {
	u.ID = strings.TrimSpace(u.ID)
	u.Name = strings.TrimSpace(u.Name)
	u.Depot = strings.TrimSpace(u.Depot)
	u.Email = strings.TrimSpace(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	return u
}

// validateUser checks business rules for a user.
func validateUser(u domain.User) error {
	switch {
	case u.ID == "":
		return domain.NewFieldError("id", "is required")
	case u.Name == "":
		return domain.NewFieldError("name", "is required")
	case u.Email != "" && !strings.Contains(u.Email, "@"):
		return domain.NewFieldError("email", "must be an email address")
	case u.Role != domain.RoleAdmin && u.Role != domain.RoleUser:
		return domain.NewFieldError("role", "must be admin or user")
	case u.Status != domain.StatusActive && u.Status != domain.StatusInactive:
		return domain.NewFieldError("status", "must be active or inactive")
	}
	return nil
}
