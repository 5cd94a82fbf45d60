package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const maxPageLimit = 100

type CreateUserInput struct {
	Email        string
	Password     string
	Name         string
	Role         string
	Sex          string
	PhoneNumber  string
	ProfileImage []string
}

type UpdateUserInput struct {
	ID           string
	Email        string
	Name         string
	Role         string
	Sex          string
	PhoneNumber  string
	ProfileImage []string
}

type UserPage struct {
	TotalRows  int64         `json:"totalRows"`
	TotalPages int64         `json:"totalPages"`
	Users      []domain.User `json:"users"`
}

type UserService struct {
	users repository.UserRepository
	cost  int
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Sex == "" || in.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !strongPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(in.Email),
		Password:     string(hash),
		Name:         in.Name,
		Role:         role,
		Sex:          in.Sex,
		PhoneNumber:  in.PhoneNumber,
		ProfileImage: nonNil(in.ProfileImage),
		Type:         domain.AccountLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ListPage returns the 1-based page of users together with paging totals.
func (s *UserService) ListPage(ctx context.Context, page, limit int64) (*UserPage, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: page and limit must be positive", ErrValidation)
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, total, err := s.users.ListPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{
		TotalRows:  total,
		TotalPages: (total + limit - 1) / limit,
		Users:      users,
	}, nil
}

// Update edits a profile. Callers may edit their own profile; admins may edit
// any profile and are the only ones allowed to change a role.
func (s *UserService) Update(ctx context.Context, caller domain.Identity, in UpdateUserInput) (*domain.User, error) {
	if in.ID == "" || in.Email == "" || in.Name == "" || in.Sex == "" || in.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !caller.IsAdmin() && caller.ID != in.ID {
		return nil, ErrForbidden
	}
	id, err := primitive.ObjectIDFromHex(in.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Role != "" && in.Role != user.Role {
		if !caller.IsAdmin() {
			return nil, ErrForbidden
		}
		role, err := normalizeRole(in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	user.Email = strings.TrimSpace(in.Email)
	user.Name = in.Name
	user.Sex = in.Sex
	user.PhoneNumber = in.PhoneNumber
	if len(in.ProfileImage) > 0 {
		user.ProfileImage = in.ProfileImage
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// Delete soft-deletes the user; the document stays for order history.
func (s *UserService) Delete(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.users.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// strongPassword requires at least 6 characters, one of them uppercase.
func strongPassword(p string) bool {
	if utf8.RuneCountInString(p) < 6 {
		return false
	}
	for _, r := range p {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func normalizeRole(role string) (string, error) {
	switch role {
	case "":
		return domain.RoleUser, nil
	case domain.RoleUser, domain.RoleAdmin:
		return role, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, role)
}
