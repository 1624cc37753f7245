package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
	"github.com/iliyamo/salon-reservation/internal/utils"
)

// UserStore is the persistence the user service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ListActive(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint64, p model.UserPatch) error
	Deactivate(ctx context.Context, id uint64) (bool, error)
}

// NewUserInput describes an account to create.
type NewUserInput struct {
	Name     string
	Surname  string
	Username string
	Password string
	Role     model.Role
	Phone    *string
	Photo    *string
}

// UpdateUserInput lists the user fields a caller may change.  Password is
// the new plain-text password.
type UpdateUserInput struct {
	Name     *string
	Surname  *string
	Username *string
	Password *string
	Role     *model.Role
	Phone    *string
	Photo    *string
}

// UserService applies the account role policy:
//   - self-registration always yields a client;
//   - only an admin may create staff or admin accounts or change a role;
//   - staff may create client accounts;
//   - non-admins may only edit their own account.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// Register creates a client account for an anonymous caller.
func (s *UserService) Register(ctx context.Context, in NewUserInput) (*model.User, error) {
	in.Role = model.RoleClient
	return s.create(ctx, in)
}

// Create creates an account on behalf of an authenticated caller.
func (s *UserService) Create(ctx context.Context, in NewUserInput, by Requester) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleClient
	}
	if !in.Role.Valid() {
		return nil, invalid("role", "must be admin, staff or client")
	}
	switch by.Role {
	case model.RoleAdmin:
	case model.RoleStaff:
		if in.Role != model.RoleClient {
			return nil, forbidden("only an admin may create %s accounts", in.Role)
		}
	default:
		return nil, forbidden("not allowed to create accounts")
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUserInput) (*model.User, error) {
	u := &model.User{
		Name:     in.Name,
		Surname:  in.Surname,
		Username: in.Username,
		Role:     in.Role,
		Phone:    in.Phone,
		Photo:    in.Photo,
	}
	err := s.users.Create(ctx, u, in.Password, s.bcryptCost)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflict("username %q is already taken", repository.NormalizeUsername(in.Username))
	}
	if err != nil {
		return nil, err
	}
	log.Info().Uint64("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint64, by Requester) (*model.User, error) {
	if !by.Role.Privileged() && id != by.UserID {
		return nil, forbidden("not allowed to view other accounts")
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, notFound("user %d", id)
	}
	return u, err
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.ListActive(ctx)
}

// Update edits an account.  Role changes are admin-only, including an
// admin changing their own role.
func (s *UserService) Update(ctx context.Context, id uint64, in UpdateUserInput, by Requester) error {
	if by.Role != model.RoleAdmin && id != by.UserID {
		return forbidden("not allowed to edit other accounts")
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return invalid("role", "must be admin, staff or client")
		}
		if by.Role != model.RoleAdmin {
			return forbidden("only an admin may change a role")
		}
	}
	p := model.UserPatch{
		Name:     in.Name,
		Surname:  in.Surname,
		Username: in.Username,
		Role:     in.Role,
		Phone:    in.Phone,
		Photo:    in.Photo,
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		p.PasswordHash = &hash
	}
	err := s.users.Update(ctx, id, p)
	switch {
	case errors.Is(err, repository.ErrNoChange):
		return invalid("body", "no updatable fields supplied")
	case errors.Is(err, repository.ErrUserNotFound):
		return notFound("user %d", id)
	case errors.Is(err, repository.ErrDuplicate):
		return conflict("username is already taken")
	}
	return err
}

// Deactivate soft-deletes an account.  Admins cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, id uint64, by Requester) (bool, error) {
	if by.Role != model.RoleAdmin {
		return false, forbidden("only an admin may deactivate accounts")
	}
	if id == by.UserID {
		return false, conflict("cannot deactivate your own account")
	}
	return s.users.Deactivate(ctx, id)
}
