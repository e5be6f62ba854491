package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type UserService struct {
	users      *repository.UserRepository
	bcryptCost int
	log        *slog.Logger
}

func NewUserService(users *repository.UserRepository, bcryptCost int, log *slog.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, log: log}
}

// Create registers a bare account with an explicit role. Admin only;
// regular accounts come in through signup.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.UserView, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return model.UserView{}, apierror.BadRequest("email is required", "email")
	}
	if len(req.Password) < 8 {
		return model.UserView{}, apierror.BadRequest("password must be at least 8 characters", "password")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case model.RoleCustomer, model.RoleEntreprise, model.RoleAdmin:
	default:
		return model.UserView{}, apierror.BadRequest("unknown role", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	var user model.User
	err = s.users.InTx(ctx, func(ops repository.SignupOps) error {
		created, err := ops.CreateUser(ctx, email, string(hash), role)
		user = created
		return err
	})
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return model.UserView{}, apiErr
		}
		return model.UserView{}, fmt.Errorf("create user: %w", err)
	}
	return user.View(), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.UserWithProfile, error) {
	return s.users.CompleteByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.UserView, error) {
	return s.users.List(ctx)
}

// Delete removes the user and everything hanging off the account in one
// transaction. Projects the user ordered disappear with their tasks,
// estimates and invoices; tasks merely assigned to the user are
// unassigned instead.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
