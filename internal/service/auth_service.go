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

// dummyHash is compared against when the account does not exist, so a
// signin attempt costs the same whether or not the email is registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// SignupStore is the slice of the user repository the session issuer
// needs. The transactional part covers user, address, profile and
// profession attachment as one unit.
type SignupStore interface {
	InTx(ctx context.Context, fn func(repository.SignupOps) error) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	CompleteByID(ctx context.Context, id int64) (model.UserWithProfile, error)
}

// SessionTokens is what the issuer needs from the token lifecycle.
type SessionTokens interface {
	Issue(ctx context.Context, user model.User) (model.TokenPair, error)
	Rotate(ctx context.Context, presented string) (model.TokenPair, error)
	Revoke(ctx context.Context, presented string)
}

type AuthService struct {
	users      SignupStore
	tokens     SessionTokens
	bcryptCost int
	log        *slog.Logger
}

func NewAuthService(users SignupStore, tokens SessionTokens, bcryptCost int, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

// Signup registers an account with the given role, creates its profile
// and address in one transaction and opens a session. Duplicate emails
// surface before duplicate sirets when both collide.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest, role string) (model.SessionResponse, error) {
	if err := validateSignup(req, role); err != nil {
		return model.SessionResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.SessionResponse{}, fmt.Errorf("hash password: %w", err)
	}

	var user model.User
	err = s.users.InTx(ctx, func(ops repository.SignupOps) error {
		created, err := ops.CreateUser(ctx, strings.ToLower(strings.TrimSpace(req.Email)), string(hash), role)
		if err != nil {
			return err
		}
		user = created

		address, err := ops.CreateAddress(ctx, model.Address{
			AddressLine1: req.AddressLine1,
			ZipCode:      req.ZipCode,
			City:         req.City,
			Country:      req.Country,
		})
		if err != nil {
			return err
		}

		profile := model.Profile{
			Name:      req.Name,
			FirstName: req.FirstName,
			IsNewbie:  req.IsNewbie,
			UserID:    user.ID,
			AddressID: address.ID,
		}
		if req.Telephone != "" {
			profile.Telephone = &req.Telephone
		}
		if role == model.RoleEntreprise {
			profile.RaisonSociale = &req.RaisonSociale
			profile.Siret = &req.Siret
		}
		created2, err := ops.CreateProfile(ctx, profile)
		if err != nil {
			return err
		}

		// Unknown profession names are skipped, not rejected.
		if len(req.ProfessionNames) > 0 {
			professions, err := ops.ProfessionsByName(ctx, req.ProfessionNames)
			if err != nil {
				return err
			}
			for _, p := range professions {
				if err := ops.AttachProfileProfession(ctx, created2.ID, p.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return model.SessionResponse{}, apiErr
		}
		return model.SessionResponse{}, fmt.Errorf("signup: %w", err)
	}

	return s.openSession(ctx, user)
}

// Signin authenticates by email and password. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, req model.SigninRequest) (model.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
		return model.SessionResponse{}, apierror.InvalidCredentials()
	}
	if err != nil {
		return model.SessionResponse{}, fmt.Errorf("signin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return model.SessionResponse{}, apierror.InvalidCredentials()
	}

	return s.openSession(ctx, user)
}

// Refresh exchanges a refresh token through the rotation state machine.
func (s *AuthService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	return s.tokens.Rotate(ctx, presented)
}

// Logout revokes the presented refresh token. Always succeeds.
func (s *AuthService) Logout(ctx context.Context, presented string) {
	s.tokens.Revoke(ctx, presented)
}

// SessionUser resolves the authenticated user's full session view.
func (s *AuthService) SessionUser(ctx context.Context, userID int64) (model.UserWithProfile, error) {
	view, err := s.users.CompleteByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.UserWithProfile{}, apierror.Unauthenticated("session user no longer exists")
	}
	if err != nil {
		return model.UserWithProfile{}, fmt.Errorf("session user: %w", err)
	}
	return view, nil
}

func (s *AuthService) openSession(ctx context.Context, user model.User) (model.SessionResponse, error) {
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return model.SessionResponse{}, err
	}
	view, err := s.users.CompleteByID(ctx, user.ID)
	if err != nil {
		return model.SessionResponse{}, fmt.Errorf("load session user: %w", err)
	}
	return model.SessionResponse{Tokens: pair, User: view}, nil
}

func validateSignup(req model.SignupRequest, role string) error {
	switch {
	case strings.TrimSpace(req.Email) == "":
		return apierror.BadRequest("email is required", "email")
	case len(req.Password) < 8:
		return apierror.BadRequest("password must be at least 8 characters", "password")
	case strings.TrimSpace(req.Name) == "":
		return apierror.BadRequest("name is required", "name")
	case strings.TrimSpace(req.FirstName) == "":
		return apierror.BadRequest("first name is required", "first_name")
	}
	if role == model.RoleEntreprise {
		if strings.TrimSpace(req.Siret) == "" {
			return apierror.BadRequest("siret is required", "siret")
		}
		if strings.TrimSpace(req.RaisonSociale) == "" {
			return apierror.BadRequest("raison sociale is required", "raison_sociale")
		}
	}
	return nil
}
