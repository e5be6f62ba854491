package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type fakeUserStore struct {
	nextID      int64
	users       map[string]model.User
	profiles    map[int64]model.Profile
	addresses   map[int64]model.Address
	professions map[string]model.Profession
	attached    map[int64][]int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:       map[string]model.User{},
		profiles:    map[int64]model.Profile{},
		addresses:   map[int64]model.Address{},
		professions: map[string]model.Profession{},
		attached:    map[int64][]int64{},
	}
}

func (f *fakeUserStore) InTx(_ context.Context, fn func(repository.SignupOps) error) error {
	return fn(f)
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash, role string) (model.User, error) {
	if _, exists := f.users[email]; exists {
		return model.User{}, apierror.Conflict("email")
	}
	f.nextID++
	u := model.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, Role: role}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) CreateAddress(_ context.Context, a model.Address) (model.Address, error) {
	f.nextID++
	a.ID = f.nextID
	f.addresses[a.ID] = a
	return a, nil
}

func (f *fakeUserStore) CreateProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	if p.Siret != nil {
		for _, existing := range f.profiles {
			if existing.Siret != nil && *existing.Siret == *p.Siret {
				return model.Profile{}, apierror.Conflict("siret")
			}
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.profiles[p.UserID] = p
	return p, nil
}

func (f *fakeUserStore) ProfessionsByName(_ context.Context, names []string) ([]model.Profession, error) {
	var out []model.Profession
	for _, name := range names {
		if p, ok := f.professions[strings.ToLower(name)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeUserStore) AttachProfileProfession(_ context.Context, profileID, professionID int64) error {
	f.attached[profileID] = append(f.attached[profileID], professionID)
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) CompleteByID(_ context.Context, id int64) (model.UserWithProfile, error) {
	for _, u := range f.users {
		if u.ID == id {
			view := model.UserWithProfile{UserView: u.View()}
			if p, ok := f.profiles[id]; ok {
				view.Profile = &model.ProfileView{Profile: p}
			}
			return view, nil
		}
	}
	return model.UserWithProfile{}, model.ErrUserNotFound
}

type fakeSessionTokens struct {
	issued []int64
}

func (f *fakeSessionTokens) Issue(_ context.Context, user model.User) (model.TokenPair, error) {
	f.issued = append(f.issued, user.ID)
	return model.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func (f *fakeSessionTokens) Rotate(_ context.Context, _ string) (model.TokenPair, error) {
	return model.TokenPair{}, model.ErrRefreshRejected
}

func (f *fakeSessionTokens) Revoke(_ context.Context, _ string) {}

func newTestAuthService(store *fakeUserStore, tokens *fakeSessionTokens) *AuthService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(store, tokens, bcrypt.MinCost, log)
}

func customerSignup() model.SignupRequest {
	return model.SignupRequest{
		Email:        "jean@example.com",
		Password:     "longenough",
		Name:         "Dupont",
		FirstName:    "Jean",
		AddressLine1: "1 rue de la Paix",
		ZipCode:      "75002",
		City:         "Paris",
		Country:      "France",
	}
}

func TestSignupOpensSession(t *testing.T) {
	store := newFakeUserStore()
	tokens := &fakeSessionTokens{}
	svc := newTestAuthService(store, tokens)

	session, err := svc.Signup(context.Background(), customerSignup(), model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "jean@example.com", session.User.Email)
	assert.NotEmpty(t, session.Tokens.AccessToken)
	assert.Len(t, tokens.issued, 1)
	require.NotNil(t, session.User.Profile)
	assert.Equal(t, "Dupont", session.User.Profile.Name)
}

func TestSignupDuplicateEmailNamesField(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(store, &fakeSessionTokens{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, customerSignup(), model.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, customerSignup(), model.RoleCustomer)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeConflict, apiErr.Code)
	assert.Contains(t, apiErr.Message, "email")
}

func TestSignupEntrepriseRequiresSiret(t *testing.T) {
	svc := newTestAuthService(newFakeUserStore(), &fakeSessionTokens{})

	req := customerSignup()
	_, err := svc.Signup(context.Background(), req, model.RoleEntreprise)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeBadRequest, apiErr.Code)
}

func TestSignupEntrepriseAttachesKnownProfessions(t *testing.T) {
	store := newFakeUserStore()
	store.professions["plombier"] = model.Profession{ID: 7, ProfessionName: "plombier"}
	svc := newTestAuthService(store, &fakeSessionTokens{})

	req := customerSignup()
	req.Siret = "12345678900011"
	req.RaisonSociale = "Dupont SARL"
	req.ProfessionNames = []string{"plombier", "does-not-exist"}

	session, err := svc.Signup(context.Background(), req, model.RoleEntreprise)
	require.NoError(t, err)
	require.NotNil(t, session.User.Profile)
	assert.Len(t, store.attached[session.User.Profile.ID], 1)
}

func TestSigninUnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(store, &fakeSessionTokens{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, customerSignup(), model.RoleCustomer)
	require.NoError(t, err)

	_, errUnknown := svc.Signin(ctx, model.SigninRequest{Email: "nobody@example.com", Password: "whatever"})
	_, errWrong := svc.Signin(ctx, model.SigninRequest{Email: "jean@example.com", Password: "not-the-password"})

	var apiUnknown, apiWrong *apierror.APIError
	require.ErrorAs(t, errUnknown, &apiUnknown)
	require.ErrorAs(t, errWrong, &apiWrong)
	assert.Equal(t, apiUnknown.Code, apiWrong.Code)
	assert.Equal(t, apiUnknown.Message, apiWrong.Message)
	assert.Equal(t, apiUnknown.HTTPStatus, apiWrong.HTTPStatus)
}

func TestSigninSuccess(t *testing.T) {
	store := newFakeUserStore()
	tokens := &fakeSessionTokens{}
	svc := newTestAuthService(store, tokens)
	ctx := context.Background()

	_, err := svc.Signup(ctx, customerSignup(), model.RoleCustomer)
	require.NoError(t, err)

	session, err := svc.Signin(ctx, model.SigninRequest{Email: "Jean@Example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "jean@example.com", session.User.Email)
	assert.Len(t, tokens.issued, 2)
}
