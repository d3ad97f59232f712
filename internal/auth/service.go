package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/shared"
	"github.com/relaycrm/relay/internal/subscriptions"
	"github.com/relaycrm/relay/internal/users"
)

// UserStore is the account surface the auth flows need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
	Create(ctx context.Context, u users.User) (users.User, error)
}

// SubscriptionStore resolves the billing record that gates signup.
type SubscriptionStore interface {
	FindActiveByEmail(ctx context.Context, email string) (subscriptions.Subscription, error)
}

// Service wraps authentication business rules. Session establishment runs
// the same gate rules as any other admin-gated request.
type Service struct {
	users  UserStore
	subs   SubscriptionStore
	gate   *authz.Gate
	tokens *TokenManager
	google GoogleVerifier
}

// NewService constructs a new Service.
func NewService(userStore UserStore, subStore SubscriptionStore, gate *authz.Gate, tokens *TokenManager, google GoogleVerifier) *Service {
	return &Service{
		users:  userStore,
		subs:   subStore,
		gate:   gate,
		tokens: tokens,
		google: google,
	}
}

// Session is the result of a successful login.
type Session struct {
	Token    string
	Role     authz.Role
	TenantID string
}

// SignUp provisions the tenant-owning admin account. It is only allowed
// when the email already paid for an active subscription.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (users.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return users.User{}, shared.ErrEmailTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return users.User{}, fmt.Errorf("signup: %w", err)
	}

	sub, err := s.subs.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.User{}, authz.Denied(authz.ReasonNoSubscription, "no active plan found, please pay first")
		}
		return users.User{}, fmt.Errorf("signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, fmt.Errorf("signup: hash password: %w", err)
	}

	return s.users.Create(ctx, users.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           authz.RoleAdmin,
		TenantID:       newTenantID(),
		SubscriptionID: sub.ID,
	})
}

// Login validates credentials, runs the gate and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, shared.ErrInvalidCredentials
	}
	return s.establish(ctx, user)
}

// GoogleLogin verifies the provider credential and establishes a session,
// provisioning the admin account on first verified login.
func (s *Service) GoogleLogin(ctx context.Context, credential string) (Session, error) {
	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		return Session{}, authz.Denied(authz.ReasonUnauthenticated, "google login failed")
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if errors.Is(err, shared.ErrNotFound) {
		sub, serr := s.subs.FindActiveByEmail(ctx, identity.Email)
		if serr != nil {
			return Session{}, authz.Denied(authz.ReasonNoSubscription, "no active plan found, please purchase a plan first")
		}
		// OAuth accounts never authenticate by password; store an
		// unguessable hash so the password path stays closed.
		hash, herr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if herr != nil {
			return Session{}, fmt.Errorf("google login: %w", herr)
		}
		user, err = s.users.Create(ctx, users.User{
			Name:           identity.Name,
			Email:          identity.Email,
			PasswordHash:   string(hash),
			Role:           authz.RoleAdmin,
			TenantID:       newTenantID(),
			SubscriptionID: sub.ID,
		})
	}
	if err != nil {
		return Session{}, fmt.Errorf("google login: %w", err)
	}
	return s.establish(ctx, user)
}

func (s *Service) establish(ctx context.Context, user users.User) (Session, error) {
	actor := user.Actor()
	decision := s.gate.Decide(ctx, &actor, authz.OpLogin, authz.Target{})
	if err := decision.Err(); err != nil {
		return Session{}, err
	}
	token, err := s.tokens.Issue(actor)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Role: user.Role, TenantID: user.TenantID}, nil
}

func newTenantID() string {
	return "tenant_" + uuid.NewString()
}
