package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/shared"
	"github.com/relaycrm/relay/internal/subscriptions"
	"github.com/relaycrm/relay/internal/users"
)

type memoryUsers struct {
	byEmail map[string]users.User
}

func newMemoryUsers(items ...users.User) *memoryUsers {
	s := &memoryUsers{byEmail: make(map[string]users.User)}
	for _, u := range items {
		s.byEmail[u.Email] = u
	}
	return s
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) Create(_ context.Context, u users.User) (users.User, error) {
	if _, exists := m.byEmail[u.Email]; exists {
		return users.User{}, shared.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = "u_" + u.Email
	}
	m.byEmail[u.Email] = u
	return u, nil
}

type memorySubs struct {
	active map[string]subscriptions.Subscription
}

func (m *memorySubs) FindActiveByEmail(_ context.Context, email string) (subscriptions.Subscription, error) {
	sub, ok := m.active[email]
	if !ok {
		return subscriptions.Subscription{}, shared.ErrNotFound
	}
	return sub, nil
}

// gateSubs feeds the gate the same records the auth store holds.
type gateSubs struct {
	subs *memorySubs
}

func (g gateSubs) FindByEmail(ctx context.Context, email string) (authz.Subscription, error) {
	sub, err := g.subs.FindActiveByEmail(ctx, email)
	if err != nil {
		return authz.Subscription{}, err
	}
	return authz.Subscription{
		ID:      sub.ID,
		Email:   sub.Email,
		PlanID:  sub.PlanID,
		EndDate: sub.EndDate,
		Active:  sub.Active,
	}, nil
}

func (g gateSubs) SetActive(_ context.Context, id string, active bool) error {
	for email, sub := range g.subs.active {
		if sub.ID == id {
			sub.Active = active
			g.subs.active[email] = sub
		}
	}
	return nil
}

type noPlans struct{}

func (noPlans) ByID(context.Context, string) (authz.Plan, error) {
	return authz.Plan{}, shared.ErrNotFound
}

type zeroCounter struct{}

func (zeroCounter) CountByTenant(context.Context, string) (int, error) { return 0, nil }

type staticGoogle struct {
	identity GoogleIdentity
	err      error
}

func (g staticGoogle) Verify(context.Context, string) (GoogleIdentity, error) {
	return g.identity, g.err
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeSub(email string) subscriptions.Subscription {
	return subscriptions.Subscription{
		ID:      "sub_" + email,
		Email:   email,
		PlanID:  "plan_basic",
		EndDate: time.Now().UTC().AddDate(0, 6, 0),
		Active:  true,
	}
}

func testService(userStore *memoryUsers, subStore *memorySubs, google GoogleVerifier) *Service {
	if subStore == nil {
		subStore = &memorySubs{active: map[string]subscriptions.Subscription{}}
	}
	gate := authz.NewGate(gateSubs{subs: subStore}, noPlans{}, zeroCounter{}, slog.New(slog.DiscardHandler))
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewService(userStore, subStore, gate, tokens, google)
}

func TestSignUpRequiresPaidSubscription(t *testing.T) {
	svc := testService(newMemoryUsers(), nil, staticGoogle{})

	_, err := svc.SignUp(context.Background(), "Ada", "ada@acme.test", "password123")
	var denial *authz.Denial
	require.ErrorAs(t, err, &denial)
	require.Equal(t, authz.ReasonNoSubscription, denial.Reason)
}

func TestSignUpProvisionsAdminTenant(t *testing.T) {
	userStore := newMemoryUsers()
	subStore := &memorySubs{active: map[string]subscriptions.Subscription{
		"ada@acme.test": activeSub("ada@acme.test"),
	}}
	svc := testService(userStore, subStore, staticGoogle{})

	created, err := svc.SignUp(context.Background(), "Ada", "ada@acme.test", "password123")
	require.NoError(t, err)
	require.Equal(t, authz.RoleAdmin, created.Role)
	require.True(t, strings.HasPrefix(created.TenantID, "tenant_"))
	require.Equal(t, "sub_ada@acme.test", created.SubscriptionID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	userStore := newMemoryUsers(users.User{ID: "u1", Email: "ada@acme.test", Role: authz.RoleAdmin})
	svc := testService(userStore, nil, staticGoogle{})

	_, err := svc.SignUp(context.Background(), "Ada", "ada@acme.test", "password123")
	require.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	subStore := &memorySubs{active: map[string]subscriptions.Subscription{
		"ada@acme.test": activeSub("ada@acme.test"),
	}}
	userStore := newMemoryUsers(users.User{
		ID:           "u1",
		Email:        "ada@acme.test",
		PasswordHash: hashOf(t, "password123"),
		Role:         authz.RoleAdmin,
		TenantID:     "tenant_acme",
	})
	svc := testService(userStore, subStore, staticGoogle{})

	session, err := svc.Login(context.Background(), "ada@acme.test", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, authz.RoleAdmin, session.Role)
	require.Equal(t, "tenant_acme", session.TenantID)
}

func TestLoginWrongPassword(t *testing.T) {
	userStore := newMemoryUsers(users.User{
		ID:           "u1",
		Email:        "ada@acme.test",
		PasswordHash: hashOf(t, "password123"),
		Role:         authz.RoleAdmin,
	})
	svc := testService(userStore, nil, staticGoogle{})

	_, err := svc.Login(context.Background(), "ada@acme.test", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@acme.test", "password123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginAdminWithLapsedSubscriptionDenied(t *testing.T) {
	subStore := &memorySubs{active: map[string]subscriptions.Subscription{}}
	userStore := newMemoryUsers(users.User{
		ID:           "u1",
		Email:        "ada@acme.test",
		PasswordHash: hashOf(t, "password123"),
		Role:         authz.RoleAdmin,
		TenantID:     "tenant_acme",
	})
	svc := testService(userStore, subStore, staticGoogle{})

	_, err := svc.Login(context.Background(), "ada@acme.test", "password123")
	var denial *authz.Denial
	require.ErrorAs(t, err, &denial)
	require.Equal(t, authz.ReasonNoSubscription, denial.Reason)
}

func TestLoginTeamMemberWithoutSubscription(t *testing.T) {
	userStore := newMemoryUsers(users.User{
		ID:           "u2",
		Email:        "pat@acme.test",
		PasswordHash: hashOf(t, "password123"),
		Role:         authz.RoleStaff,
		TenantID:     "tenant_acme",
		DashboardID:  "d1",
	})
	svc := testService(userStore, nil, staticGoogle{})

	session, err := svc.Login(context.Background(), "pat@acme.test", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
}

func TestGoogleLoginProvisionsOnFirstUse(t *testing.T) {
	subStore := &memorySubs{active: map[string]subscriptions.Subscription{
		"ada@acme.test": activeSub("ada@acme.test"),
	}}
	userStore := newMemoryUsers()
	svc := testService(userStore, subStore, staticGoogle{
		identity: GoogleIdentity{Email: "ada@acme.test", Name: "Ada"},
	})

	session, err := svc.GoogleLogin(context.Background(), "credential")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	created, err := userStore.FindByEmail(context.Background(), "ada@acme.test")
	require.NoError(t, err)
	require.Equal(t, authz.RoleAdmin, created.Role)

	// The generated password hash must not verify any guessable input.
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("")))
}

func TestGoogleLoginBadCredential(t *testing.T) {
	svc := testService(newMemoryUsers(), nil, staticGoogle{err: shared.ErrInvalidCredentials})

	_, err := svc.GoogleLogin(context.Background(), "credential")
	var denial *authz.Denial
	require.ErrorAs(t, err, &denial)
	require.Equal(t, authz.ReasonUnauthenticated, denial.Reason)
}

func TestGoogleLoginWithoutSubscription(t *testing.T) {
	svc := testService(newMemoryUsers(), nil, staticGoogle{
		identity: GoogleIdentity{Email: "ada@acme.test", Name: "Ada"},
	})

	_, err := svc.GoogleLogin(context.Background(), "credential")
	var denial *authz.Denial
	require.ErrorAs(t, err, &denial)
	require.Equal(t, authz.ReasonNoSubscription, denial.Reason)
}
