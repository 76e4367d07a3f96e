package authservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/password"
	"grandaura/internal/repository/memrepo"
	"grandaura/internal/service/authservice"
	"grandaura/internal/service/authzservice"
)

// MockPrincipalStore é uma implementação mock de domain.PrincipalStore
type MockPrincipalStore struct {
	mock.Mock
	role domain.Role
}

func (m *MockPrincipalStore) Role() domain.Role { return m.role }

func (m *MockPrincipalStore) FindByID(ctx context.Context, id string) (domain.Principal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Principal), args.Error(1)
}

func (m *MockPrincipalStore) FindByEmail(ctx context.Context, email string) (domain.Principal, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Principal), args.Error(1)
}

func (m *MockPrincipalStore) FindAll(ctx context.Context) ([]domain.Principal, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Principal), args.Error(1)
}

func (m *MockPrincipalStore) Save(ctx context.Context, p domain.Principal) (domain.Principal, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Principal), args.Error(1)
}

func (m *MockPrincipalStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPrincipalStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newEncoder(t *testing.T) password.Encoder {
	t.Helper()
	enc, err := password.NewBcryptEncoder(bcrypt.MinCost)
	require.NoError(t, err)
	return enc
}

func seed(t *testing.T, stores domain.Stores, enc password.Encoder, role domain.Role, email, raw string, enabled bool) domain.Principal {
	t.Helper()
	hash, err := enc.Encode(raw)
	require.NoError(t, err)
	p, err := stores[role].Save(context.Background(), domain.Principal{Email: email, PasswordHash: hash, Enabled: enabled})
	require.NoError(t, err)
	return p
}

func requireReason(t *testing.T, err error, want apperror.CredentialReason) {
	t.Helper()
	require.Error(t, err)
	reason, ok := apperror.CredentialFailureReason(err)
	require.True(t, ok, "expected credential failure, got %v", err)
	assert.Equal(t, want, reason)
	assert.Equal(t, apperror.InvalidCredentialsMessage, err.Error())
}

func TestAuthenticate_EveryRoleResolvesToItsStore(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())

	for _, role := range domain.AllRoles() {
		email := role.Slug() + "@grandaura.com"
		seed(t, stores, enc, role, email, "secret-"+role.Slug(), true)

		auth, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: email, Password: "secret-" + role.Slug(), Role: role})
		require.NoError(t, err, role)
		assert.Equal(t, role, auth.Role)
		assert.True(t, auth.Enabled)
		assert.Equal(t, email, auth.Email)
	}
}

func TestAuthenticate_DisabledFailsRegardlessOfCredential(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())
	seed(t, stores, enc, domain.RoleCateringManager, "catering@grandaura.com", "catering123", false)

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "catering@grandaura.com", Password: "catering123", Role: domain.RoleCateringManager})
	requireReason(t, err, apperror.ReasonDisabled)

	_, err = svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "catering@grandaura.com", Password: "wrong", Role: domain.RoleCateringManager})
	require.Error(t, err)
	assert.Equal(t, apperror.InvalidCredentialsMessage, err.Error())
}

func TestAuthenticate_UnknownIdentifierIsGeneric(t *testing.T) {
	stores := memrepo.NewStores()
	svc := authservice.NewService(stores, newEncoder(t), authservice.Options{Dispatch: domain.DispatchPriority}, logger.NewNopLogger())

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "nobody@example.com", Password: "x"})
	requireReason(t, err, apperror.ReasonNotFound)

	_, err = svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "nobody@example.com", Password: "x", Role: domain.RoleSystemAdmin})
	requireReason(t, err, apperror.ReasonNotFound)

	_, err = svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "", Password: "x"})
	requireReason(t, err, apperror.ReasonNotFound)
}

func TestAuthenticate_WrongCredentialIsMismatch(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())
	seed(t, stores, enc, domain.RoleHotelOwner, "hotel.owner@grandaura.com", "hotel123", true)

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "hotel.owner@grandaura.com", Password: "hotel124", Role: domain.RoleHotelOwner})
	requireReason(t, err, apperror.ReasonMismatch)
}

func TestAuthenticate_PostedRoleLimitsLookupToThatStore(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{Dispatch: domain.DispatchPriority}, logger.NewNopLogger())
	seed(t, stores, enc, domain.RoleHotelOwner, "hotel.owner@grandaura.com", "hotel123", true)

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "hotel.owner@grandaura.com", Password: "hotel123", Role: domain.RoleSystemAdmin})
	requireReason(t, err, apperror.ReasonNotFound)
}

func TestAuthenticate_GenericFormCustomerDispatch(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{Dispatch: domain.DispatchCustomer}, logger.NewNopLogger())
	seed(t, stores, enc, domain.RoleHotelOwner, "hotel.owner@grandaura.com", "hotel123", true)

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "hotel.owner@grandaura.com", Password: "hotel123"})
	requireReason(t, err, apperror.ReasonNotFound)
}

func TestAuthenticate_PriorityStopsAtFirstStoreHoldingEmail(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{Dispatch: domain.DispatchPriority}, logger.NewNopLogger())

	// Mesmo email em duas coleções; a de maior prioridade (CUSTOMER) decide.
	seed(t, stores, enc, domain.RoleCustomer, "shared@example.com", "customer-pass", true)
	seed(t, stores, enc, domain.RoleFrontDesk, "shared@example.com", "frontdesk-pass", true)

	auth, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "shared@example.com", Password: "customer-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, auth.Role)

	// A credencial da coleção de menor prioridade não é tentada.
	_, err = svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "shared@example.com", Password: "frontdesk-pass"})
	requireReason(t, err, apperror.ReasonMismatch)

	seed(t, stores, enc, domain.RoleEventCoordinator, "coordinator@grandaura.com", "coordinator123", true)
	auth, err = svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "coordinator@grandaura.com", Password: "coordinator123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEventCoordinator, auth.Role)
}

func TestAuthenticate_Idempotent(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())
	p := seed(t, stores, enc, domain.RoleFrontDesk, "frontdesk@grandaura.com", "frontdesk123", true)

	attempt := domain.LoginAttempt{Email: "frontdesk@grandaura.com", Password: "bad", Role: domain.RoleFrontDesk}
	_, first := svc.Authenticate(context.Background(), attempt)
	_, second := svc.Authenticate(context.Background(), attempt)
	assert.Equal(t, first, second)

	after, err := stores[domain.RoleFrontDesk].FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, after)

	attempt.Password = "frontdesk123"
	a1, err := svc.Authenticate(context.Background(), attempt)
	require.NoError(t, err)
	a2, err := svc.Authenticate(context.Background(), attempt)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}

func TestAuthenticate_StoreFailureIsNotCredentialFailure(t *testing.T) {
	store := &MockPrincipalStore{role: domain.RoleCustomer}
	store.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(domain.Principal{}, apperror.NewDBError("failed to find principal by email", assert.AnError))

	svc := authservice.NewService(domain.Stores{domain.RoleCustomer: store}, newEncoder(t), authservice.Options{}, logger.NewNopLogger())

	_, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "alice@example.com", Password: "password123"})
	require.Error(t, err)
	_, isCredential := apperror.CredentialFailureReason(err)
	assert.False(t, isCredential)
	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
	store.AssertExpectations(t)
}

func TestAuthenticate_PlaintextPolicy(t *testing.T) {
	stores := memrepo.NewStores()
	svc := authservice.NewService(stores, password.PlaintextEncoder{}, authservice.Options{}, logger.NewNopLogger())
	seed(t, stores, password.PlaintextEncoder{}, domain.RoleEventCoordinator, "coordinator@grandaura.com", "coordinator123", true)

	auth, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "coordinator@grandaura.com", Password: "coordinator123", Role: domain.RoleEventCoordinator})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEventCoordinator, auth.Role)
}

func TestRegister_RoundTrip(t *testing.T) {
	stores := memrepo.NewStores()
	svc := authservice.NewService(stores, newEncoder(t), authservice.Options{}, logger.NewNopLogger())

	p, err := svc.Register(context.Background(), domain.Registration{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, p.Role)
	assert.True(t, p.Enabled)
	assert.NotEqual(t, "password123", p.PasswordHash)

	auth, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, auth.Role)
	assert.Equal(t, "/bookings/my", auth.Role.LandingPath())

	authz := authzservice.NewService(logger.NewNopLogger())
	assert.Equal(t, authzservice.Allow, authz.Decide(context.Background(), auth.Role.LandingPath(), &auth))
}

func TestRegister_Duplicate(t *testing.T) {
	stores := memrepo.NewStores()
	svc := authservice.NewService(stores, newEncoder(t), authservice.Options{}, logger.NewNopLogger())

	_, err := svc.Register(context.Background(), domain.Registration{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.Registration{Email: "alice@example.com", Password: "another-pass"})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRegister_Validation(t *testing.T) {
	svc := authservice.NewService(memrepo.NewStores(), newEncoder(t), authservice.Options{}, logger.NewNopLogger())

	_, err := svc.Register(context.Background(), domain.Registration{Email: "alice", Password: "password123"})
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Register(context.Background(), domain.Registration{Email: "alice@example.com", Password: "short"})
	assert.ErrorAs(t, err, &verr)
}

func TestRegister_CrossStoreUniqueness(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	seed(t, stores, enc, domain.RoleSystemAdmin, "admin@grandaura.com", "admin123", true)

	permissive := authservice.NewService(stores, enc, authservice.Options{CrossStoreUnique: false}, logger.NewNopLogger())
	_, err := permissive.Register(context.Background(), domain.Registration{Email: "admin@grandaura.com", Password: "password123"})
	require.NoError(t, err)

	strict := authservice.NewService(memrepo.NewStores(), enc, authservice.Options{CrossStoreUnique: true}, logger.NewNopLogger())
	seed(t, strict.Stores, enc, domain.RoleSystemAdmin, "admin@grandaura.com", "admin123", true)
	_, err = strict.Register(context.Background(), domain.Registration{Email: "admin@grandaura.com", Password: "password123"})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestScenario_HotelOwnerNamespaces(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())
	seed(t, stores, enc, domain.RoleHotelOwner, "hotel.owner@grandaura.com", "hotel123", true)

	auth, err := svc.Authenticate(context.Background(), domain.LoginAttempt{Email: "hotel.owner@grandaura.com", Password: "hotel123", Role: domain.RoleHotelOwner})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHotelOwner, auth.Role)

	authz := authzservice.NewService(logger.NewNopLogger())
	assert.Equal(t, authzservice.Allow, authz.Decide(context.Background(), "/hotel-owner/dashboard", &auth))
	assert.Equal(t, authzservice.Forbidden, authz.Decide(context.Background(), "/system-admin/dashboard", &auth))
}

func TestScenario_DisablePreviouslyValidPrincipal(t *testing.T) {
	stores := memrepo.NewStores()
	enc := newEncoder(t)
	svc := authservice.NewService(stores, enc, authservice.Options{}, logger.NewNopLogger())
	p := seed(t, stores, enc, domain.RoleSystemAdmin, "admin@grandaura.com", "admin123", true)

	attempt := domain.LoginAttempt{Email: "admin@grandaura.com", Password: "admin123", Role: domain.RoleSystemAdmin}
	_, err := svc.Authenticate(context.Background(), attempt)
	require.NoError(t, err)

	p.Enabled = false
	_, err = stores[domain.RoleSystemAdmin].Save(context.Background(), p)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), attempt)
	requireReason(t, err, apperror.ReasonDisabled)
}
