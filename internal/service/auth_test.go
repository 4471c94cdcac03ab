package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username || u.ReferralCode == user.ReferralCode {
			return domain.ErrDuplicateEntry
		}
	}

	cloned := *user
	cloned.CreatedAt = time.Now()
	r.users[user.ID] = &cloned

	return nil
}

func (r *fakeUserRepo) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	cloned := *user

	return &cloned, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Email owner wins over username owner, mirroring the SQL ordering.
	var byUsername *domain.User
	for _, u := range r.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
		if u.Username == username {
			byUsername = u
		}
	}

	if byUsername != nil {
		cloned := *byUsername
		return &cloned, nil
	}

	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uid, u := range r.users {
		if uid != id && u.Username == username {
			return domain.ErrDuplicateEntry
		}
	}

	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Username = username

	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID, loginAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Verified = true
	user.LastLoginAt = &loginAt

	return nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes []*domain.VerificationCode

	markConsumedErr error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{}
}

func (r *fakeCodeRepo) Replace(_ context.Context, code *domain.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.codes[:0]
	for _, c := range r.codes {
		if c.Email != code.Email {
			kept = append(kept, c)
		}
	}
	r.codes = kept

	cloned := *code
	cloned.CreatedAt = time.Now()
	r.codes = append(r.codes, &cloned)

	return nil
}

func (r *fakeCodeRepo) GetLatestByEmail(_ context.Context, email string) (*domain.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*domain.VerificationCode
	for _, c := range r.codes {
		if c.Email == email && !c.Consumed {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID.String() > matches[j].ID.String()
	})

	cloned := *matches[0]

	return &cloned, nil
}

func (r *fakeCodeRepo) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.codes {
		if c.ID == id {
			c.Attempts++
			return nil
		}
	}

	return domain.ErrNotFound
}

func (r *fakeCodeRepo) MarkConsumed(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.markConsumedErr != nil {
		return r.markConsumedErr
	}

	for _, c := range r.codes {
		if c.ID == id {
			if c.Consumed {
				return domain.ErrNoRowsAffected
			}
			c.Consumed = true
			c.ConsumedAt = &at
			return nil
		}
	}

	return domain.ErrNoRowsAffected
}

func (r *fakeCodeRepo) CreatedSince(_ context.Context, email string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.codes {
		if c.Email == email && c.CreatedAt.After(since) {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeCodeRepo) latest(t *testing.T, email string) *domain.VerificationCode {
	t.Helper()

	code, err := r.GetLatestByEmail(context.Background(), email)
	require.NoError(t, err)

	return code
}

// backdate shifts the latest code for the email into the past, so expiry and
// resend-window branches can be exercised without sleeping.
func (r *fakeCodeRepo) backdate(email string, by time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.codes {
		if c.Email == email {
			c.CreatedAt = c.CreatedAt.Add(-by)
			c.ExpiresAt = c.ExpiresAt.Add(-by)
		}
	}
}

type stubTokenManager struct{}

func (stubTokenManager) NewJWT(userID uuid.UUID) (string, time.Duration, error) {
	return "token-" + userID.String(), time.Hour, nil
}

func (stubTokenManager) Parse(accessToken string) (string, error) {
	return parseStubToken(accessToken)
}

func (stubTokenManager) ParseIgnoringExpiry(accessToken string) (string, error) {
	return parseStubToken(accessToken)
}

func parseStubToken(accessToken string) (string, error) {
	const prefix = "token-"
	if len(accessToken) <= len(prefix) || accessToken[:len(prefix)] != prefix {
		return "", errors.New("malformed token")
	}

	return accessToken[len(prefix):], nil
}

// stubGenerator returns codes from a fixed sequence, so tests know which
// plaintext was issued.
type stubGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (g *stubGenerator) RandomCode(int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := g.codes[g.next%len(g.codes)]
	g.next++

	return code, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendCodeEmail(ctx context.Context, email, username, code string, purpose domain.CodePurpose) error {
	args := m.Called(ctx, email, username, code, purpose)

	return args.Error(0)
}

type serviceFixture struct {
	svc      *userService
	users    *fakeUserRepo
	codes    *fakeCodeRepo
	notifier *mockNotifier
}

func newServiceFixture(t *testing.T, issuedCodes ...string) *serviceFixture {
	t.Helper()

	if len(issuedCodes) == 0 {
		issuedCodes = []string{"123456"}
	}

	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	notifier := &mockNotifier{}

	svc := newUserService(
		users,
		codes,
		hash.NewSHA256Hasher("test-salt"),
		stubTokenManager{},
		&stubGenerator{codes: issuedCodes},
		notifier,
		config.AuthConfig{
			CodeSalt:                "test-salt",
			VerificationCodeLength:  6,
			VerificationCodeTTL:     15 * time.Minute,
			VerificationMaxAttempts: 3,
			ResendInterval:          2 * time.Minute,
		},
	)

	return &serviceFixture{svc: svc, users: users, codes: codes, notifier: notifier}
}

func (f *serviceFixture) expectAnyEmail() {
	f.notifier.On("SendCodeEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
}

func TestRegister_NewUser(t *testing.T) {
	f := newServiceFixture(t)
	f.notifier.On("SendCodeEmail", mock.Anything, "alice@example.com", "alice", "123456", domain.PurposeRegistration).
		Return(nil).Once()

	result, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.UserID)
	assert.Equal(t, "alice@example.com", result.Email)
	assert.Equal(t, "alice", result.Username)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), result.CodeExpiresAt, 5*time.Second)

	user, err := f.users.GetOneByID(context.Background(), result.UserID)
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.Regexp(t, `^CHESS-[A-Z0-9]{6}$`, user.ReferralCode)

	record := f.codes.latest(t, "alice@example.com")
	assert.Equal(t, result.UserID, record.UserID)
	assert.Equal(t, domain.PurposeRegistration, record.Purpose)
	assert.NotEqual(t, "123456", record.CodeHash, "code must not be stored in plaintext")

	f.notifier.AssertExpectations(t)
}

func TestRegister_ReferralCodeFormat(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	seen := make(map[string]bool)
	for _, username := range []string{"alice", "bob", "carol", "dave", "erin"} {
		result, err := f.svc.Register(context.Background(), username+"@example.com", username)
		require.NoError(t, err)

		user, err := f.users.GetOneByID(context.Background(), result.UserID)
		require.NoError(t, err)

		assert.Regexp(t, `^CHESS-[A-Z0-9]{6}$`, user.ReferralCode)
		assert.Len(t, user.ReferralCode, len("CHESS-")+6)
		assert.False(t, seen[user.ReferralCode], "referral codes must be unique")
		seen[user.ReferralCode] = true
	}
}

func TestRegister_VerifiedEmailExists(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	reg, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)
	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "alice@example.com", "someone_else")
	assert.ErrorIs(t, err, ErrEmailExists)

	// Same verified user, email and username both clash: email wins.
	_, err = f.svc.Register(context.Background(), "alice@example.com", "alice")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.svc.Register(context.Background(), "other@example.com", "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.users.GetOneByID(context.Background(), reg.UserID)
	require.NoError(t, err)
}

func TestRegister_UnverifiedEmailOwnerIsReused(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	first, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	second, err := f.svc.Register(context.Background(), "alice@example.com", "alice_new")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID, "abandoned registration should be resumed, not duplicated")

	user, err := f.users.GetOneByID(context.Background(), first.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice_new", user.Username)
}

func TestRegister_UnverifiedUsernameOwnerWithDifferentEmail(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "bob@example.com", "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_NotifierFailureFailsRegistration(t *testing.T) {
	f := newServiceFixture(t)
	f.notifier.On("SendCodeEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("queue down"))

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	assert.Error(t, err)
}

func TestVerify_HappyPath(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	reg, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	result, err := f.svc.Verify(context.Background(), "alice@example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "token-"+reg.UserID.String(), result.Token)
	assert.True(t, result.User.Verified)
	assert.NotNil(t, result.User.LastLoginAt)
}

func TestVerify_WrongCodeIncrementsAttempts(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	record := f.codes.latest(t, "alice@example.com")
	assert.Equal(t, 1, record.Attempts)

	// The correct code still works after a failed attempt.
	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.NoError(t, err)
}

func TestVerify_AttemptCapLocksOutCorrectCode(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.Verify(context.Background(), "alice@example.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestVerify_ExpiredCode(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	f.codes.backdate("alice@example.com", 16*time.Minute)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerify_WrongCodeOnExpiredRecord(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	f.codes.backdate("alice@example.com", 16*time.Minute)

	// A mismatch must read as an invalid code even when the record has
	// expired; only the correct code reveals the expiry.
	_, err = f.svc.Verify(context.Background(), "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_WrongCodeAfterLockout(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.Verify(context.Background(), "alice@example.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	// Past the cap a mismatch still reads as an invalid code; the lockout
	// only surfaces for the correct one.
	_, err = f.svc.Verify(context.Background(), "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestVerify_NoCode(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Verify(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_CodeIsSingleUse(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_ConsumeRaceLost(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	f.codes.markConsumedErr = domain.ErrNoRowsAffected

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_ReissueInvalidatesOldCode(t *testing.T) {
	f := newServiceFixture(t, "111111", "222222")
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	f.codes.backdate("alice@example.com", 3*time.Minute)

	_, err = f.svc.ResendCode(context.Background(), "alice@example.com")
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "111111")
	assert.ErrorIs(t, err, ErrInvalidCode, "first code must die when a second is issued")

	_, err = f.svc.Verify(context.Background(), "alice@example.com", "222222")
	assert.NoError(t, err)
}

func TestResendCode_WithinWindow(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = f.svc.ResendCode(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrResendRateLimited)
}

func TestResendCode_AfterWindow(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	f.codes.backdate("alice@example.com", 3*time.Minute)

	result, err := f.svc.ResendCode(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.Email)
}

func TestResendCode_UnknownEmail(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ResendCode(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_VerifiedUser(t *testing.T) {
	f := newServiceFixture(t, "111111", "222222")
	f.expectAnyEmail()

	reg, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)
	_, err = f.svc.Verify(context.Background(), "alice@example.com", "111111")
	require.NoError(t, err)

	result, err := f.svc.Login(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, result.UserID)

	record := f.codes.latest(t, "alice@example.com")
	assert.Equal(t, domain.PurposeLogin, record.Purpose)

	// Login deliberately ignores the resend window.
	_, err = f.svc.Login(context.Background(), "alice@example.com")
	assert.NoError(t, err)
}

func TestLogin_UnverifiedUser(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	_, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Login(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefresh(t *testing.T) {
	f := newServiceFixture(t)
	f.expectAnyEmail()

	reg, err := f.svc.Register(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)

	result, err := f.svc.Refresh(context.Background(), "token-"+reg.UserID.String())
	require.NoError(t, err)
	assert.Equal(t, "token-"+reg.UserID.String(), result.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_SubjectNotUUID(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Refresh(context.Background(), "token-not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_DeletedUser(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Refresh(context.Background(), "token-"+uuid.New().String())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
