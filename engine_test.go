package goSession

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/password"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestConfig(t *testing.T) Config {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = priv
	cfg.JWT.PublicKey = pub

	// Minimum-cost argon2 keeps the suite fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	cfg.Security.MaxRefreshAttempts = 1000

	return cfg
}

type mockSubjectProvider struct {
	mu          sync.Mutex
	subjects    map[string]SubjectRecord // keyed by identifier
	updateCalls int
	updateErr   error
}

func newMockProvider() *mockSubjectProvider {
	return &mockSubjectProvider{
		subjects: make(map[string]SubjectRecord),
	}
}

func (m *mockSubjectProvider) put(s SubjectRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[s.Identifier] = s
}

func (m *mockSubjectProvider) GetSubjectByIdentifier(_ context.Context, identifier string) (SubjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subjects[identifier]
	if !ok {
		return SubjectRecord{}, fmt.Errorf("subject not found")
	}
	return s, nil
}

func (m *mockSubjectProvider) UpdatePasswordHash(_ context.Context, subjectID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	for identifier, s := range m.subjects {
		if s.SubjectID == subjectID {
			s.PasswordHash = newHash
			m.subjects[identifier] = s
		}
	}
	return nil
}

func (m *mockSubjectProvider) updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCalls
}

func seedSubject(t *testing.T, provider *mockSubjectProvider, cfg Config, identifier, plaintext string) {
	t.Helper()

	hasher, err := password.NewHasher(password.Params{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	provider.put(SubjectRecord{
		SubjectID:    "subject-" + identifier,
		Identifier:   identifier,
		PasswordHash: hash,
		Claims:       map[string]string{"email": identifier},
	})
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *mockSubjectProvider) {
	t.Helper()

	_, rdb := newTestRedis(t)
	provider := newMockProvider()
	seedSubject(t, provider, cfg, "alice@example.com", "correct-password-123")

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, provider
}

func TestLoginSuccess(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	pair, err := engine.Login(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	result, err := engine.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if result.SubjectID != "subject-alice@example.com" {
		t.Fatalf("unexpected subject: %s", result.SubjectID)
	}
	if result.Claims["email"] != "alice@example.com" {
		t.Fatalf("claims not carried: %v", result.Claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))

	_, err := engine.Login(context.Background(), "alice@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))

	_, err := engine.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginEmptyInputsReturnMissingInput(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	if _, err := engine.Login(ctx, "", "secret"); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("empty identifier: expected ErrMissingInput, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", ""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("empty password: expected ErrMissingInput, got %v", err)
	}
	if _, err := engine.Login(ctx, "", ""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("both empty: expected ErrMissingInput, got %v", err)
	}
}

func TestLoginEmptyInputsDoNotConsumeAttemptBudget(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Security.MaxLoginAttempts = 2
	cfg.Security.LoginCooldownDuration = time.Minute
	engine, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", ""); !errors.Is(err, ErrMissingInput) {
			t.Fatalf("attempt %d: expected ErrMissingInput, got %v", i, err)
		}
	}

	if _, err := engine.Login(ctx, "alice@example.com", "correct-password-123"); err != nil {
		t.Fatalf("valid login should still succeed, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Security.MaxLoginAttempts = 2
	cfg.Security.LoginCooldownDuration = time.Minute
	engine, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Third failure trips the limiter; the right password is then also blocked.
	if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct-password-123"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited for correct password, got %v", err)
	}
}

func TestLoginSuccessResetsAttemptBudget(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Security.MaxLoginAttempts = 3
	engine, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	if _, err := engine.Login(ctx, "alice@example.com", "correct-password-123"); err != nil {
		t.Fatalf("expected login under budget to succeed, got %v", err)
	}

	// The counter was cleared, so the full budget is available again.
	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("post-reset attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Password.Memory = 16 * 1024

	_, rdb := newTestRedis(t)
	provider := newMockProvider()

	// Seed with a deliberately weaker hash than the engine is configured for.
	weak, err := password.NewHasher(password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := weak.Hash("correct-password-123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	provider.put(SubjectRecord{
		SubjectID:    "u1",
		Identifier:   "alice@example.com",
		PasswordHash: hash,
	})

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if provider.updates() != 1 {
		t.Fatalf("expected 1 hash upgrade, got %d", provider.updates())
	}

	// The upgraded hash still verifies on the next login.
	if _, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123"); err != nil {
		t.Fatalf("post-upgrade Login failed: %v", err)
	}
	if provider.updates() != 1 {
		t.Fatalf("expected no further upgrades, got %d", provider.updates())
	}
}

func TestLoginUpgradeFailureDoesNotBlockLogin(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Password.Memory = 16 * 1024

	_, rdb := newTestRedis(t)
	provider := newMockProvider()
	provider.updateErr = errors.New("write refused")

	weak, err := password.NewHasher(password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := weak.Hash("correct-password-123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	provider.put(SubjectRecord{
		SubjectID:    "u1",
		Identifier:   "alice@example.com",
		PasswordHash: hash,
	})

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123"); err != nil {
		t.Fatalf("Login should succeed despite upgrade failure, got %v", err)
	}
}

func TestIssueDirect(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	pair, err := engine.Issue(ctx, "subject-x", map[string]string{"tier": "pro"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	active, err := engine.IsRefreshActive(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("IsRefreshActive failed: %v", err)
	}
	if !active {
		t.Fatal("issued refresh token should be active")
	}

	result, err := engine.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if result.Claims["tier"] != "pro" {
		t.Fatalf("claims not carried: %v", result.Claims)
	}
}

func TestIssueEmptySubject(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))

	if _, err := engine.Issue(context.Background(), "", nil); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestBuilderRequiresRedis(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := New().
		WithConfig(cfg).
		WithSubjectProvider(newMockProvider()).
		Build()
	if err == nil {
		t.Fatal("expected build to fail without redis")
	}
}

func TestBuilderRequiresSubjectProvider(t *testing.T) {
	cfg := newTestConfig(t)
	_, rdb := newTestRedis(t)

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err == nil {
		t.Fatal("expected build to fail without subject provider")
	}
}

func TestBuilderRejectsReuse(t *testing.T) {
	cfg := newTestConfig(t)
	_, rdb := newTestRedis(t)

	b := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectProvider(newMockProvider())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRejectsMissingKeys(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.JWT.PrivateKey = nil
	cfg.JWT.PublicKey = nil
	_, rdb := newTestRedis(t)

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectProvider(newMockProvider()).
		Build()
	if err == nil {
		t.Fatal("expected build to fail without signing keys")
	}
}

func TestValidateAccessErrors(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	if _, err := engine.ValidateAccess(""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("empty token: expected ErrMissingInput, got %v", err)
	}

	pair, err := engine.Login(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A refresh token must never pass access validation.
	if _, err := engine.ValidateAccess(pair.RefreshToken); err == nil {
		t.Fatal("expected refresh token to fail access validation")
	}
}

func TestHealth(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))

	status := engine.Health(context.Background())
	if !status.RedisAvailable {
		t.Fatal("expected redis to be available")
	}
}

func TestSecurityReport(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Audit.Enabled = true
	engine, _ := newTestEngine(t, cfg)

	report := engine.SecurityReport()
	if report.SigningAlgorithm != "ed25519" {
		t.Fatalf("unexpected signing algorithm: %s", report.SigningAlgorithm)
	}
	if report.RevokedTTL != cfg.JWT.RefreshTTL {
		t.Fatalf("revoked TTL should default to refresh TTL, got %v", report.RevokedTTL)
	}
	if report.Argon2.Memory != cfg.Password.Memory {
		t.Fatalf("unexpected argon2 memory: %d", report.Argon2.Memory)
	}
	if !report.AuditEnabled {
		t.Fatal("expected audit to be reported enabled")
	}
	if !report.RefreshThrottleActive {
		t.Fatal("expected refresh throttle to be reported active")
	}
}
