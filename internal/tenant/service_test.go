package tenant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Fatihur/api-baru/internal/model"
	"github.com/Fatihur/api-baru/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTenantRepository is a mock implementation of store.TenantRepository
type MockTenantRepository struct {
	mock.Mock
	mu    sync.Mutex
	saves int
	last  map[string]*model.TenantRecord
}

func (m *MockTenantRepository) Load(ctx context.Context) (map[string]*model.TenantRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*model.TenantRecord), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenants map[string]*model.TenantRecord) error {
	m.mu.Lock()
	m.saves++
	m.last = tenants
	m.mu.Unlock()
	args := m.Called(ctx, tenants)
	return args.Error(0)
}

func (m *MockTenantRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTenantRepository) Close() {
	m.Called()
}

func (m *MockTenantRepository) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MockTenantRepository) lastSnapshot() map[string]*model.TenantRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func newMockRepo(initial map[string]*model.TenantRecord) *MockTenantRepository {
	repo := &MockTenantRepository{}
	if initial == nil {
		initial = map[string]*model.TenantRecord{}
	}
	repo.On("Load", mock.Anything).Return(initial, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	return repo
}

func newTestService(t *testing.T, repo *MockTenantRepository, flushInterval time.Duration) *Service {
	t.Helper()
	s, err := NewService(context.Background(), repo, flushInterval, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s
}

func TestService_GenerateIssuesPrefixedToken(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "My App")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.Token, "wa_"))
	assert.Len(t, record.Token, 3+32)
	assert.Equal(t, "My App", record.Name)
	assert.True(t, record.Active)
	assert.Nil(t, record.LastUsed)
	assert.Zero(t, record.RequestCount)

	// Generation persists synchronously.
	assert.Equal(t, 1, repo.saveCount())
	assert.Contains(t, repo.lastSnapshot(), record.Token)
}

func TestService_GenerateDefaultsName(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Unnamed App", record.Name)
}

func TestService_ValidateTouchesUsage(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)

	assert.True(t, s.Validate(context.Background(), record.Token))
	assert.True(t, s.Validate(context.Background(), record.Token))

	got, err := s.Get(context.Background(), record.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.RequestCount)
	assert.NotNil(t, got.LastUsed)
}

func TestService_ValidateUnknownToken(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	assert.False(t, s.Validate(context.Background(), "wa_nonexistent"))
	assert.False(t, s.Validate(context.Background(), ""))
}

func TestService_ValidateIsDebounced(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, 20*time.Millisecond)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)
	savesAfterGenerate := repo.saveCount()

	for i := 0; i < 50; i++ {
		require.True(t, s.Validate(context.Background(), record.Token))
	}

	// Validation never writes synchronously.
	assert.Equal(t, savesAfterGenerate, repo.saveCount())

	// The background flusher coalesces the touches into one write.
	require.Eventually(t, func() bool {
		snapshot := repo.lastSnapshot()
		return snapshot[record.Token] != nil && snapshot[record.Token].RequestCount == 50
	}, time.Second, time.Millisecond)
	assert.Greater(t, repo.saveCount(), savesAfterGenerate)
}

func TestService_FlushSkipsWhenClean(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 0, repo.saveCount())
}

func TestService_RevokeStopsValidation(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)
	require.True(t, s.Validate(context.Background(), record.Token))

	existed, err := s.Revoke(context.Background(), record.Token)
	require.NoError(t, err)
	assert.True(t, existed)

	assert.False(t, s.Validate(context.Background(), record.Token))

	// The record is kept, soft-deleted.
	got, err := s.Get(context.Background(), record.Token)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.EqualValues(t, 1, got.RequestCount, "rejected validations must not touch usage")
}

func TestService_RevokeUnknownToken(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	existed, err := s.Revoke(context.Background(), "wa_nonexistent")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, 0, repo.saveCount())
}

func TestService_DeleteRemovesRecord(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)

	existed, err := s.Delete(context.Background(), record.Token)
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = s.Get(context.Background(), record.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotContains(t, repo.lastSnapshot(), record.Token)
}

func TestService_GeneratePersistFailureRollsBack(t *testing.T) {
	repo := &MockTenantRepository{}
	repo.On("Load", mock.Anything).Return(map[string]*model.TenantRecord{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	s := newTestService(t, repo, time.Hour)

	_, err := s.Generate(context.Background(), "app")
	require.Error(t, err)

	// The record the failed write saw must not linger in memory.
	assert.Empty(t, s.List(context.Background()))
	for token := range repo.lastSnapshot() {
		assert.False(t, s.Validate(context.Background(), token))
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	initial := map[string]*model.TenantRecord{
		"wa_old": {Token: "wa_old", Name: "old", CreatedAt: now.Add(-time.Hour), Active: true},
		"wa_new": {Token: "wa_new", Name: "new", CreatedAt: now, Active: true},
	}
	repo := newMockRepo(initial)
	s := newTestService(t, repo, time.Hour)

	records := s.List(context.Background())
	require.Len(t, records, 2)
	assert.Equal(t, "wa_new", records[0].Token)
	assert.Equal(t, "wa_old", records[1].Token)
}

func TestService_ListReturnsCopies(t *testing.T) {
	repo := newMockRepo(nil)
	s := newTestService(t, repo, time.Hour)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)

	records := s.List(context.Background())
	require.Len(t, records, 1)
	records[0].Name = "mutated"

	got, err := s.Get(context.Background(), record.Token)
	require.NoError(t, err)
	assert.Equal(t, "app", got.Name)
}

func TestService_StopFlushesPendingChanges(t *testing.T) {
	repo := newMockRepo(nil)
	s, err := NewService(context.Background(), repo, time.Hour, zap.NewNop(), nil)
	require.NoError(t, err)

	record, err := s.Generate(context.Background(), "app")
	require.NoError(t, err)
	require.True(t, s.Validate(context.Background(), record.Token))
	savesBefore := repo.saveCount()

	s.Stop()

	assert.Equal(t, savesBefore+1, repo.saveCount())
	snapshot := repo.lastSnapshot()
	assert.EqualValues(t, 1, snapshot[record.Token].RequestCount)
}
