package riskcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/scoring"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) UpdateRiskScore(id uuid.UUID, riskScore int, isFlagged bool) error {
	return m.Called(id, riskScore, isFlagged).Error(0)
}

func (m *MockUserRepo) List(offset, limit int) ([]models.User, int64, error) {
	args := m.Called(offset, limit)
	if users := args.Get(0); users != nil {
		return users.([]models.User), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockUserRepo) ListAll() ([]models.User, error) {
	args := m.Called()
	if users := args.Get(0); users != nil {
		return users.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) Create(claim *models.Claim) error {
	return m.Called(claim).Error(0)
}

func (m *MockClaimRepo) GetByID(id uuid.UUID) (*models.Claim, error) {
	args := m.Called(id)
	if claim := args.Get(0); claim != nil {
		return claim.(*models.Claim), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClaimRepo) FindByUser(userID uuid.UUID) ([]models.Claim, error) {
	args := m.Called(userID)
	if claims := args.Get(0); claims != nil {
		return claims.([]models.Claim), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClaimRepo) UpdateStatus(id uuid.UUID, status string) error {
	return m.Called(id, status).Error(0)
}

func (m *MockClaimRepo) StatusCounts() (map[string]int64, error) {
	args := m.Called()
	if counts := args.Get(0); counts != nil {
		return counts.(map[string]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClaimRepo) FindSince(since time.Time) ([]models.Claim, error) {
	args := m.Called(since)
	if claims := args.Get(0); claims != nil {
		return claims.([]models.Claim), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Compute(ctx context.Context, profile scoring.Profile, items []models.ItemData, history []models.Claim) *scoring.Assessment {
	args := m.Called(ctx, profile, items, history)
	return args.Get(0).(*scoring.Assessment)
}

// blockingScorer parks every Compute call until released, so tests can hold a
// recomputation in flight deterministically.
type blockingScorer struct {
	entered chan struct{}
	release chan struct{}
	score   int
}

func (s *blockingScorer) Compute(ctx context.Context, profile scoring.Profile, items []models.ItemData, history []models.Claim) *scoring.Assessment {
	s.entered <- struct{}{}
	<-s.release
	return &scoring.Assessment{FraudScore: s.score}
}

func assessment(score int) *scoring.Assessment {
	return &scoring.Assessment{FraudScore: score}
}

func testUser(id uuid.UUID) *models.User {
	return &models.User{ID: id, Email: "user@example.com"}
}

func claimWith(status string, items ...models.ItemData) models.Claim {
	return models.Claim{
		ID:        uuid.New(),
		Status:    status,
		ClaimData: items,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
}

func item(price float64, qty int) models.ItemData {
	return models.ItemData{ItemName: "test item", Category: "books", Price: price, Quantity: qty}
}

func TestService_Get(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(*MockUserRepo, *MockClaimRepo, *MockScorer)
		check     func(*testing.T, *Entry, error, *MockUserRepo)
	}{
		{
			name: "no claims yields insufficient data",
			setupMock: func(users *MockUserRepo, claims *MockClaimRepo, scorer *MockScorer) {
				users.On("GetByID", userID).Return(testUser(userID), nil)
				claims.On("FindByUser", userID).Return([]models.Claim{}, nil)
			},
			check: func(t *testing.T, entry *Entry, err error, users *MockUserRepo) {
				assert.NoError(t, err)
				assert.True(t, entry.InsufficientData)
				assert.Nil(t, entry.RiskScore)
				assert.False(t, entry.IsFlagged)
				users.AssertNotCalled(t, "UpdateRiskScore", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "unknown user yields insufficient data without error",
			setupMock: func(users *MockUserRepo, claims *MockClaimRepo, scorer *MockScorer) {
				users.On("GetByID", userID).Return(nil, repositories.ErrUserNotFound)
			},
			check: func(t *testing.T, entry *Entry, err error, users *MockUserRepo) {
				assert.NoError(t, err)
				assert.True(t, entry.InsufficientData)
			},
		},
		{
			name: "single low risk claim",
			setupMock: func(users *MockUserRepo, claims *MockClaimRepo, scorer *MockScorer) {
				users.On("GetByID", userID).Return(testUser(userID), nil)
				claims.On("FindByUser", userID).Return([]models.Claim{
					claimWith(models.ClaimStatusPending, item(50, 1)),
				}, nil)
				scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(assessment(20))
				users.On("UpdateRiskScore", userID, 20, false).Return(nil)
			},
			check: func(t *testing.T, entry *Entry, err error, users *MockUserRepo) {
				assert.NoError(t, err)
				assert.False(t, entry.InsufficientData)
				assert.Equal(t, 20, *entry.RiskScore)
				assert.False(t, entry.IsFlagged)
				assert.Equal(t, 1, entry.TotalClaims)
				assert.Equal(t, 1, entry.PendingClaims)
				assert.Equal(t, float64(50), entry.TotalValue)
				users.AssertExpectations(t)
			},
		},
		{
			name: "claims without items are skipped",
			setupMock: func(users *MockUserRepo, claims *MockClaimRepo, scorer *MockScorer) {
				users.On("GetByID", userID).Return(testUser(userID), nil)
				claims.On("FindByUser", userID).Return([]models.Claim{
					claimWith(models.ClaimStatusPending, item(50, 1)),
					claimWith(models.ClaimStatusPending),
				}, nil)
				scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(assessment(30)).Once()
				users.On("UpdateRiskScore", userID, 30, false).Return(nil)
			},
			check: func(t *testing.T, entry *Entry, err error, users *MockUserRepo) {
				assert.NoError(t, err)
				assert.Equal(t, 30, *entry.RiskScore)
				assert.Equal(t, 2, entry.TotalClaims)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepo)
			claims := new(MockClaimRepo)
			scorer := new(MockScorer)
			tt.setupMock(users, claims, scorer)

			service := NewService(users, claims, scorer, Options{})
			entry, err := service.Get(context.Background(), userID)
			tt.check(t, entry, err, users)
		})
	}
}

func TestService_Penalties(t *testing.T) {
	userID := uuid.New()
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	// 12 claims: 7 denied (denial rate +20), average value 600 (+15), more
	// than 10 claims (+10), and every claim scores above the high-risk
	// threshold (+25). Mean 71 plus 70 penalty clamps at 100.
	var history []models.Claim
	for i := 0; i < 7; i++ {
		history = append(history, claimWith(models.ClaimStatusDenied, item(600, 1)))
	}
	for i := 0; i < 5; i++ {
		history = append(history, claimWith(models.ClaimStatusApproved, item(600, 1)))
	}

	users.On("GetByID", userID).Return(testUser(userID), nil)
	claims.On("FindByUser", userID).Return(history, nil)
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(71)).Times(12)
	users.On("UpdateRiskScore", userID, 100, true).Return(nil)

	service := NewService(users, claims, scorer, Options{})
	entry, err := service.Get(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, 100, *entry.RiskScore)
	assert.True(t, entry.IsFlagged)
	assert.Equal(t, 12, entry.TotalClaims)
	assert.Equal(t, 7, entry.DeniedClaims)
	assert.Equal(t, 5, entry.ApprovedClaims)
	assert.InDelta(t, 7200, entry.TotalValue, 1e-9)
	users.AssertExpectations(t)
	scorer.AssertExpectations(t)
}

func TestService_ConcurrentRecomputeDeduplicates(t *testing.T) {
	userID := uuid.New()
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := &blockingScorer{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		score:   20,
	}

	users.On("GetByID", userID).Return(testUser(userID), nil)
	claims.On("FindByUser", userID).Return([]models.Claim{
		claimWith(models.ClaimStatusPending, item(50, 1)),
	}, nil)
	users.On("UpdateRiskScore", userID, 20, false).Return(nil)

	service := NewService(users, claims, scorer, Options{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := service.Recompute(context.Background(), userID)
		assert.NoError(t, err)
	}()

	// Wait until the first recomputation is inside the scorer, then any
	// overlapping request must bail out instead of computing twice.
	<-scorer.entered
	_, err := service.Get(context.Background(), userID)
	assert.ErrorIs(t, err, ErrCalculationInProgress)

	stats := service.Stats()
	assert.Equal(t, 1, stats.CalculationsInProgress)

	close(scorer.release)
	<-done

	// The finished entry now serves cache hits without rescoring.
	entry, err := service.Get(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 20, *entry.RiskScore)
	users.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestService_StoreFailureClearsMarker(t *testing.T) {
	userID := uuid.New()
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	history := []models.Claim{claimWith(models.ClaimStatusPending, item(50, 1))}
	users.On("GetByID", userID).Return(testUser(userID), nil)
	claims.On("FindByUser", userID).Return(history, nil)
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(20))
	users.On("UpdateRiskScore", userID, 20, false).Return(errors.New("connection reset")).Once()

	service := NewService(users, claims, scorer, Options{})

	_, err := service.Recompute(context.Background(), userID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCalculationInProgress)

	// The failed run must not leave a marker or a cache entry behind.
	stats := service.Stats()
	assert.Equal(t, 0, stats.CalculationsInProgress)
	assert.Equal(t, 0, stats.TotalCachedUsers)

	// A retry proceeds instead of reporting an in-flight computation.
	users.On("UpdateRiskScore", userID, 20, false).Return(nil).Once()
	entry, err := service.Recompute(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 20, *entry.RiskScore)
}

func TestService_ClaimFetchFailureKeepsStaleEntry(t *testing.T) {
	userID := uuid.New()
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	history := []models.Claim{claimWith(models.ClaimStatusPending, item(50, 1))}
	users.On("GetByID", userID).Return(testUser(userID), nil)
	claims.On("FindByUser", userID).Return(history, nil).Once()
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(20))
	users.On("UpdateRiskScore", userID, 20, false).Return(nil)

	service := NewService(users, claims, scorer, Options{})

	first, err := service.Recompute(context.Background(), userID)
	assert.NoError(t, err)

	claims.On("FindByUser", userID).Return(nil, errors.New("connection reset")).Once()
	_, err = service.Recompute(context.Background(), userID)
	assert.Error(t, err)

	// The prior entry still serves reads.
	entry, err := service.Get(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, first, entry)
}

func TestService_Initialize(t *testing.T) {
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	var all []models.User
	for i := 0; i < 7; i++ {
		user := testUser(uuid.New())
		all = append(all, *user)
		users.On("GetByID", user.ID).Return(user, nil)
		claims.On("FindByUser", user.ID).Return([]models.Claim{
			claimWith(models.ClaimStatusPending, item(50, 1)),
		}, nil)
		users.On("UpdateRiskScore", user.ID, 10, false).Return(nil)
	}
	users.On("ListAll").Return(all, nil)
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(10))

	service := NewService(users, claims, scorer, Options{BatchSize: 3, BatchPause: time.Millisecond})
	service.Initialize(context.Background())

	stats := service.Stats()
	assert.Equal(t, 7, stats.TotalCachedUsers)
	assert.Equal(t, 7, stats.UsersWithRiskScores)
	assert.Equal(t, 0, stats.CalculationsInProgress)
	users.AssertExpectations(t)
}

func TestService_Stats(t *testing.T) {
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	scored := uuid.New()
	empty := uuid.New()

	users.On("GetByID", scored).Return(testUser(scored), nil)
	claims.On("FindByUser", scored).Return([]models.Claim{
		claimWith(models.ClaimStatusPending, item(50, 1)),
	}, nil)
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(10))
	users.On("UpdateRiskScore", scored, 10, false).Return(nil)

	users.On("GetByID", empty).Return(testUser(empty), nil)
	claims.On("FindByUser", empty).Return([]models.Claim{}, nil)

	service := NewService(users, claims, scorer, Options{})
	_, err := service.Get(context.Background(), scored)
	assert.NoError(t, err)
	_, err = service.Get(context.Background(), empty)
	assert.NoError(t, err)

	stats := service.Stats()
	assert.Equal(t, 2, stats.TotalCachedUsers)
	assert.Equal(t, 1, stats.UsersWithRiskScores)
	assert.Equal(t, 1, stats.UsersWithInsufficientData)
	assert.Equal(t, 0, stats.CalculationsInProgress)
}

func TestService_RecomputeReflectsNewClaims(t *testing.T) {
	userID := uuid.New()
	users := new(MockUserRepo)
	claims := new(MockClaimRepo)
	scorer := new(MockScorer)

	first := []models.Claim{claimWith(models.ClaimStatusPending, item(50, 1))}
	users.On("GetByID", userID).Return(testUser(userID), nil)
	claims.On("FindByUser", userID).Return(first, nil).Once()
	scorer.On("Compute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assessment(20))
	users.On("UpdateRiskScore", userID, 20, false).Return(nil)

	service := NewService(users, claims, scorer, Options{})
	entry, err := service.Get(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 1, entry.TotalClaims)

	// A new claim lands; the refresh triggered by the write makes the next
	// read reflect it without a process restart.
	second := append(first, claimWith(models.ClaimStatusPending, item(80, 1)))
	claims.On("FindByUser", userID).Return(second, nil)

	service.InvalidateAndRecompute(context.Background(), userID)

	entry, err = service.Get(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 2, entry.TotalClaims)
	assert.InDelta(t, 130, entry.TotalValue, 1e-9)
}
