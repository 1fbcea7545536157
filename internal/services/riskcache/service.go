// Package riskcache keeps per-user risk score bundles warm in memory so reads
// stay off the request hot path. Entries are recomputed in the background at
// startup, on demand on a cache miss, and after every new claim.
//
// The cache is local to one process and rebuilt from the record store on
// restart.
package riskcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/scoring"

	"github.com/google/uuid"
)

// ErrCalculationInProgress signals that a recomputation for the user is
// already in flight and no entry is available yet. Callers fall back to
// stale or default data.
var ErrCalculationInProgress = errors.New("risk calculation in progress")

const highRiskClaimThreshold = 70

// Scorer computes a fraud assessment for one claim against a user's history.
type Scorer interface {
	Compute(ctx context.Context, profile scoring.Profile, items []models.ItemData, history []models.Claim) *scoring.Assessment
}

// Entry is a user's cached risk bundle. Entries are immutable once stored;
// callers must treat them as read-only.
type Entry struct {
	RiskScore        *int      `json:"risk_score"`
	IsFlagged        bool      `json:"is_flagged"`
	InsufficientData bool      `json:"insufficient_data"`
	TotalClaims      int       `json:"total_claims"`
	PendingClaims    int       `json:"pending_claims"`
	ApprovedClaims   int       `json:"approved_claims"`
	DeniedClaims     int       `json:"denied_claims"`
	TotalValue       float64   `json:"total_value"`
	LastCalculated   time.Time `json:"last_calculated"`
}

// Stats summarizes cache state.
type Stats struct {
	TotalCachedUsers          int `json:"total_cached_users"`
	UsersWithRiskScores       int `json:"users_with_risk_scores"`
	UsersWithInsufficientData int `json:"users_with_insufficient_data"`
	CalculationsInProgress    int `json:"calculations_in_progress"`
}

// Options configures the cache service.
type Options struct {
	BatchSize  int           // users computed concurrently during Initialize
	BatchPause time.Duration // pause between startup batches
}

// Service is the process-wide risk score cache.
type Service struct {
	users  repositories.UserRepository
	claims repositories.ClaimRepository
	scorer Scorer

	mu          sync.Mutex
	entries     map[uuid.UUID]*Entry
	inProgress  map[uuid.UUID]struct{}
	lastUpdated map[uuid.UUID]time.Time

	batchSize  int
	batchPause time.Duration
}

func NewService(users repositories.UserRepository, claims repositories.ClaimRepository, scorer Scorer, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = 100 * time.Millisecond
	}
	return &Service{
		users:       users,
		claims:      claims,
		scorer:      scorer,
		entries:     make(map[uuid.UUID]*Entry),
		inProgress:  make(map[uuid.UUID]struct{}),
		lastUpdated: make(map[uuid.UUID]time.Time),
		batchSize:   opts.BatchSize,
		batchPause:  opts.BatchPause,
	}
}

// Initialize warms the cache for every known user. Users are computed in
// fixed-size concurrent batches with a small pause in between, bounding load
// on the external services. Run it as a detached background task; it must not
// gate server readiness.
func (s *Service) Initialize(ctx context.Context) {
	log.Println("🚀 Starting risk score cache initialization...")

	users, err := s.users.ListAll()
	if err != nil {
		log.Printf("❌ Error initializing risk score cache: %v", err)
		return
	}
	if len(users) == 0 {
		log.Println("No users found to calculate risk scores for")
		return
	}

	log.Printf("📊 Calculating risk scores for %d users...", len(users))

	for i := 0; i < len(users); i += s.batchSize {
		end := min(i+s.batchSize, len(users))

		var wg sync.WaitGroup
		for _, user := range users[i:end] {
			if !s.begin(user.ID) {
				continue
			}
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				defer s.end(id)
				if _, err := s.compute(ctx, id); err != nil {
					log.Printf("Error calculating risk score for user %s: %v", id, err)
				}
			}(user.ID)
		}
		wg.Wait()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.batchPause):
		}
	}

	log.Printf("✅ Risk score cache initialization complete! Cached %d users", s.Stats().TotalCachedUsers)
}

// Get returns the cached entry for a user. On a miss it recomputes
// synchronously unless a recomputation is already in flight, in which case it
// returns ErrCalculationInProgress.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Entry, error) {
	s.mu.Lock()
	if entry, ok := s.entries[userID]; ok {
		s.mu.Unlock()
		return entry, nil
	}
	s.mu.Unlock()

	return s.Recompute(ctx, userID)
}

// Recompute rebuilds a user's risk bundle from their claim history. At most
// one recomputation runs per user; concurrent calls observe the in-progress
// marker and return ErrCalculationInProgress without doing work.
func (s *Service) Recompute(ctx context.Context, userID uuid.UUID) (*Entry, error) {
	if !s.begin(userID) {
		return nil, ErrCalculationInProgress
	}
	defer s.end(userID)

	return s.compute(ctx, userID)
}

// InvalidateAndRecompute refreshes a user's entry after a claim write. A
// recomputation already in flight makes this a no-op.
func (s *Service) InvalidateAndRecompute(ctx context.Context, userID uuid.UUID) {
	if _, err := s.Recompute(ctx, userID); err != nil && !errors.Is(err, ErrCalculationInProgress) {
		log.Printf("Error recalculating risk score for user %s: %v", userID, err)
	}
}

// Stats reports cache-wide counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalCachedUsers:       len(s.entries),
		CalculationsInProgress: len(s.inProgress),
	}
	for _, entry := range s.entries {
		if entry.InsufficientData {
			stats.UsersWithInsufficientData++
		} else {
			stats.UsersWithRiskScores++
		}
	}
	return stats
}

// begin atomically marks a user as being recomputed. It returns false when a
// recomputation is already in flight.
func (s *Service) begin(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inProgress[userID]; busy {
		return false
	}
	s.inProgress[userID] = struct{}{}
	return true
}

func (s *Service) end(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inProgress, userID)
}

func (s *Service) store(userID uuid.UUID, entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entry
	s.lastUpdated[userID] = entry.LastCalculated
}

// compute does the actual work. The caller must hold the in-progress marker.
// Record store failures abort the computation, leaving any prior entry in
// place; the marker is released by the caller regardless.
func (s *Service) compute(ctx context.Context, userID uuid.UUID) (*Entry, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Unknown user is not an error: record it as insufficient data.
			entry := insufficientEntry()
			s.store(userID, entry)
			return entry, nil
		}
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}

	claims, err := s.claims.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch claims for user %s: %w", userID, err)
	}

	if len(claims) == 0 {
		entry := insufficientEntry()
		s.store(userID, entry)
		return entry, nil
	}

	entry := &Entry{
		TotalClaims:    len(claims),
		LastCalculated: time.Now().UTC(),
	}
	for _, claim := range claims {
		switch claim.Status {
		case models.ClaimStatusPending:
			entry.PendingClaims++
		case models.ClaimStatusApproved:
			entry.ApprovedClaims++
		case models.ClaimStatusDenied:
			entry.DeniedClaims++
		}
	}

	profile := scoring.Profile{
		RiskScore: user.StoredRiskScore(),
		IsFlagged: user.IsFlagged,
	}

	// Score every historical claim as if it were current against the full
	// history, then aggregate. The per-claim mean plus fixed penalties is the
	// system's definition of a user's standing risk.
	var scores []int
	highRiskClaims := 0
	for _, claim := range claims {
		if len(claim.ClaimData) == 0 {
			continue
		}
		entry.TotalValue += claim.TotalValue()

		assessment := s.scorer.Compute(ctx, profile, claim.ClaimData, claims)
		scores = append(scores, assessment.FraudScore)
		if assessment.FraudScore > highRiskClaimThreshold {
			highRiskClaims++
		}
	}

	finalScore := 0
	if len(scores) > 0 {
		sum := 0
		for _, score := range scores {
			sum += score
		}
		avg := float64(sum) / float64(len(scores))
		finalScore = clampScore(int(math.Round(avg + float64(s.penalties(entry, highRiskClaims)))))
	}

	entry.RiskScore = &finalScore
	entry.IsFlagged = finalScore > 75

	if err := s.users.UpdateRiskScore(userID, finalScore, entry.IsFlagged); err != nil {
		return nil, fmt.Errorf("persist risk score for user %s: %w", userID, err)
	}

	s.store(userID, entry)
	return entry, nil
}

// penalties adds fixed surcharges for patterns the per-claim mean hides:
// denial rate, claim value, claim volume, and the share of high-risk claims.
func (s *Service) penalties(entry *Entry, highRiskClaims int) int {
	total := float64(entry.TotalClaims)
	penalty := 0

	denialRate := float64(entry.DeniedClaims) / total
	if denialRate > 0.5 {
		penalty += 20
	} else if denialRate > 0.3 {
		penalty += 10
	}

	avgClaimValue := entry.TotalValue / total
	if avgClaimValue > 500 {
		penalty += 15
	} else if avgClaimValue > 200 {
		penalty += 5
	}

	if entry.TotalClaims > 10 {
		penalty += 10
	} else if entry.TotalClaims > 5 {
		penalty += 5
	}

	highRiskRatio := float64(highRiskClaims) / total
	if highRiskRatio > 0.5 {
		penalty += 25
	} else if highRiskRatio > 0.3 {
		penalty += 15
	}

	return penalty
}

func insufficientEntry() *Entry {
	return &Entry{
		InsufficientData: true,
		LastCalculated:   time.Now().UTC(),
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
