package scoring

import (
	"testing"
	"time"

	"bastion/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyScore(t *testing.T) {
	tests := []struct {
		name    string
		history []models.Claim
		want    float64
	}{
		{
			name: "no history",
			want: 0,
		},
		{
			name: "three recent claims",
			history: []models.Claim{
				claimAt(1 * 24 * time.Hour),
				claimAt(10 * 24 * time.Hour),
				claimAt(29 * 24 * time.Hour),
			},
			want: 60,
		},
		{
			name: "old claims do not count",
			history: []models.Claim{
				claimAt(31 * 24 * time.Hour),
				claimAt(365 * 24 * time.Hour),
			},
			want: 0,
		},
		{
			name: "capped at 100",
			history: []models.Claim{
				claimAt(1 * 24 * time.Hour),
				claimAt(2 * 24 * time.Hour),
				claimAt(3 * 24 * time.Hour),
				claimAt(4 * 24 * time.Hour),
				claimAt(5 * 24 * time.Hour),
				claimAt(6 * 24 * time.Hour),
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frequencyScore(tt.history))
		})
	}
}

func TestValueDeviationScore(t *testing.T) {
	history := []models.Claim{
		claimAt(40*24*time.Hour, item("books", 100, 1)),
		claimAt(50*24*time.Hour, item("books", 100, 1)),
	}

	tests := []struct {
		name    string
		items   []models.ItemData
		history []models.Claim
		want    float64
	}{
		{
			name:  "no history, high absolute value",
			items: []models.ItemData{item("technology", 600, 1)},
			want:  30,
		},
		{
			name:  "no history, modest value",
			items: []models.ItemData{item("technology", 400, 1)},
			want:  10,
		},
		{
			name:    "double the historical average",
			items:   []models.ItemData{item("books", 200, 1)},
			history: history,
			want:    30,
		},
		{
			name:    "below the historical average",
			items:   []models.ItemData{item("books", 50, 1)},
			history: history,
			want:    0,
		},
		{
			name:    "extreme deviation capped at 100",
			items:   []models.ItemData{item("books", 5000, 1)},
			history: history,
			want:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, valueDeviationScore(tt.items, tt.history), 1e-9)
		})
	}
}

func TestCategoryScore(t *testing.T) {
	tests := []struct {
		name  string
		items []models.ItemData
		want  float64
	}{
		{
			name: "no items",
			want: 0,
		},
		{
			name:  "all high risk",
			items: []models.ItemData{item("Electronics", 100, 1), item("jewelry", 100, 1)},
			want:  80,
		},
		{
			name:  "half high risk",
			items: []models.ItemData{item("gaming", 100, 1), item("books", 100, 1)},
			want:  40,
		},
		{
			name:  "none high risk",
			items: []models.ItemData{item("clothing", 100, 1)},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, categoryScore(tt.items), 1e-9)
		})
	}
}

func TestQuantityScore_NewCustomer(t *testing.T) {
	tests := []struct {
		name  string
		items []models.ItemData
		want  float64
	}{
		{
			name:  "extreme single quantity",
			items: []models.ItemData{item("books", 10, 10)},
			want:  80,
		},
		{
			name:  "high single quantity",
			items: []models.ItemData{item("books", 10, 5)},
			want:  50,
		},
		{
			name:  "high total across items",
			items: []models.ItemData{item("books", 10, 4), item("books", 10, 4)},
			want:  40,
		},
		{
			name:  "ordinary quantities",
			items: []models.ItemData{item("books", 10, 1), item("books", 10, 2)},
			want:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantityScore(tt.items, nil), 1e-9)
		})
	}
}

func TestQuantityScore_AgainstHistory(t *testing.T) {
	history := []models.Claim{
		claimAt(40*24*time.Hour, item("books", 10, 1), item("books", 10, 1)),
		claimAt(50*24*time.Hour, item("books", 10, 2)),
	}

	t.Run("in line with history", func(t *testing.T) {
		score := quantityScore([]models.ItemData{item("books", 10, 1)}, history)
		assert.InDelta(t, 0, score, 1e-9)
	})

	t.Run("spike beyond historical maximum", func(t *testing.T) {
		// max 7 is more than triple the historical max of 2 (+40) and the
		// total of 7 exceeds five times the historical average (+30)
		score := quantityScore([]models.ItemData{item("books", 10, 7)}, history)
		assert.InDelta(t, 70, score, 1e-9)
	})

	t.Run("round number bulk quantities", func(t *testing.T) {
		items := []models.ItemData{item("books", 10, 10), item("books", 10, 15)}
		score := quantityScore(items, history)
		// beyond 3x max (+40), beyond 5x average total (+30), two
		// high-quantity items (+15), two round numbers (+15), capped
		assert.InDelta(t, 100, score, 1e-9)
	})
}
