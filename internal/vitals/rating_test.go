package vitals

import (
	"strings"
	"testing"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name   models.MetricName
		value  float64
		rating models.Rating
	}{
		{models.CLS, 0.05, models.RatingGood},
		{models.CLS, 0.1, models.RatingGood},
		{models.CLS, 0.2, models.RatingNeedsImprovement},
		{models.CLS, 0.3, models.RatingPoor},
		{models.FID, 99, models.RatingGood},
		{models.FID, 301, models.RatingPoor},
		{models.LCP, 2500, models.RatingGood},
		{models.LCP, 3999, models.RatingNeedsImprovement},
		{models.FCP, 1700, models.RatingGood},
		{models.FCP, 3500, models.RatingPoor},
		{models.TTFB, 900, models.RatingNeedsImprovement},
		{"INP", 10, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.name), func(t *testing.T) {
			require.Equal(t, tt.rating, Rate(tt.name, tt.value))
		})
	}
}

func TestNewID(t *testing.T) {
	id := NewID(models.TTFB)
	require.True(t, strings.HasPrefix(id, "ttfb-"))
	require.NotEqual(t, id, NewID(models.TTFB))
}
