package vitals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionWindow_Add(t *testing.T) {
	tests := []struct {
		name   string
		starts []float64
		values []float64
		want   float64
	}{
		{"single", []float64{0}, []float64{0.2}, 0.2},
		{"end to end example", []float64{0, 400, 900}, []float64{0.01, 0.02, 0.015}, 0.045},
		{"exactly one second gap resets", []float64{0, 1000}, []float64{0.1, 0.3}, 0.3},
		{"just under one second gap extends", []float64{0, 999.9}, []float64{0.1, 0.3}, 0.4},
		{"five second span resets", []float64{0, 900, 1800, 2700, 3600, 4500, 5000}, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.7}, 0.7},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var w sessionWindow
			var got float64
			for i := range tt.starts {
				got = w.add(tt.starts[i], tt.values[i])
			}
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
