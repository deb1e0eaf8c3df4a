package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lotuslake_go/internal/lake"
)

func TestParseSimulationName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]float64
	}{
		{"decimal values", "d1.5_g0.2", map[string]float64{"d": 1.5, "g": 0.2}},
		{"integer values", "d2_g1", map[string]float64{"d": 2, "g": 1}},
		{"multi letter keys", "re100_ppd64", map[string]float64{"re": 100, "ppd": 64}},
		{"upper case key", "Re100", map[string]float64{"Re": 100}},
		{"sign kept in key", "a-0.5", map[string]float64{"a-": -0.5}},
		{"space before value", "d 1.5_g0.2", map[string]float64{"d": 1.5, "g": 0.2}},
		{"single token", "g0.25", map[string]float64{"g": 0.25}},
		{"repeated key keeps last", "g1_g2", map[string]float64{"g": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSimulationName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSimulationNameErrors(t *testing.T) {
	for _, input := range []string{"dg", "d1_g", "baseline", "d1..5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSimulationName(input)
			require.Error(t, err)
			assert.True(t, lake.IsParseError(err), "expected parse error, got %v", err)
		})
	}
}
