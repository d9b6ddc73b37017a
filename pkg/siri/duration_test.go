package siri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelay(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"PT5M30S", 330000},
		{"-PT1H", -3600000},
		{"PT0S", 0},
		{"PT2M15S", 135000},
		{"PT2.5S", 2500},
		{"-PT2M15S", -135000},
		{"PT1H30M", 5400000},
		{"P1DT1H", 90000000},
		{"P1YT", 365 * 24 * 60 * 60 * 1000},
		{"P2MT", 2 * 30 * 24 * 60 * 60 * 1000},
		{"PT", 0},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			ms, err := ParseDelay(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, ms)
		})
	}
}

func TestParseDelayInvalid(t *testing.T) {
	for _, input := range []string{"garbage", "", "5M30S", "123"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDelay(input)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, input, parseErr.Input)
		})
	}
}

func TestParseDelayNegationSymmetry(t *testing.T) {
	for _, input := range []string{"PT5M30S", "PT1H", "P1DT2H3M4S", "PT0.5S"} {
		positive, err := ParseDelay(input)
		require.NoError(t, err)

		negative, err := ParseDelay("-" + input)
		require.NoError(t, err)

		assert.Equal(t, positive, -negative, input)
	}
}
