package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMSISDN(t *testing.T) {
	plan := DefaultGhanaPlan()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "international with plus", input: "+233241234567", expected: "233241234567"},
		{name: "international without plus", input: "233241234567", expected: "233241234567"},
		{name: "local form", input: "0241234567", expected: "233241234567"},
		{name: "whitespace trimmed", input: "  0541234567 ", expected: "233541234567"},
		{name: "wrong country code", input: "+234801234567", wantErr: true},
		{name: "unknown operator prefix", input: "0991234567", wantErr: true},
		{name: "too short", input: "024123456", wantErr: true},
		{name: "too long", input: "02412345678", wantErr: true},
		{name: "non digits", input: "024123456a", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMSISDN(plan, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeMSISDNAllOperatorPrefixes(t *testing.T) {
	plan := DefaultGhanaPlan()

	for _, prefix := range plan.OperatorPrefixes {
		got, err := NormalizeMSISDN(plan, "0"+prefix+"1234567")
		require.NoError(t, err, "prefix %s", prefix)
		assert.Equal(t, "233"+prefix+"1234567", got)
	}
}
