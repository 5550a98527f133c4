package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodeArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []byte
		wantErr error
	}{
		{"single token", []string{"89c8"}, []byte{0x89, 0xC8}, nil},
		{"split across args", []string{"89", "c8"}, []byte{0x89, 0xC8}, nil},
		{"embedded whitespace", []string{"90 89 c8"}, []byte{0x90, 0x89, 0xC8}, nil},
		{"empty", nil, nil, ErrMissingCode},
		{"odd length", []string{"891"}, nil, ErrOddHexLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCodeArg(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexDigit(t *testing.T) {
	assert.Equal(t, byte('0'), hexDigit(0))
	assert.Equal(t, byte('9'), hexDigit(9))
	assert.Equal(t, byte('a'), hexDigit(10))
	assert.Equal(t, byte('f'), hexDigit(15))
}
