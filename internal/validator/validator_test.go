package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Gateway string `mapstructure:"gateway" validate:"dotted_ipv4"`
	Address string `mapstructure:"address" validate:"hostport"`
	Level   string `mapstructure:"level" validate:"loglevel"`
	Workers int    `mapstructure:"workers" validate:"min=1"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{
			name: "valid",
			in:   sample{Gateway: "192.168.1.1", Address: ":8080", Level: "debug", Workers: 4},
		},
		{
			name: "empty optional fields",
			in:   sample{Workers: 1},
		},
		{
			name:    "bad gateway",
			in:      sample{Gateway: "192.168.1.300", Workers: 1},
			wantErr: "gateway must be a dotted-quad IPv4 address",
		},
		{
			name:    "bad address",
			in:      sample{Address: "localhost", Workers: 1},
			wantErr: "address must be in host:port form",
		},
		{
			name:    "bad level",
			in:      sample{Level: "verbose", Workers: 1},
			wantErr: "level must be one of debug, info, warn, error",
		},
		{
			name:    "too few workers",
			in:      sample{Workers: 0},
			wantErr: "workers must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("10.0.0.1", "dotted_ipv4"))
	assert.Error(t, v.Var("10.0.0", "dotted_ipv4"))
}
