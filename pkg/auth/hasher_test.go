package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEmpty(t, digest)
	assert.NotContains(t, digest, "correct horse battery staple")
	assert.True(t, strings.HasPrefix(digest, "$2"), "digest should be a bcrypt hash, got %q", digest)
}

func TestBcryptHasher_Hash_EmptyPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestBcryptHasher_Hash_Salted(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("password")
	require.NoError(t, err)
	second, err := hasher.Hash("password")
	require.NoError(t, err)

	// Same input must not produce the same digest.
	assert.NotEqual(t, first, second)

	for _, digest := range []string{first, second} {
		match, err := hasher.Verify("password", digest)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct password", password: "secret", want: true},
		{name: "wrong password", password: "not-secret", want: false},
		{name: "empty password", password: "", want: false},
		{name: "case sensitive", password: "Secret", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := hasher.Verify(tt.password, digest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, match)
		})
	}
}

func TestBcryptHasher_Verify_MalformedDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	match, err := hasher.Verify("secret", "not-a-bcrypt-digest")
	assert.Error(t, err)
	assert.False(t, match)
}

func TestNewBcryptHasher_CostClamping(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "valid cost kept", cost: bcrypt.MinCost, want: bcrypt.MinCost},
		{name: "too low falls back", cost: bcrypt.MinCost - 1, want: DefaultBcryptCost},
		{name: "too high falls back", cost: bcrypt.MaxCost + 1, want: DefaultBcryptCost},
		{name: "zero falls back", cost: 0, want: DefaultBcryptCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := NewBcryptHasher(tt.cost)
			assert.Equal(t, tt.want, hasher.cost)
		})
	}
}
