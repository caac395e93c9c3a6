// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiredprod/tiredprod/internal/auth"
)

func TestNewGate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		gate, err := auth.NewGate("open sesame", "signing-secret")
		require.NoError(t, err)
		assert.NotNil(t, gate)
	})

	t.Run("empty passphrase rejected", func(t *testing.T) {
		_, err := auth.NewGate("", "signing-secret")
		require.Error(t, err)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := auth.NewGate("open sesame", "")
		require.Error(t, err)
	})
}

func TestGate_Verify(t *testing.T) {
	gate, err := auth.NewGate("open sesame", "signing-secret")
	require.NoError(t, err)

	t.Run("correct passphrase yields signature", func(t *testing.T) {
		sig, ok := gate.Verify("open sesame")
		require.True(t, ok)
		assert.Equal(t, gate.Signature(), sig)

		// HMAC-SHA256, hex encoded.
		raw, err := hex.DecodeString(sig)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	})

	t.Run("wrong passphrase yields nothing", func(t *testing.T) {
		sig, ok := gate.Verify("close sesame")
		assert.False(t, ok)
		assert.Empty(t, sig)
	})

	t.Run("empty passphrase yields nothing", func(t *testing.T) {
		sig, ok := gate.Verify("")
		assert.False(t, ok)
		assert.Empty(t, sig)
	})
}

func TestGate_Check(t *testing.T) {
	gate, err := auth.NewGate("open sesame", "signing-secret")
	require.NoError(t, err)

	sig, ok := gate.Verify("open sesame")
	require.True(t, ok)

	assert.True(t, gate.Check(sig))
	assert.False(t, gate.Check(""))
	assert.False(t, gate.Check("forged"))
	assert.False(t, gate.Check(sig+"00"))
}

func TestGate_SignatureDependsOnSecret(t *testing.T) {
	g1, err := auth.NewGate("open sesame", "secret-one")
	require.NoError(t, err)
	g2, err := auth.NewGate("open sesame", "secret-two")
	require.NoError(t, err)

	assert.NotEqual(t, g1.Signature(), g2.Signature())
	// A cookie minted under one secret fails under another.
	assert.False(t, g2.Check(g1.Signature()))
}
