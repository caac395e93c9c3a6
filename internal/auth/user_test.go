// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tiredprod/tiredprod/internal/auth"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid address", "anna@example.com", false},
		{"valid with plus tag", "anna+shoots@example.com", false},
		{"empty", "", true},
		{"missing domain", "anna@", true},
		{"missing local part", "@example.com", true},
		{"display name not allowed", "Anna <anna@example.com>", true},
		{"bare word", "anna", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "anna_k", false},
		{"minimum length", "abc", false},
		{"maximum length", "a" + strings.Repeat("b", auth.MaxUsernameLength-1), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "a" + strings.Repeat("b", auth.MaxUsernameLength), true},
		{"starts with digit", "1anna", true},
		{"starts with underscore", "_anna", true},
		{"contains space", "anna k", true},
		{"contains hyphen", "anna-k", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "anna@example.com", auth.NormalizeEmail("  Anna@Example.COM  "))
	assert.Equal(t, "", auth.NormalizeEmail("   "))
}

func TestUser_IsPrivileged(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{auth.RoleAdmin, true},
		{auth.RoleManager, true},
		{auth.RoleStaff, false},
		{auth.RolePhotographer, false},
		{auth.RoleRegistered, false},
		{auth.RoleGuest, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			u := &auth.User{Role: tt.role}
			assert.Equal(t, tt.want, u.IsPrivileged())
		})
	}
}
