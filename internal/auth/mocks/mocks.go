// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

// Package mocks provides testify mocks for the auth repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tiredprod/tiredprod/internal/auth"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a mock implementation of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a new MockUserRepository that asserts its
// expectations at test cleanup.
func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRememberTokenRepository is a mock implementation of
// auth.RememberTokenRepository.
type MockRememberTokenRepository struct {
	mock.Mock
}

// NewMockRememberTokenRepository creates a new MockRememberTokenRepository
// that asserts its expectations at test cleanup.
func NewMockRememberTokenRepository(t testingT) *MockRememberTokenRepository {
	m := &MockRememberTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRememberTokenRepository) Create(ctx context.Context, token *auth.RememberToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRememberTokenRepository) GetActiveByTokenHash(ctx context.Context, tokenHash string) (*auth.RememberToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*auth.RememberToken)
	return token, args.Error(1)
}

func (m *MockRememberTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockRememberTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRememberTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockOTPRepository is a mock implementation of auth.OTPRepository.
type MockOTPRepository struct {
	mock.Mock
}

// NewMockOTPRepository creates a new MockOTPRepository that asserts its
// expectations at test cleanup.
func NewMockOTPRepository(t testingT) *MockOTPRepository {
	m := &MockOTPRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOTPRepository) Replace(ctx context.Context, challenge *auth.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockOTPRepository) LatestActiveByEmail(ctx context.Context, email string) (*auth.OTPChallenge, error) {
	args := m.Called(ctx, email)
	challenge, _ := args.Get(0).(*auth.OTPChallenge)
	return challenge, args.Error(1)
}

func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository          = (*MockUserRepository)(nil)
	_ auth.RememberTokenRepository = (*MockRememberTokenRepository)(nil)
	_ auth.OTPRepository           = (*MockOTPRepository)(nil)
)
