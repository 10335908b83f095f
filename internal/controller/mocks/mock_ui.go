// Package mocks contains testify mocks for the controller package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deobf.dev/pkg/deobf/internal/controller"
	m "deobf.dev/pkg/deobf/internal/model"
)

// MockUI is a testify mock of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// NewMockUI creates a MockUI whose expectations are asserted on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	ui := &MockUI{}
	ui.Mock.Test(t)

	t.Cleanup(func() { ui.AssertExpectations(t) })

	return ui
}

// Start provides a mock function.
func (u *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := u.Called(ctx, options)
	return args.Error(0)
}

// Close provides a mock function.
func (u *MockUI) Close(ctx context.Context) {
	u.Called(ctx)
}

// Wait provides a mock function.
func (u *MockUI) Wait(ctx context.Context) {
	u.Called(ctx)
}

// DisplayRunInfo provides a mock function.
func (u *MockUI) DisplayRunInfo(ctx context.Context, roots []m.Path, threads int, dryRun bool) {
	u.Called(ctx, roots, threads, dryRun)
}

// DisplayPlan provides a mock function.
func (u *MockUI) DisplayPlan(ctx context.Context, root m.Path, tables *m.Tables) error {
	args := u.Called(ctx, root, tables)
	return args.Error(0)
}

// DisplayResult provides a mock function.
func (u *MockUI) DisplayResult(ctx context.Context, result m.Result, changes controller.ChangeSource) error {
	args := u.Called(ctx, result, changes)
	return args.Error(0)
}

// DisplayError provides a mock function.
func (u *MockUI) DisplayError(ctx context.Context, err error) {
	u.Called(ctx, err)
}
