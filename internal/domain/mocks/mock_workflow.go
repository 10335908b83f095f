// Package mocks contains testify mocks for the domain package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deobf.dev/pkg/deobf/internal/domain"
)

// MockWorkflow is a testify mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted on
// cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	wf := &MockWorkflow{}
	wf.Mock.Test(t)

	t.Cleanup(func() { wf.AssertExpectations(t) })

	return wf
}

// Run provides a mock function.
func (w *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	ret := w.Called(ctx, args)
	return ret.Error(0)
}

// List provides a mock function.
func (w *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	ret := w.Called(ctx, args)
	return ret.Error(0)
}

// View provides a mock function.
func (w *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := w.Called(ctx, args)
	return ret.Error(0)
}
