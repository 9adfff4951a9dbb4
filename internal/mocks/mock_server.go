// Package mocks holds testify mocks for the model interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
)

// MockServer is a mock model.Server.
type MockServer struct {
	mock.Mock
}

var _ model.Server = (*MockServer)(nil)

// NewMockServer creates a MockServer whose expectations are asserted when
// the test ends.
func NewMockServer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockServer {
	m := &MockServer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockServer) Instance(name objname.Name) (model.Instance, error) {
	ret := m.Called(name)
	return ret.Get(0).(model.Instance), ret.Error(1)
}

func (m *MockServer) IsRegistered(name objname.Name) bool {
	return m.Called(name).Bool(0)
}

func (m *MockServer) IsInstanceOf(name objname.Name, className string) (bool, error) {
	ret := m.Called(name, className)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockServer) Descriptor(name objname.Name) (model.Descriptor, error) {
	ret := m.Called(name)
	return ret.Get(0).(model.Descriptor), ret.Error(1)
}

func (m *MockServer) Attribute(name objname.Name, attr string) (any, error) {
	ret := m.Called(name, attr)
	return ret.Get(0), ret.Error(1)
}

func (m *MockServer) Attributes(name objname.Name, attrs []string) (map[string]any, error) {
	ret := m.Called(name, attrs)
	var out map[string]any
	if v := ret.Get(0); v != nil {
		out = v.(map[string]any)
	}
	return out, ret.Error(1)
}

func (m *MockServer) SetAttribute(name objname.Name, attr string, value any) error {
	return m.Called(name, attr, value).Error(0)
}

func (m *MockServer) SetAttributes(name objname.Name, values map[string]any) (map[string]any, error) {
	ret := m.Called(name, values)
	var out map[string]any
	if v := ret.Get(0); v != nil {
		out = v.(map[string]any)
	}
	return out, ret.Error(1)
}

func (m *MockServer) Invoke(ctx context.Context, name objname.Name, op string, params []any) (any, error) {
	ret := m.Called(ctx, name, op, params)
	return ret.Get(0), ret.Error(1)
}

func (m *MockServer) QueryNames(pattern *objname.Name, pred model.Predicate) objname.Set {
	return m.Called(pattern, pred).Get(0).(objname.Set)
}

func (m *MockServer) QueryInstances(pattern *objname.Name, pred model.Predicate) model.InstanceSet {
	return m.Called(pattern, pred).Get(0).(model.InstanceSet)
}

func (m *MockServer) DefaultDomain() string {
	return m.Called().String(0)
}

func (m *MockServer) Domains() []string {
	ret := m.Called()
	if v := ret.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func (m *MockServer) Count() int {
	return m.Called().Int(0)
}

func (m *MockServer) Register(name objname.Name, className string, res model.Resource) (model.Instance, error) {
	ret := m.Called(name, className, res)
	return ret.Get(0).(model.Instance), ret.Error(1)
}

func (m *MockServer) Unregister(name objname.Name) error {
	return m.Called(name).Error(0)
}
