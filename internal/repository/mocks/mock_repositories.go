package mocks

import (
	"context"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, from, to model.DocumentStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) SetStatus(ctx context.Context, id string, status model.DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) ApplyReplace(ctx context.Context, id, storagePath, fileName string) (bool, error) {
	args := m.Called(ctx, id, storagePath, fileName)
	return args.Bool(0), args.Error(1)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *model.PermissionRequest) (*model.PermissionRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id string) (*model.PermissionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionRequest), args.Error(1)
}

func (m *MockRequestRepository) List(ctx context.Context, q repository.RequestQuery) (*repository.PageResult[model.PermissionRequest], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.PermissionRequest]), args.Error(1)
}

func (m *MockRequestRepository) Resolve(ctx context.Context, id string, status model.RequestStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, reviewerID, reviewedAt)
	return args.Bool(0), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) List(ctx context.Context, q repository.NotificationQuery) (*repository.PageResult[model.Notification], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Notification]), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListIDsByRole(ctx context.Context, role model.Role) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// StubTxManager satisfies repository.TxManager by invoking the callback
// synchronously with a Store of mocks. BeginErr simulates a transaction
// that cannot even be opened.
type StubTxManager struct {
	Store    *repository.Store
	BeginErr error
}

func (m *StubTxManager) WithinTx(ctx context.Context, fn func(s *repository.Store) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(m.Store)
}

// NewMockStore wires a Store with fresh mocks for every repository and
// returns them alongside for expectation setup.
func NewMockStore() (*repository.Store, *MockDocumentRepository, *MockRequestRepository, *MockNotificationRepository, *MockUserRepository) {
	docs := new(MockDocumentRepository)
	reqs := new(MockRequestRepository)
	notifs := new(MockNotificationRepository)
	users := new(MockUserRepository)
	return &repository.Store{
		Documents:     docs,
		Requests:      reqs,
		Notifications: notifs,
		Users:         users,
	}, docs, reqs, notifs, users
}
