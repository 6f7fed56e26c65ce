package mock

import (
	context "context"
	reflect "reflect"

	models "github.com/abrams/magicbinder/magicbinder/database/models"
	repositories "github.com/abrams/magicbinder/magicbinder/database/repositories"
	uuid "github.com/google/uuid"
	bun "github.com/uptrace/bun"
	gomock "go.uber.org/mock/gomock"
)

// MockCardRepository is a mock of CardRepository interface.
type MockCardRepository struct {
	ctrl     *gomock.Controller
	recorder *MockCardRepositoryMockRecorder
	isgomock struct{}
}

// MockCardRepositoryMockRecorder is the mock recorder for MockCardRepository.
type MockCardRepositoryMockRecorder struct {
	mock *MockCardRepository
}

// NewMockCardRepository creates a new mock instance.
func NewMockCardRepository(ctrl *gomock.Controller) *MockCardRepository {
	mock := &MockCardRepository{ctrl: ctrl}
	mock.recorder = &MockCardRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCardRepository) EXPECT() *MockCardRepositoryMockRecorder {
	return m.recorder
}

// GetByID mocks base method.
func (m *MockCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*models.Card)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockCardRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockCardRepository)(nil).GetByID), ctx, id)
}

// NamesMatching mocks base method.
func (m *MockCardRepository) NamesMatching(ctx context.Context, fragment string, limit int) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NamesMatching", ctx, fragment, limit)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// NamesMatching indicates an expected call of NamesMatching.
func (mr *MockCardRepositoryMockRecorder) NamesMatching(ctx, fragment, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NamesMatching", reflect.TypeOf((*MockCardRepository)(nil).NamesMatching), ctx, fragment, limit)
}

// Search mocks base method.
func (m *MockCardRepository) Search(ctx context.Context, filters repositories.CardFilters, offset, limit int) ([]*models.Card, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Search", ctx, filters, offset, limit)
	ret0, _ := ret[0].([]*models.Card)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Search indicates an expected call of Search.
func (mr *MockCardRepositoryMockRecorder) Search(ctx, filters, offset, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Search", reflect.TypeOf((*MockCardRepository)(nil).Search), ctx, filters, offset, limit)
}

// UpsertBatch mocks base method.
func (m *MockCardRepository) UpsertBatch(ctx context.Context, cards []*models.Card, faces []*models.CardFace) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertBatch", ctx, cards, faces)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpsertBatch indicates an expected call of UpsertBatch.
func (mr *MockCardRepositoryMockRecorder) UpsertBatch(ctx, cards, faces any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertBatch", reflect.TypeOf((*MockCardRepository)(nil).UpsertBatch), ctx, cards, faces)
}

// MockBinderRepository is a mock of BinderRepository interface.
type MockBinderRepository struct {
	ctrl     *gomock.Controller
	recorder *MockBinderRepositoryMockRecorder
	isgomock struct{}
}

// MockBinderRepositoryMockRecorder is the mock recorder for MockBinderRepository.
type MockBinderRepositoryMockRecorder struct {
	mock *MockBinderRepository
}

// NewMockBinderRepository creates a new mock instance.
func NewMockBinderRepository(ctrl *gomock.Controller) *MockBinderRepository {
	mock := &MockBinderRepository{ctrl: ctrl}
	mock.recorder = &MockBinderRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBinderRepository) EXPECT() *MockBinderRepositoryMockRecorder {
	return m.recorder
}

// Add mocks base method.
func (m *MockBinderRepository) Add(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Add", ctx, db, userID, cardID, amount)
	ret0, _ := ret[0].(error)
	return ret0
}

// Add indicates an expected call of Add.
func (mr *MockBinderRepositoryMockRecorder) Add(ctx, db, userID, cardID, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Add", reflect.TypeOf((*MockBinderRepository)(nil).Add), ctx, db, userID, cardID, amount)
}

// Quantity mocks base method.
func (m *MockBinderRepository) Quantity(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Quantity", ctx, db, userID, cardID)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Quantity indicates an expected call of Quantity.
func (mr *MockBinderRepositoryMockRecorder) Quantity(ctx, db, userID, cardID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Quantity", reflect.TypeOf((*MockBinderRepository)(nil).Quantity), ctx, db, userID, cardID)
}

// QuantitiesFor mocks base method.
func (m *MockBinderRepository) QuantitiesFor(ctx context.Context, userID int64, cardIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "QuantitiesFor", ctx, userID, cardIDs)
	ret0, _ := ret[0].(map[uuid.UUID]int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// QuantitiesFor indicates an expected call of QuantitiesFor.
func (mr *MockBinderRepositoryMockRecorder) QuantitiesFor(ctx, userID, cardIDs any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "QuantitiesFor", reflect.TypeOf((*MockBinderRepository)(nil).QuantitiesFor), ctx, userID, cardIDs)
}

// Remove mocks base method.
func (m *MockBinderRepository) Remove(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remove", ctx, db, userID, cardID, amount)
	ret0, _ := ret[0].(error)
	return ret0
}

// Remove indicates an expected call of Remove.
func (mr *MockBinderRepositoryMockRecorder) Remove(ctx, db, userID, cardID, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockBinderRepository)(nil).Remove), ctx, db, userID, cardID, amount)
}

// Search mocks base method.
func (m *MockBinderRepository) Search(ctx context.Context, userID int64, filters repositories.CardFilters, offset, limit int) ([]*models.BinderEntry, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Search", ctx, userID, filters, offset, limit)
	ret0, _ := ret[0].([]*models.BinderEntry)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Search indicates an expected call of Search.
func (mr *MockBinderRepositoryMockRecorder) Search(ctx, userID, filters, offset, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Search", reflect.TypeOf((*MockBinderRepository)(nil).Search), ctx, userID, filters, offset, limit)
}
