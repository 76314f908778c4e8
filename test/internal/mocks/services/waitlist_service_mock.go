package services

import (
	"context"
	"go-ticket-sales-engine/internal/model"

	"github.com/stretchr/testify/mock"
)

type WaitlistServiceMock struct {
	mock.Mock
}

func NewWaitlistServiceMock() *WaitlistServiceMock {
	return &WaitlistServiceMock{}
}

func (m *WaitlistServiceMock) Join(ctx context.Context, req model.JoinWaitlistRequest) (*model.WaitlistEntry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitlistEntry), args.Error(1)
}

func (m *WaitlistServiceMock) Leave(ctx context.Context, entryID int) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *WaitlistServiceMock) GetEntry(ctx context.Context, entryID int) (*model.WaitlistEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitlistEntry), args.Error(1)
}

func (m *WaitlistServiceMock) ListByScope(ctx context.Context, eventID int, tierID *int) ([]*model.WaitlistEntry, error) {
	args := m.Called(ctx, eventID, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WaitlistEntry), args.Error(1)
}
