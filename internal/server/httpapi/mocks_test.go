package httpapi

import (
	"context"

	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/stretchr/testify/mock"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Authenticate(ctx context.Context, email, password string) (string, error) {
	args := m.Called(email, password)
	return args.String(0), args.Error(1)
}

func (m *MockUsers) UserByToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) SyncFavourites(ctx context.Context, userID int64, pkg *dto.FavouritesPackage) (*dto.FavouritesPackage, bool, error) {
	args := m.Called(userID, pkg)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*dto.FavouritesPackage), args.Bool(1), args.Error(2)
}

func (m *MockSyncer) SyncHistory(ctx context.Context, userID int64, pkg *dto.HistoryPackage) (*dto.HistoryPackage, bool, error) {
	args := m.Called(userID, pkg)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*dto.HistoryPackage), args.Bool(1), args.Error(2)
}

func (m *MockSyncer) Favourites(ctx context.Context, userID int64) (*dto.FavouritesPackage, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FavouritesPackage), args.Error(1)
}

func (m *MockSyncer) History(ctx context.Context, userID int64) (*dto.HistoryPackage, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HistoryPackage), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetManga(ctx context.Context, id int64) (*dto.Manga, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Manga), args.Error(1)
}

func (m *MockCatalog) ListManga(ctx context.Context, offset, limit int) ([]dto.Manga, error) {
	args := m.Called(offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.Manga), args.Error(1)
}

func (m *MockCatalog) Stats(ctx context.Context) (*dto.Stats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Stats), args.Error(1)
}
