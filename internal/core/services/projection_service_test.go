package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/services"

	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
)

// MockProjectionRepository is a mock type for the ProjectionRepository interface
type MockProjectionRepository struct {
	mock.Mock
}

func (m *MockProjectionRepository) BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockProjectionRepository) BalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockProjectionRepository) CachedBalances(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockProjectionRepository) RebuildBalances(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// --- Test Suite Setup ---

type ProjectionServiceTestSuite struct {
	suite.Suite
	mockRepo *MockProjectionRepository
	service  portssvc.ProjectionSvcFacade
	tenantID string
}

func (suite *ProjectionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockProjectionRepository)
	suite.service = services.NewProjectionService(suite.mockRepo)
	suite.tenantID = "tenant-1"
}

// --- Test Cases ---

func (suite *ProjectionServiceTestSuite) TestBalanceAsOf_Success() {
	ctx := context.Background()
	asOf := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	expected := decimal.RequireFromString("1234.56")

	suite.mockRepo.On("BalanceAsOf", ctx, suite.tenantID, "acc-cash", asOf).Return(expected, nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, suite.tenantID, "acc-cash", asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(expected))

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestBalanceAsOf_RepoError() {
	ctx := context.Background()
	asOf := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	expectedErr := assert.AnError

	suite.mockRepo.On("BalanceAsOf", ctx, suite.tenantID, "acc-cash", asOf).Return(decimal.Zero, expectedErr).Once()

	_, err := suite.service.BalanceAsOf(ctx, suite.tenantID, "acc-cash", asOf)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestRebuild_Success() {
	ctx := context.Background()

	suite.mockRepo.On("RebuildBalances", ctx, suite.tenantID).Return(nil).Once()

	err := suite.service.Rebuild(ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestRebuild_RepoError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockRepo.On("RebuildBalances", ctx, suite.tenantID).Return(expectedErr).Once()

	err := suite.service.Rebuild(ctx, suite.tenantID)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestVerifyConsistency_Match() {
	ctx := context.Background()
	balances := map[string]decimal.Decimal{
		"acc-cash":  decimal.NewFromInt(500),
		"acc-sales": decimal.NewFromInt(500),
	}

	suite.mockRepo.On("BalancesAsOf", ctx, suite.tenantID, mock.AnythingOfType("time.Time")).Return(balances, nil).Once()
	suite.mockRepo.On("CachedBalances", ctx, suite.tenantID).Return(balances, nil).Once()

	err := suite.service.VerifyConsistency(ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestVerifyConsistency_CachedZeroForMissingAccounts() {
	ctx := context.Background()
	// An account with no cached row counts as zero, and a cached zero row
	// with no posted activity is fine.
	derived := map[string]decimal.Decimal{
		"acc-cash": decimal.Zero,
	}
	cached := map[string]decimal.Decimal{
		"acc-old": decimal.Zero,
	}

	suite.mockRepo.On("BalancesAsOf", ctx, suite.tenantID, mock.AnythingOfType("time.Time")).Return(derived, nil).Once()
	suite.mockRepo.On("CachedBalances", ctx, suite.tenantID).Return(cached, nil).Once()

	err := suite.service.VerifyConsistency(ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestVerifyConsistency_Drift() {
	ctx := context.Background()
	derived := map[string]decimal.Decimal{
		"acc-cash": decimal.NewFromInt(500),
	}
	cached := map[string]decimal.Decimal{
		"acc-cash": decimal.NewFromInt(450),
	}

	suite.mockRepo.On("BalancesAsOf", ctx, suite.tenantID, mock.AnythingOfType("time.Time")).Return(derived, nil).Once()
	suite.mockRepo.On("CachedBalances", ctx, suite.tenantID).Return(cached, nil).Once()

	err := suite.service.VerifyConsistency(ctx, suite.tenantID)

	suite.Require().Error(err)
	suite.True(apperrors.IsConsistencyError(err))
	suite.Contains(err.Error(), "acc-cash")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProjectionServiceTestSuite) TestVerifyConsistency_StaleCachedRow() {
	ctx := context.Background()
	derived := map[string]decimal.Decimal{}
	cached := map[string]decimal.Decimal{
		"acc-ghost": decimal.NewFromInt(75),
	}

	suite.mockRepo.On("BalancesAsOf", ctx, suite.tenantID, mock.AnythingOfType("time.Time")).Return(derived, nil).Once()
	suite.mockRepo.On("CachedBalances", ctx, suite.tenantID).Return(cached, nil).Once()

	err := suite.service.VerifyConsistency(ctx, suite.tenantID)

	suite.Require().Error(err)
	suite.True(apperrors.IsConsistencyError(err))
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestProjectionService(t *testing.T) {
	suite.Run(t, new(ProjectionServiceTestSuite))
}
