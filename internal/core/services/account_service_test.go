package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	"github.com/zenbooks-app/ledger_backend/internal/core/services"
	"github.com/zenbooks-app/ledger_backend/internal/dto"

	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostedLinesInOpenPeriod(ctx context.Context, tenantID, accountID string) (bool, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tenantID, accountID, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo           *MockAccountRepository
	mockProjectionRepo *MockProjectionRepository
	service            portssvc.AccountSvcFacade
	tenantID           string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockProjectionRepo = new(MockProjectionRepository)
	suite.service = services.NewAccountService(suite.mockRepo, suite.mockProjectionRepo)
	suite.tenantID = "tenant-1"
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creator := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:             "1000",
		Name:             "Cash",
		AccountType:      "ASSET",
		IsCashEquivalent: true,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, creator)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(suite.tenantID, account.TenantID)
	suite.Equal("1000", account.Code)
	suite.Equal(domain.Asset, account.AccountType)
	// Omitted cash flow category defaults to OPERATING.
	suite.Equal(domain.Operating, account.CashFlowCategory)
	suite.True(account.IsCashEquivalent)
	suite.True(account.IsActive)
	suite.Equal(creator, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "SAVINGS"}

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CashEquivalentRequiresAsset() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "2100", Name: "Bank Overdraft", AccountType: "LIABILITY", IsCashEquivalent: true}

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByCode", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSET"}
	existing := &domain.Account{AccountID: uuid.NewString(), Code: "1000"}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(existing, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicateCode)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCodeRace() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSET"}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicateCode)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotFound() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{Code: "1100", Name: "Petty Cash", AccountType: "ASSET", ParentAccountID: &parentID}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, parentID).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentInactive() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{Code: "1100", Name: "Petty Cash", AccountType: "ASSET", ParentAccountID: &parentID}
	parent := &domain.Account{AccountID: parentID, AccountType: domain.Asset, IsActive: false}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, parentID).Return(parent, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentTypeMismatch() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{Code: "1100", Name: "Petty Cash", AccountType: "ASSET", ParentAccountID: &parentID}
	parent := &domain.Account{AccountID: parentID, AccountType: domain.Liability, IsActive: true}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.tenantID, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, parentID).Return(parent, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, "actor")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListAccounts_Empty() {
	ctx := context.Background()

	suite.mockRepo.On("ListAccounts", ctx, suite.tenantID, false).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, suite.tenantID, false)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	accountID := uuid.NewString()
	actor := uuid.NewString()
	account := &domain.Account{AccountID: accountID, IsActive: true}

	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(account, nil).Once()
	suite.mockRepo.On("HasPostedLinesInOpenPeriod", ctx, suite.tenantID, accountID).Return(false, nil).Once()
	suite.mockRepo.On("DeactivateAccount", ctx, suite.tenantID, accountID, actor, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, accountID, actor)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_InUse() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, IsActive: true}

	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(account, nil).Once()
	suite.mockRepo.On("HasPostedLinesInOpenPeriod", ctx, suite.tenantID, accountID).Return(true, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, accountID, "actor")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountInUse)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, IsActive: false}

	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, accountID, "actor")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, accountID, "actor")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_AggregatesBalances() {
	ctx := context.Background()
	asOf := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	accounts := []domain.Account{
		{AccountID: "acc-current", TenantID: suite.tenantID, Code: "1000", Name: "Current Assets", AccountType: domain.Asset, IsActive: true},
		{AccountID: "acc-cash", TenantID: suite.tenantID, Code: "1010", Name: "Cash", AccountType: domain.Asset, ParentAccountID: "acc-current", IsActive: true},
		{AccountID: "acc-ar", TenantID: suite.tenantID, Code: "1020", Name: "Accounts Receivable", AccountType: domain.Asset, ParentAccountID: "acc-current", IsActive: true},
		{AccountID: "acc-sales", TenantID: suite.tenantID, Code: "4000", Name: "Sales", AccountType: domain.Revenue, IsActive: true},
	}
	balances := map[string]decimal.Decimal{
		"acc-cash":  decimal.NewFromInt(700),
		"acc-ar":    decimal.NewFromInt(300),
		"acc-sales": decimal.NewFromInt(1000),
	}

	suite.mockRepo.On("ListAccounts", ctx, suite.tenantID, true).Return(accounts, nil).Once()
	suite.mockProjectionRepo.On("BalancesAsOf", ctx, suite.tenantID, asOf).Return(balances, nil).Once()

	roots, err := suite.service.GetAccountTree(ctx, suite.tenantID, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(roots, 2)

	// Roots are ordered by code.
	current := roots[0]
	suite.Equal("1000", current.Code)
	suite.Require().Len(current.Children, 2)
	suite.Equal("1010", current.Children[0].Code)
	suite.Equal("1020", current.Children[1].Code)

	// The parent has no postings of its own; its aggregate is the sum of
	// its children.
	suite.True(current.Balance.IsZero())
	suite.True(current.AggregateBalance.Equal(decimal.NewFromInt(1000)))
	suite.True(current.Children[0].AggregateBalance.Equal(decimal.NewFromInt(700)))

	sales := roots[1]
	suite.Equal("4000", sales.Code)
	suite.True(sales.AggregateBalance.Equal(decimal.NewFromInt(1000)))

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockProjectionRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_BalancesError() {
	ctx := context.Background()
	asOf := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	expectedErr := assert.AnError

	suite.mockRepo.On("ListAccounts", ctx, suite.tenantID, true).Return([]domain.Account{}, nil).Once()
	suite.mockProjectionRepo.On("BalancesAsOf", ctx, suite.tenantID, asOf).Return(nil, expectedErr).Once()

	roots, err := suite.service.GetAccountTree(ctx, suite.tenantID, asOf)

	suite.Require().Error(err)
	suite.Nil(roots)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
