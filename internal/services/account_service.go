package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

// accountService handles linked bank accounts.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// LinkAccount links a provider account to a user. A provider account can be
// linked to only one user.
func (s *accountService) LinkAccount(input AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&input); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&models.Account{}).
		Where("provider_account_id = ?", input.ProviderAccountID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrAccountAlreadyLinked
	}

	account := newAccount(input)
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("account linked",
		"user_id", account.UserID,
		"account_id", account.ID,
		"institution", account.Institution,
	)
	return account, nil
}

// GetUserAccounts retrieves a paginated list of active accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ? AND is_active = ?", userID, true)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListActiveAccounts returns every active account of a user, oldest first.
func (s *accountService) ListActiveAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC, id ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ? AND is_active = ?", accountID, userID, true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpsertProviderAccount creates or refreshes an account by provider account
// id. The boolean reports whether the account was created. An existing
// account is never moved to a different user.
func (s *accountService) UpsertProviderAccount(input AccountInput) (*models.Account, bool, error) {
	if err := validateAccountInput(&input); err != nil {
		return nil, false, err
	}

	var account models.Account
	err := s.db.Where("provider_account_id = ?", input.ProviderAccountID).First(&account).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := newAccount(input)
		if err := s.db.Create(created).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return created, true, nil
	case err != nil:
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if account.UserID != input.UserID {
		return nil, false, apperrors.ErrAccountAlreadyLinked
	}

	updates := map[string]interface{}{
		"name":        input.Name,
		"institution": input.Institution,
		"type":        input.Type,
		"currency":    input.Currency,
		"mask":        input.Mask,
	}
	if err := s.db.Model(&account).Updates(updates).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, false, nil
}

// ListLinkedAccounts returns all active accounts across users for the sync worker.
func (s *accountService) ListLinkedAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("is_active = ?", true).Order("created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// MarkSynced records the time of the last successful import.
func (s *accountService) MarkSynced(accountID string, at time.Time) error {
	res := s.db.Model(&models.Account{}).Where("id = ?", accountID).Update("last_synced_at", at)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func validateAccountInput(input *AccountInput) error {
	input.Name = strings.TrimSpace(input.Name)
	switch {
	case input.UserID == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "user ID is required")
	case input.ProviderAccountID == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "provider account ID is required")
	case input.Name == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	switch input.Type {
	case models.AccountTypeChecking, models.AccountTypeSavings, models.AccountTypeCreditCard, models.AccountTypeLoan:
	case "":
		input.Type = models.AccountTypeChecking
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported account type "+string(input.Type))
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	return nil
}

func newAccount(input AccountInput) *models.Account {
	return &models.Account{
		UserID:            input.UserID,
		Name:              input.Name,
		Institution:       input.Institution,
		Type:              input.Type,
		Currency:          input.Currency,
		Mask:              input.Mask,
		ProviderAccountID: input.ProviderAccountID,
		IsActive:          true,
	}
}
