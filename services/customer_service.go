package services

import (
	"context"
	"errors"

	"storefront-service/models"
	"storefront-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerDefaults are the placeholder profile values used when the gateway
// identity carries no profile attributes.
type CustomerDefaults struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// CustomerService resolves gateway principals to customer profiles.
type CustomerService interface {
	ResolveCustomer(ctx context.Context, identity models.Identity) (*models.Customer, *ServiceError)
}

// customerServiceImpl implements CustomerService.
type customerServiceImpl struct {
	repo     repository.CustomerRepository
	defaults CustomerDefaults
	logger   *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo repository.CustomerRepository, defaults CustomerDefaults, logger *zap.Logger) CustomerService {
	return &customerServiceImpl{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// ResolveCustomer finds the customer linked to the principal, creating it
// lazily on first contact. Resolution is idempotent: repeated calls return
// the same row, and when two concurrent first requests both try to insert,
// the unique index on user_id fails one of them and it re-reads the winner.
func (s *customerServiceImpl) ResolveCustomer(ctx context.Context, identity models.Identity) (*models.Customer, *ServiceError) {
	customer, err := s.repo.FindByUserID(ctx, identity.UserID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to look up customer", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to resolve customer"}
	}

	customer = &models.Customer{
		UserID:    identity.UserID,
		FirstName: firstNonEmpty(identity.FirstName, s.defaults.FirstName),
		LastName:  firstNonEmpty(identity.LastName, s.defaults.LastName),
		Email:     firstNonEmpty(identity.Email, s.defaults.Email),
		Phone:     s.defaults.Phone,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if isDuplicateKey(err) {
			// A concurrent request created the row first; use theirs.
			existing, readErr := s.repo.FindByUserID(ctx, identity.UserID)
			if readErr != nil {
				s.logger.Error("Failed to re-read customer after duplicate insert",
					zap.String("user_id", identity.UserID), zap.Error(readErr))
				return nil, &ServiceError{StatusCode: 500, Message: "Failed to resolve customer"}
			}
			return existing, nil
		}
		s.logger.Error("Failed to create customer", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to resolve customer"}
	}

	s.logger.Info("Customer created", zap.String("user_id", identity.UserID), zap.Uint("customer_id", customer.ID))
	return customer, nil
}

func firstNonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
