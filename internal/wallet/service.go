package wallet

import (
	"context"
	"strings"
)

// Service exposes wallet operations over the repository.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate provisions the wallet for (owner, currency) on first use.
func (s *Service) GetOrCreate(ctx context.Context, ownerID, currency string) (Wallet, error) {
	return s.repo.GetOrCreate(ctx, ownerID, strings.ToUpper(currency))
}

// Get retrieves a wallet by identifier.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	return s.repo.Get(ctx, id)
}

// Find retrieves the wallet for an (owner, currency) pair without creating it.
func (s *Service) Find(ctx context.Context, ownerID, currency string) (Wallet, error) {
	return s.repo.FindByOwnerAndCurrency(ctx, ownerID, strings.ToUpper(currency))
}
