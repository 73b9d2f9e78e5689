package service

import (
	"context"
	"log/slog"

	"devconnector/internal/auth"
	"devconnector/internal/cache"
	"devconnector/internal/repository"
)

type AccountService struct {
	accountRepo repository.AccountRepository
	cache       *cache.Store
	tokens      TokenIssuer
}

func NewAccountService(accountRepo repository.AccountRepository, store *cache.Store, tokens TokenIssuer) *AccountService {
	return &AccountService{accountRepo: accountRepo, cache: store, tokens: tokens}
}

// DeleteAccount removes the user's posts, profile and user record atomically,
// then drops cached copies and revokes the caller's token.
func (s *AccountService) DeleteAccount(ctx context.Context, id auth.Identity) error {
	if err := s.accountRepo.DeleteCascade(ctx, id.UserID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.UserKey(id.UserID))
	if err := s.tokens.Revoke(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to revoke token after account deletion", slog.String("error", err.Error()))
	}
	return nil
}
