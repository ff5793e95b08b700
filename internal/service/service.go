// Package service contains the business logic for the eRJ API.
// Services validate inputs, enforce business rules, ask the authorization
// policy, and orchestrate repo calls. No SQL lives here: services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/erj-report/internal/domain"
)

// Authorizer decides whether the caller may perform an action.
// *policy.Authorizer satisfies it; a nil Authorizer allows everything.
type Authorizer interface {
	Authorize(ctx context.Context, req domain.AccessRequest) error
}

func authorize(ctx context.Context, a Authorizer, req domain.AccessRequest) error {
	if a == nil {
		return nil
	}
	req.Actor = domain.ActorFrom(ctx)
	return a.Authorize(ctx, req)
}

// storeErr wraps a repo error for op. Missing records and rejected input keep
// their own meaning; anything else is a persistence failure the caller may
// retry.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
