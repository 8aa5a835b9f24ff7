package mongo

import (
	"context"
	"fmt"
)

// WithinTx runs fn inside a multi-document transaction. The driver threads
// the session through the context, so repository methods called with the
// callback's ctx participate in the transaction without knowing about it.
// Any error from fn aborts the transaction; stock levels and cart contents
// roll back to their pre-call state.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}
