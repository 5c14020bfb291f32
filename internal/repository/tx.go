package repository

import "context"

// Store bundles transaction-scoped repositories handed to a workflow
// callback. Every read and write made through it sees the same transaction.
type Store struct {
	Documents     DocumentRepository
	Requests      PermissionRequestRepository
	Notifications NotificationRepository
	Users         UserRepository
}

// TxManager runs a function inside a single database transaction.
// The transaction commits only when fn returns nil; any error (or panic)
// rolls back every write made through the Store.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(s *Store) error) error
}
