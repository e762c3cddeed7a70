package class

import "context"

// Repository defines owner-scoped read access to classes.
type Repository interface {
	// ListActive returns the owner's classes with status 'active'.
	ListActive(ctx context.Context, ownerID string) ([]*Class, error)
	// ListAll returns every class of the owner, paused included.
	ListAll(ctx context.Context, ownerID string) ([]*Class, error)
}
