package ports

import (
	"context"
)

// Server defines the interface for the inbound notification listener
type Server interface {
	// Run serves requests until ctx is cancelled
	Run(ctx context.Context) error
}
