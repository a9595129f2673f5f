package archive

import "context"

// Sink stores rendered artifacts such as chart images.
type Sink interface {
	// Put stores data under name and returns its location
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)

	// Exists checks if an artifact exists under name
	Exists(ctx context.Context, name string) (bool, error)

	// List returns all names matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
