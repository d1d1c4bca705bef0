package auth

import (
	"context"
)

// Identity is the verified subject of a bearer credential.
type Identity struct {
	UID    string
	Email  string
	Claims map[string]any
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
