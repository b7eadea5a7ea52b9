package wordle

import (
	"github.com/jward/wordle/internal/checkout"
	"github.com/jward/wordle/internal/source"
)

var (
	// ErrDecode reports file content that is not valid in the declared encoding.
	ErrDecode = source.ErrDecode
	// ErrIO reports a read, stat or walk failure. The underlying
	// *fs.PathError stays reachable through errors.As.
	ErrIO = source.ErrIO
	// ErrCheckout reports a repository that could not be materialized.
	ErrCheckout = checkout.ErrCheckout
)
