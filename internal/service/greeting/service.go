package greeting

import "context"

// Prefix is prepended to every name.
const Prefix = "Hello, my name is "

// Greeting is the result of introducing a name.
type Greeting struct {
	Name    string
	Message string
}

// Service defines greeting operations.
//
// Implementations must not alter the name: no trimming, no escaping, no
// length checks. The empty name is valid.
type Service interface {
	Greet(ctx context.Context, name string) (*Greeting, error)
}
