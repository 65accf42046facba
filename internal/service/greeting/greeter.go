package greeting

import "context"

// Greeter is the stateless Service implementation used in production.
type Greeter struct{}

// NewGreeter creates a Greeter.
func NewGreeter() *Greeter {
	return &Greeter{}
}

// Greet formats the introduction for name. It never fails.
func (g *Greeter) Greet(_ context.Context, name string) (*Greeting, error) {
	return &Greeting{Name: name, Message: Prefix + name}, nil
}

var _ Service = (*Greeter)(nil)
