package greet

// GetOutput is the response wrapper for GET /greet.
type GetOutput struct {
	Body Data
}
