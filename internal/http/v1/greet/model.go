package greet

// Data models the response payload for the greet endpoint.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello, my name is Alice"`
}
