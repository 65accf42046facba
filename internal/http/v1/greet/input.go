package greet

import "github.com/danielgtaylor/huma/v2"

// GetInput carries the name to introduce.
type GetInput struct {
	Name string `query:"name" doc:"Name to introduce. Required; may be empty." example:"Alice"`
}

// Resolve requires the name parameter to be present and takes its value from
// the raw query, overriding the framework's parse: a bare "name" is the empty
// string and malformed escapes stay literal.
func (i *GetInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	if name, ok := lookupQuery(u.RawQuery, "name"); ok {
		i.Name = name
		return nil
	}
	return []error{&huma.ErrorDetail{
		Location: "query.name",
		Message:  "required query parameter is missing",
	}}
}
