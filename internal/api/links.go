package api

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/describe>; rel="describe"`,
		`</api/v1/tiles>; rel="tiles"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/tiles>; rel="tiles"`,
	},
	"/api/v1/describe": {
		`</api/v1/directions>; rel="directions"`,
		`</api/v1/features>; rel="features"`,
	},
	"/api/v1/directions": {
		`</api/v1/describe>; rel="describe"`,
	},
	"/api/v1/features": {
		`</api/v1/describe>; rel="describe"`,
		`</api/v1/tiles>; rel="tiles"`,
	},
	"/api/v1/tiles": {
		`</api/v1/tiles/reload>; rel="reload"`,
		`</api/v1/features>; rel="features"`,
	},
	"/api/v1/tiles/reload": {
		`</api/v1/tiles>; rel="collection"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// GET endpoints with a query string get a self link
		if op.Method == "GET" && ctx.URL().RawQuery != "" {
			u := ctx.URL()
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s?%s>; rel="self"`, u.Path, u.RawQuery))
		}

		return v, nil
	}
}
