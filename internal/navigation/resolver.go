package navigation

import "context"

// ResolveRequest carries the context required for URL resolvers to build links.
type ResolveRequest struct {
	MenuCode string
	Item     *Item
	Locale   string
}

// URLResolver allows callers to override how navigation URLs are generated
// for items that carry a route target rather than a literal URL.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}
