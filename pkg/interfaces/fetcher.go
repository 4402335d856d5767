package interfaces

import "context"

// Fetcher retrieves the contents of an external document by URL. Gadget specs
// and the message files they reference are fetched through this contract so
// hosts can supply their own transport, caching or access policies.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher contract.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
