package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests through the proxy layer.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a single GET request to the specified URL with parameters.
	// Any non-2xx status is returned as an error; retrying is up to the caller.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
