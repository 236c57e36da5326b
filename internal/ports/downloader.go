package ports

import "context"

// Downloader fetches a remote artifact to a local file. Implementations own
// the retry and timeout policy; a returned error means the artifact could not
// be acquired within that policy.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}
