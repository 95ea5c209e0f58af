// Package download runs fetches through the configured extraction backend.
// It serves two callers: the synchronous GET /download path, which gets one
// per-request folder, and the asynchronous task queue, which bounds the
// number of parallel downloads, retries once, and publishes progress to
// subscribers.
package download
