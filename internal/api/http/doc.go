// Package http implements the yt-server HTTP API on gin: the download and
// video info endpoints of both variants, the browser page, the asynchronous
// tasks API, health and metrics.
package http
