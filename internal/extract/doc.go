// Package extract adapts the media libraries yt-server relies on to two small
// interfaces: Inspector for metadata lookups and Fetcher for downloads. Each
// backend (ytget, kkdai, ytdlp) lives in its own file; New builds them from
// configuration.
package extract
