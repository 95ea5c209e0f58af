package platform

// Package platform contains filesystem and external tooling glue: download
// folder helpers, discovery of the file a backend wrote, attachment naming,
// and playlist parsing via the ytdlp library.
