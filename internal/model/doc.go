package model

// Package model defines domain data structures shared by the HTTP handlers and
// the download pipeline: download tasks and their status enum, the normalized
// video metadata returned by extraction backends, the typed info response, and
// playlist entities. Structures carry JSON tags and are served as-is.
