package ui

// Package ui contains the browser front-end served by the full variant: the
// embedded index template, its static assets, and the page texts. All page
// strings are localized via Localization.
