package web

import (
	"embed"
)

// staticFiles holds the embedded HTML for the control page.
//
//go:embed static/*
var staticFiles embed.FS
