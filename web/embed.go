package web

import "embed"

// TemplatesFS embeds the dashboard page template.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the browser script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
