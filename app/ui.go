package app

import (
	"html"
	"strings"
)

// UI layout helpers for consistent rendering.
// Use these wrappers + nomimap.css classes.

// Chip renders a single rounded label
func Chip(text string) string {
	return `<span class="chip">` + html.EscapeString(text) + `</span>`
}

// Chips renders a list of chips, skipping empty labels
func Chips(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		if l == "" {
			continue
		}
		b.WriteString(Chip(l))
	}
	if b.Len() == 0 {
		return ""
	}
	return `<div class="chips">` + b.String() + `</div>`
}

// DetailRow renders a label/value pair; empty values render nothing
func DetailRow(label, value string) string {
	if value == "" {
		return ""
	}
	return `<div class="row"><div class="name">` + html.EscapeString(label) +
		`</div><div class="value">` + html.EscapeString(value) + `</div></div>`
}

// ExternalLink renders a link opening in a new tab
func ExternalLink(href, label string) string {
	return `<a href="` + html.EscapeString(href) + `" target="_blank" rel="noreferrer">` + html.EscapeString(label) + `</a>`
}

// Empty renders an empty state message
func Empty(message string) string {
	return `<p class="empty text-muted">` + html.EscapeString(message) + `</p>`
}

// Error renders an inline error message
func Error(message string) string {
	return `<p class="text-error">` + html.EscapeString(message) + `</p>`
}

// CardDivClass wraps content in a card with additional classes
func CardDivClass(class, content string) string {
	return `<div class="card ` + class + `">` + content + `</div>`
}
