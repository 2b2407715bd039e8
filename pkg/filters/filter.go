// Package filters holds the fake filter model served to UI pages: filters,
// subscriptions, the storage that fires change notifications, validation and
// a URL matcher driven by a fixed block list.
package filters

import "strings"

// Type classifies a filter by its text.
type Type string

const (
	TypeBlocking          Type = "blocking"
	TypeException         Type = "exception"
	TypeElemHide          Type = "elemhide"
	TypeElemHideException Type = "elemhideexception"
	TypeComment           Type = "comment"
)

// Filter is a single rule. Only the text matters for identity.
type Filter struct {
	Text     string `json:"text" yaml:"text"`
	Type     Type   `json:"type" yaml:"-"`
	Disabled bool   `json:"disabled" yaml:"disabled,omitempty"`
}

// FromText builds a filter from raw text, trimming surrounding whitespace.
func FromText(text string) *Filter {
	text = strings.TrimSpace(text)
	return &Filter{Text: text, Type: classify(text)}
}

// Blocking returns an anonymous blocking filter for a matched URL.
func Blocking(url string) *Filter {
	return &Filter{Text: url, Type: TypeBlocking}
}

func classify(text string) Type {
	switch {
	case strings.HasPrefix(text, "!"):
		return TypeComment
	case strings.Contains(text, "#@#"):
		return TypeElemHideException
	case strings.Contains(text, "##"):
		return TypeElemHide
	case strings.HasPrefix(text, "@@"):
		return TypeException
	default:
		return TypeBlocking
	}
}

// FromTexts maps every text through FromText.
func FromTexts(texts []string) []*Filter {
	out := make([]*Filter, len(texts))
	for i, t := range texts {
		out[i] = FromText(t)
	}
	return out
}
