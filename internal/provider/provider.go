// Package provider abstracts the machine-translation backends.
package provider

import "context"

// TranslateRequest is one batch of texts bound for a single target
// language. Texts may contain __DNT_<n>__ markers that the backend must
// return untouched.
type TranslateRequest struct {
	Texts      []string
	SourceLang string
	TargetLang string

	// Instructions carries extra steering for the backend, e.g. domain
	// hints. Optional.
	Instructions string
}

// Provider is a translation backend. Implementations return exactly one
// translation per input text, in input order.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}
