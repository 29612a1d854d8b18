package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Filter decides whether a source reference should be imported.
type Filter interface {
	ShouldKeep(ctx context.Context, ref string) (bool, error)
}

// FilterRefs applies all filters to a list of source references.
func FilterRefs(ctx context.Context, refs []string, filters ...Filter) ([]string, error) {
	filtered := make([]string, 0, len(refs))

	for _, ref := range refs {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("filter error for %s: %w", ref, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, ref)
		}
	}

	return filtered, nil
}

// BaseURLFilter filters out base/root URLs, which never carry a
// transcript of their own.
type BaseURLFilter struct{}

// NewBaseURLFilter creates a new base URL filter.
func NewBaseURLFilter() *BaseURLFilter {
	return &BaseURLFilter{}
}

// ShouldKeep returns false if the reference is a base/root URL.
func (f *BaseURLFilter) ShouldKeep(ctx context.Context, ref string) (bool, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		// If we can't parse it, don't filter it out (let it fail later if needed)
		return true, nil
	}

	path := strings.Trim(parsed.Path, "/")
	return path != "", nil
}

// AlreadyImportedFilter filters out references a previous run already
// turned into lectures, keeping reimports idempotent.
type AlreadyImportedFilter struct {
	imported map[string]bool
}

// NewAlreadyImportedFilter creates a filter over the set of source
// references already present in the store.
func NewAlreadyImportedFilter(imported map[string]bool) *AlreadyImportedFilter {
	return &AlreadyImportedFilter{
		imported: imported,
	}
}

// ShouldKeep returns false if the reference was already imported.
func (f *AlreadyImportedFilter) ShouldKeep(ctx context.Context, ref string) (bool, error) {
	return !f.imported[ref], nil
}
