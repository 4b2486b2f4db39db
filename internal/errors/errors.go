// Package errors defines the error kinds surfaced by stella and helpers to
// build them with the failing identity, path or platform attached.
package errors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnresolvableDependency = errors.New("unresolvable dependency")
	ErrFetchFailure           = errors.New("failed to fetch dependency")
	ErrInvalidPath            = errors.New("invalid path")
	ErrUnknownPlatform        = errors.New("unknown platform")
	ErrInvalidDescriptor      = errors.New("invalid descriptor")
	ErrInvalidProfile         = errors.New("invalid build profile")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrNotRepository          = errors.New("not a git repository")
)

// UnresolvableDependency reports a dependency with neither an on-disk
// descriptor nor an inline one supplied by its referrer.
func UnresolvableDependency(identity, localPath string) error {
	err := errors.Wrapf(ErrUnresolvableDependency, "dependency %q at %s has no stella.yaml", identity, localPath)
	return errors.WithHintf(err, "add a `stella-yaml` key to the %q dependency entry describing its sources and headers", identity)
}

// FetchFailure wraps a repository fetch or checkout error.
func FetchFailure(identity, url string, cause error) error {
	err := errors.Mark(errors.Wrapf(cause, "fetching %q from %s", identity, url), ErrFetchFailure)
	return errors.WithHintf(err, "check that %s is reachable and the pinned revision exists", url)
}

// InvalidPath reports a glob or path fragment of a component that cannot be
// resolved against the filesystem.
func InvalidPath(component, fragment string, cause error) error {
	if cause == nil {
		return errors.Wrapf(ErrInvalidPath, "component %q: %s", component, fragment)
	}
	return errors.Mark(errors.Wrapf(cause, "component %q: %s", component, fragment), ErrInvalidPath)
}

// UnknownPlatform reports a platform with no default toolchain when no
// override was supplied.
func UnknownPlatform(platform string) error {
	err := errors.Wrapf(ErrUnknownPlatform, "no default build environment for platform %q", platform)
	return errors.WithHint(err, "pass --env with a YAML file naming compiler, linker, archiver and copier")
}

// InvalidDescriptor wraps a descriptor decoding problem.
func InvalidDescriptor(path string, cause error) error {
	if cause == nil {
		return errors.Wrapf(ErrInvalidDescriptor, "%s", path)
	}
	return errors.Mark(errors.Wrapf(cause, "descriptor %s", path), ErrInvalidDescriptor)
}

// Format renders err together with any user hints attached to it.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		b.WriteString("\n  hint: ")
		b.WriteString(hint)
	}
	return b.String()
}

// Kind names the error kind of err, or "" when it carries none.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnresolvableDependency):
		return "UnresolvableDependency"
	case errors.Is(err, ErrFetchFailure):
		return "FetchFailure"
	case errors.Is(err, ErrInvalidPath):
		return "InvalidPath"
	case errors.Is(err, ErrUnknownPlatform):
		return "UnknownPlatform"
	case errors.Is(err, ErrInvalidDescriptor):
		return "InvalidDescriptor"
	case errors.Is(err, ErrInvalidProfile):
		return "InvalidProfile"
	case errors.Is(err, ErrInvalidConfig):
		return "InvalidConfig"
	case errors.Is(err, ErrNotRepository):
		return "NotRepository"
	}
	return ""
}
