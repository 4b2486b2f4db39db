package errors

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMarkSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		kind string
	}{
		{"unresolvable", UnresolvableDependency("libcore", "deps/libcore"), ErrUnresolvableDependency, "UnresolvableDependency"},
		{"fetch", FetchFailure("libcore", "https://example.com/libcore.git", fmt.Errorf("connection refused")), ErrFetchFailure, "FetchFailure"},
		{"path", InvalidPath("app", "include", nil), ErrInvalidPath, "InvalidPath"},
		{"path with cause", InvalidPath("app", "src/[", fmt.Errorf("bad pattern")), ErrInvalidPath, "InvalidPath"},
		{"platform", UnknownPlatform("plan9"), ErrUnknownPlatform, "UnknownPlatform"},
		{"descriptor", InvalidDescriptor("stella.yaml", nil), ErrInvalidDescriptor, "InvalidDescriptor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, errors.Is(tt.err, tt.want))
			assert.Equal(t, tt.kind, Kind(tt.err))
		})
	}
}

func TestFetchFailureKeepsCauseAndIdentity(t *testing.T) {
	cause := fmt.Errorf("repository not found")
	err := FetchFailure("libutil", "https://example.com/libutil.git", cause)

	assert.Contains(t, err.Error(), "libutil")
	assert.Contains(t, err.Error(), "repository not found")
}

func TestFormatIncludesHints(t *testing.T) {
	out := Format(UnknownPlatform("plan9"))

	assert.Contains(t, out, `"plan9"`)
	assert.Contains(t, out, "hint: pass --env")
	assert.Empty(t, Format(nil))
	assert.Empty(t, Kind(fmt.Errorf("plain")))
}
