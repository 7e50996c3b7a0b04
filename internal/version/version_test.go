package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	ldflags := Build{Version: "v1.2.0", Commit: "abc123", Date: "2026-01-02"}
	unset := Build{Version: "dev", Commit: "unknown", Date: "unknown"}
	installed := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/open-cli-collective/parsoid-go", Version: "v1.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "def456"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
		},
	}
	local := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}

	tests := []struct {
		name  string
		build Build
		info  *debug.BuildInfo
		want  Build
	}{
		{"no build info", unset, nil, unset},
		{"ldflags win", ldflags, installed, ldflags},
		{"go install", unset, installed, Build{Version: "v1.3.0", Commit: "def456", Date: "2026-03-04T05:06:07Z"}},
		{"local build", unset, local, unset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(tt.build, tt.info))
		})
	}
}

func TestBuild_String(t *testing.T) {
	b := Build{Version: "v1.2.0", Commit: "abc123", Date: "2026-01-02"}
	assert.Equal(t, "parsoid version v1.2.0 (commit: abc123, built: 2026-01-02)", b.String())
}
