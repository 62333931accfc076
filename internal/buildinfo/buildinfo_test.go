package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestVersionWithoutBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil)

	assert.Equal(t, "dev", Version())
	assert.Empty(t, Revision())
	assert.Equal(t, "dev", String())
}

func TestString(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.25.1",
		Main:      debug.Module{Version: "v1.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	assert.Equal(t, "v1.2.0", Version())
	assert.Equal(t, "0123456789ab-dirty", Revision())
	assert.Equal(t, "v1.2.0 (rev 0123456789ab-dirty, go1.25.1)", String())
}

func TestDevelVersion(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, "dev", Version())
	assert.Equal(t, "dev", String())
}
