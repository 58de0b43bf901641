package version_test

import (
	"strings"
	"testing"

	"github.com/zynmi/mutseq/version"
)

func TestBanner(t *testing.T) {
	b := version.Banner("mutseq-play")
	if !strings.HasPrefix(b, "mutseq-play ") {
		t.Errorf("banner %q does not start with the tool name", b)
	}
	if version.VersionOrHash != "" && !strings.HasSuffix(b, version.VersionOrHash) {
		t.Errorf("banner %q does not end with %q", b, version.VersionOrHash)
	}
}
