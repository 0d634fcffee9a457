package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo_Defaults(t *testing.T) {
	bi := Info()
	if bi.Service != "signalkit" || bi.Version != "dev" || bi.Commit != "none" || bi.Date != "unknown" {
		t.Fatalf("unexpected defaults: %+v", bi)
	}
	if bi.GoVersion != runtime.Version() {
		t.Fatalf("go version = %q", bi.GoVersion)
	}
}

func TestBuildInfo_String(t *testing.T) {
	s := BuildInfo{Service: "signalkit", Version: "v1.2.3", Commit: "abc", Date: "2026-10-18", GoVersion: "go1.25.0"}.String()
	if !strings.HasPrefix(s, "signalkit v1.2.3 (abc") || !strings.Contains(s, "go1.25.0") {
		t.Fatalf("String() = %q", s)
	}
}
