package testkit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	out := "user_feature_request: Please add X"
	MustContain(t, out, "Please add")
	MustNotContain(t, out, "log_error")
}

func TestFile(t *testing.T) {
	t.Parallel()
	p := File(t, "bundle.json", `{"userSnippet":"hi"}`)
	if filepath.Base(p) != "bundle.json" {
		t.Fatalf("unexpected path %s", p)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != `{"userSnippet":"hi"}` {
		t.Fatalf("fixture content = %q, %v", b, err)
	}
}
