package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	dailyout "usagetrail/internal/modules/daily/adapter/out"
)

func TestCachedFilterProviderMergesFileAndCaches(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hidden.yaml")
	if err := os.WriteFile(path, []byte("packages:\n  - com.launcher\n"), 0o644); err != nil {
		t.Fatalf("write hidden file: %v", err)
	}
	p := dailyout.NewCachedFilterProvider([]string{"com.android.systemui"}, path, time.Hour)

	set, err := p.HiddenPackages(context.Background())
	if err != nil {
		t.Fatalf("hidden packages: %v", err)
	}
	for _, pkg := range []string{"com.android.systemui", "com.launcher"} {
		if _, ok := set[pkg]; !ok {
			t.Fatalf("expected %s to be hidden", pkg)
		}
	}

	if err := os.WriteFile(path, []byte("packages:\n  - com.other\n"), 0o644); err != nil {
		t.Fatalf("rewrite hidden file: %v", err)
	}
	cached, _ := p.HiddenPackages(context.Background())
	if _, ok := cached["com.other"]; ok {
		t.Fatalf("expected cached set before invalidation")
	}
	p.Invalidate()
	fresh, _ := p.HiddenPackages(context.Background())
	if _, ok := fresh["com.other"]; !ok {
		t.Fatalf("expected reloaded set after invalidation")
	}
}

func TestCachedFilterProviderMissingFile(t *testing.T) {
	t.Parallel()
	p := dailyout.NewCachedFilterProvider(nil, filepath.Join(t.TempDir(), "missing.yaml"), 0)
	set, err := p.HiddenPackages(context.Background())
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestCachedFilterProviderRejectsBadYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hidden.yaml")
	if err := os.WriteFile(path, []byte("packages: [unterminated"), 0o644); err != nil {
		t.Fatalf("write hidden file: %v", err)
	}
	if _, err := dailyout.NewCachedFilterProvider(nil, path, time.Minute).HiddenPackages(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
