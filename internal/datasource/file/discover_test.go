package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscover_RecursiveSortedAbsolute(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "TRB.json"), "{}")
	writeFile(t, filepath.Join(root, "a", "x", "TRA.json"), "{}")
	writeFile(t, filepath.Join(root, "a", "notes.txt"), "skip")
	writeFile(t, filepath.Join(root, "a", "TRA.json.bak"), "skip")
	writeFile(t, filepath.Join(root, "top.json"), "{}")

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "x", "TRA.json"),
		filepath.Join(root, "b", "TRB.json"),
		filepath.Join(root, "top.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover = %#v, want %#v", got, want)
	}
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Fatalf("path %q is not absolute", p)
		}
	}
}

func TestDiscover_SkipsDotFilesFollowsFileLinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "TRA.json"), "{}")
	writeFile(t, filepath.Join(root, "a", ".TRA.json"), "{}")
	writeFile(t, filepath.Join(root, ".hidden", "TRH.json"), "{}")
	writeFile(t, filepath.Join(outside, "TRL.json"), "{}")
	writeFile(t, filepath.Join(outside, "sub", "TRD.json"), "{}")
	links := map[string]string{
		filepath.Join(root, "a", "TRL.json"):    filepath.Join(outside, "TRL.json"),
		filepath.Join(root, "a", "broken.json"): filepath.Join(outside, "missing.json"),
		filepath.Join(root, "linked-dir.json"):  filepath.Join(outside, "sub"),
	}
	for link, target := range links {
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	want := []string{
		filepath.Join(root, ".hidden", "TRH.json"),
		filepath.Join(root, "a", "TRA.json"),
		filepath.Join(root, "a", "TRL.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover = %v\nwant      %v", got, want)
	}
}

func TestDiscover_CustomExt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "events.ndjson"), "{}")
	writeFile(t, filepath.Join(root, "events.json"), "{}")

	got, err := Discover(root, ".ndjson")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "events.ndjson" {
		t.Fatalf("Discover = %#v", got)
	}
}

func TestDiscover_EmptyTreeIsNotAnError(t *testing.T) {
	t.Parallel()

	got, err := Discover(t.TempDir(), ".json")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files, got %#v", got)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nope")
	_, err := Discover(root, ".json")

	var de *DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DiscoveryError, got %T (%v)", err, err)
	}
	if de.Root != root {
		t.Fatalf("Root = %q, want %q", de.Root, root)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "song.json")
	writeFile(t, path, `{"song_id":"S1"}`)

	rc, err := NewLocal(path).Open(context.Background())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != `{"song_id":"S1"}` {
		t.Fatalf("read %q", b)
	}
}

func TestLocalOpen_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLocal("/does/not/matter").Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Open err = %v, want context.Canceled", err)
	}
}

func TestLocalOpen_Missing(t *testing.T) {
	t.Parallel()

	_, err := NewLocal(filepath.Join(t.TempDir(), "gone.json")).Open(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open err = %v, want os.ErrNotExist", err)
	}
}
