package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
)

type fakeSource struct {
	release  *selfupdate.Release
	found    bool
	err      error
	detected selfupdate.Repository
	applied  bool
}

func (f *fakeSource) DetectLatest(_ context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error) {
	f.detected = repository
	return f.release, f.found, f.err
}

func (f *fakeSource) UpdateTo(_ context.Context, _ *selfupdate.Release, _ string) error {
	f.applied = true
	return nil
}

func testUpdater(source releaseSource, exe string) *Updater {
	u := newUpdater(source, Options{
		CurrentVersion: "v1.0.0",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	u.executable = func() (string, error) { return exe, nil }
	return u
}

func writableExe(t *testing.T) string {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "alsavolume")
	if err := os.WriteFile(exe, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	return exe
}

func TestDefaultRepository(t *testing.T) {
	src := &fakeSource{found: false}
	u := testUpdater(src, writableExe(t))

	_, _, _ = u.Check(context.Background())
	if src.detected == nil {
		t.Fatal("DetectLatest not called")
	}
	owner, name, err := src.detected.GetSlug()
	if err != nil {
		t.Fatal(err)
	}
	if owner+"/"+name != DefaultRepository {
		t.Fatalf("repository = %s/%s", owner, name)
	}
}

func TestCheckFailure(t *testing.T) {
	u := testUpdater(&fakeSource{err: errors.New("rate limited")}, writableExe(t))

	_, _, err := u.Check(context.Background())
	var uerr *Error
	if !errors.As(err, &uerr) || uerr.Code != ErrCodeCheckFailed {
		t.Fatalf("err = %v, want %s", err, ErrCodeCheckFailed)
	}
	if !errors.Is(err, uerr.Cause) {
		t.Fatal("cause should unwrap")
	}
}

func TestCheckNoReleases(t *testing.T) {
	u := testUpdater(&fakeSource{found: false}, writableExe(t))

	_, _, err := u.Check(context.Background())
	var uerr *Error
	if !errors.As(err, &uerr) || uerr.Code != ErrCodeNotFound {
		t.Fatalf("err = %v, want %s", err, ErrCodeNotFound)
	}
}

func TestApplyStopsWhenCheckFails(t *testing.T) {
	src := &fakeSource{found: false}
	u := testUpdater(src, writableExe(t))

	if _, err := u.Apply(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if src.applied {
		t.Fatal("nothing should be installed without a release")
	}
}

func TestApplyReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "alsavolume")
	if err := os.WriteFile(exe, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	src := &fakeSource{found: true}
	u := testUpdater(src, exe)

	_, err := u.Apply(context.Background())
	var uerr *Error
	if !errors.As(err, &uerr) || uerr.Code != ErrCodeDisabled {
		t.Fatalf("err = %v, want %s", err, ErrCodeDisabled)
	}
	if src.detected != nil {
		t.Fatal("GitHub should not be queried when the binary cannot be replaced")
	}
}

func TestCheckWritePermission(t *testing.T) {
	if reason := checkWritePermission(writableExe(t)); reason != "" {
		t.Fatalf("reason = %q", reason)
	}
	if reason := checkWritePermission(filepath.Join(t.TempDir(), "missing")); reason == "" {
		t.Fatal("expected a reason for a missing executable")
	}
}

func TestErrorFormatting(t *testing.T) {
	err := newError(ErrCodeNoUpdate, "no update available", nil)
	if err.Error() != "NO_UPDATE: no update available" {
		t.Fatalf("Error() = %q", err.Error())
	}
	wrapped := newError(ErrCodeApplyFailed, "failed to apply update", errors.New("disk full"))
	if wrapped.Error() != "APPLY_FAILED: failed to apply update: disk full" {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
	if ErrNoUpdate.Error() != "NO_UPDATE" {
		t.Fatalf("sentinel Error() = %q", ErrNoUpdate.Error())
	}
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("update: %w", newError(ErrCodeNoUpdate, "no update available", nil))
	if !errors.Is(err, ErrNoUpdate) {
		t.Error("wrapped NO_UPDATE should match ErrNoUpdate")
	}
	if errors.Is(err, ErrDisabled) {
		t.Error("NO_UPDATE must not match ErrDisabled")
	}
	if errors.Is(errors.New("NO_UPDATE"), ErrNoUpdate) {
		t.Error("plain errors must not match")
	}
}
