package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// watchFile starts Watch on path and returns the configs it reports. The
// watcher is stopped when the test ends.
func watchFile(t *testing.T, path string) <-chan *Config {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c *Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watch returned %v", err)
		}
	})
	return changes
}

// writeUntil rewrites path with body until a config arrives on changes or
// the deadline passes. The first writes may land before the watcher is set up.
func writeUntil(t *testing.T, path, body string, changes <-chan *Config) *Config {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-changes:
			return c
		case <-deadline:
			t.Fatal("no reload within 5s")
			return nil
		case <-tick.C:
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfield.yaml")
	if err := os.WriteFile(path, []byte("theme: electric\n"), 0644); err != nil {
		t.Fatal(err)
	}
	changes := watchFile(t, path)

	got := writeUntil(t, path, "theme: amber\nfps: 30\n", changes)
	if got.Theme != "amber" {
		t.Errorf("expected theme amber, got %s", got.Theme)
	}
	if got.FPS != 30 {
		t.Errorf("expected fps 30, got %d", got.FPS)
	}
}

func TestWatchSkipsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfield.yaml")
	if err := os.WriteFile(path, []byte("theme: electric\n"), 0644); err != nil {
		t.Fatal(err)
	}
	changes := watchFile(t, path)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("theme: plaid\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * DefaultSettle)
	}
	select {
	case c := <-changes:
		t.Fatalf("invalid config reported: %+v", c)
	default:
	}

	got := writeUntil(t, path, "theme: violet\n", changes)
	if got.Theme != "violet" {
		t.Errorf("expected theme violet, got %s", got.Theme)
	}
}

func TestWatchMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "starfield.yaml")
	err := Watch(context.Background(), path, nil, func(*Config) {})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
