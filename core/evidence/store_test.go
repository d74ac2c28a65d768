package evidence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(filepath.Join(dir, "evidence"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	url, err := s.Save(context.Background(), "bukti transfer.jpg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/files/") {
		t.Fatalf("expected /files/ url, got %q", url)
	}
	name := strings.TrimPrefix(url, "/files/")
	if strings.Contains(name, " ") || strings.Contains(name, "/") {
		t.Fatalf("unsafe stored name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"foto bukti.png":   "foto_bukti.png",
		"  ":               "bukti",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitize %q: expected %q, got %q", in, want, got)
		}
	}
}
