package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

type zipEntry struct {
	name    string
	content string
	nonUTF8 bool
}

func createZip(t *testing.T, entries ...zipEntry) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8}
		if strings.HasSuffix(e.name, "/") {
			hdr.SetMode(os.ModeDir | 0755)
		}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath, prefix string, match MatchFunc) []string {
	t.Helper()

	var visited []string
	err := Walk(zipPath, prefix, match, func(archive string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := createZip(t,
		zipEntry{name: "pages/"},
		zipEntry{name: "pages/page10.html", content: "<p>10</p>"},
		zipEntry{name: "pages/page2.html", content: "<p>2</p>"},
		zipEntry{name: "pages/page1.htm", content: "<p>1</p>"},
		zipEntry{name: "pages/notes.txt", content: "notes"},
		zipEntry{name: "index.html", content: "<p>index</p>"},
	)
	html := func(name string) bool {
		return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
	}

	tests := []struct {
		name   string
		prefix string
		match  MatchFunc
		want   []string
	}{
		{name: "everything", want: []string{"index.html", "pages/notes.txt", "pages/page1.htm", "pages/page2.html", "pages/page10.html"}},
		{name: "prefix", prefix: "pages/", want: []string{"pages/notes.txt", "pages/page1.htm", "pages/page2.html", "pages/page10.html"}},
		{name: "prefix and match", prefix: "pages/", match: html, want: []string{"pages/page1.htm", "pages/page2.html", "pages/page10.html"}},
		{name: "case sensitive prefix", prefix: "Pages/", want: nil},
		{name: "single file", prefix: "index.html", match: html, want: []string{"index.html"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, zipPath, tt.prefix, tt.match)
			if !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_FileContent(t *testing.T) {
	content := "<p>content</p>"
	zipPath := createZip(t, zipEntry{name: "a.html", content: content})

	err := Walk(zipPath, "", nil, func(archive string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if buf.String() != content {
			t.Errorf("content = %s, want %s", buf.String(), content)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := createZip(t,
		zipEntry{name: "files/file1.html"},
		zipEntry{name: "files/file2.html"},
		zipEntry{name: "files/file3.html"},
	)

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "files/", nil, func(archive string, file *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (early termination)", visited)
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	noop := func(archive string, file *zip.File) error { return nil }

	if err := Walk("/nonexistent/file.zip", "", nil, noop); err == nil {
		t.Error("Expected error for nonexistent file")
	}

	invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
	if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
		t.Fatalf("Failed to create invalid zip: %v", err)
	}
	if err := Walk(invalidZip, "", nil, noop); err == nil {
		t.Error("Expected error for invalid zip file")
	}
}

func TestWalk_UnsafePaths(t *testing.T) {
	for _, name := range []string{"../evil.html", "pages/../../evil.html", "/etc/evil.html", `..\evil.html`} {
		t.Run(name, func(t *testing.T) {
			zipPath := createZip(t, zipEntry{name: "good.html"}, zipEntry{name: name})

			called := false
			err := Walk(zipPath, "", nil, func(archive string, file *zip.File) error {
				called = true
				return nil
			})
			if err == nil {
				t.Error("Walk() must reject archive with unsafe entries")
			}
			if called {
				t.Error("nothing must be visited in archive with unsafe entries")
			}
		})
	}
}

func TestDecodeName(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("страница.html")
	if err != nil {
		t.Fatalf("unable to encode name: %v", err)
	}
	zipPath := createZip(t,
		zipEntry{name: encoded, nonUTF8: true},
		zipEntry{name: "plain.html"},
	)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer r.Close()

	for _, f := range r.File {
		got, err := DecodeName(f, charmap.Windows1251)
		if err != nil {
			t.Fatalf("DecodeName() error = %v", err)
		}
		if f.Name == encoded && got != "страница.html" {
			t.Errorf("DecodeName() = %q, want страница.html", got)
		}
		if f.Name == "plain.html" && got != "plain.html" {
			t.Errorf("DecodeName() = %q, want plain.html", got)
		}

		if raw, _ := DecodeName(f, nil); raw != f.Name {
			t.Errorf("DecodeName() without code page = %q, want %q", raw, f.Name)
		}
	}
}
