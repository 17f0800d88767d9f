package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Archive(t *testing.T) {
	tmpDir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	input := filepath.Join(tmpDir, "page.html")
	if err := os.WriteFile(input, []byte("<p>x</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(tmpDir, "src")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "a.html"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("input", input)
	if err := r.StoreCopy("source", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	r.StoreData("tree-10.txt", []byte("[0] #root"))
	r.StoreData("tree-2.txt", []byte("[0] #root\n"))
	r.StoreData("tree-2.txt", []byte("again"))
	r.Store("missing", filepath.Join(tmpDir, "nope"))

	temps := append([]string(nil), r.temps...)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["input"] != "<p>x</p>" {
		t.Errorf("input = %q", files["input"])
	}
	if files["source/sub/a.html"] != "a" {
		t.Errorf("copied directory missing, have %v", len(files))
	}
	if files["tree-2.txt"] != "[0] #root\n" {
		t.Errorf("tree-2.txt = %q", files["tree-2.txt"])
	}
	if _, ok := files["missing"]; ok {
		t.Error("absent file must be skipped")
	}

	manifest := files["MANIFEST"]
	if i2, i10 := strings.Index(manifest, "\ttree-2.txt\t"), strings.Index(manifest, "\ttree-10.txt\t"); i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("manifest must be in natural order:\n%s", manifest)
	}
	if strings.Count(manifest, "\n") != 6 {
		t.Errorf("manifest must list all entries:\n%s", manifest)
	}

	for _, dir := range temps {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			os.RemoveAll(dir)
			t.Errorf("temporary copy %s must be removed", dir)
		}
	}
	if _, err := os.Stat(input); err != nil {
		t.Errorf("stored file must not be removed: %v", err)
	}
}

func TestReport_StoreOverwritePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("a", "/tmp/one")
	r.Store("a", "/tmp/one")

	defer func() {
		if recover() == nil {
			t.Error("Store() with different path must panic")
		}
	}()
	r.Store("a", "/tmp/two")
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	r.Store("x", "y")
	r.StoreData("x", nil)
	if err := r.StoreCopy("x", "y"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("nil report has no name")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
