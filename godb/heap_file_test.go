package godb

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestHeapFile(t *testing.T) *HeapFile {
	t.Helper()
	dir := t.TempDir()
	hf, err := NewHeapFile(1, filepath.Join(dir, "container.hf"))
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	t.Cleanup(func() { hf.Close() })
	return hf
}

func TestHeapFileAppendAndReadPage(t *testing.T) {
	hf := newTestHeapFile(t)

	if hf.NumPages() != 0 {
		t.Fatalf("NumPages() on new file = %d, want 0", hf.NumPages())
	}

	hp, err := hf.AppendPage()
	if err != nil {
		t.Fatalf("AppendPage: %v", err)
	}
	hp.AddValue([]byte("row"))
	if err := hf.WritePage(hp); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	if hf.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", hf.NumPages())
	}

	back, err := hf.ReadPage(0)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	data, ok := back.GetValue(0)
	if !ok || string(data) != "row" {
		t.Fatalf("ReadPage(0).GetValue(0) = %q, %v, want row, true", data, ok)
	}
}

func TestHeapFileReadPastEndIsIOError(t *testing.T) {
	hf := newTestHeapFile(t)
	_, err := hf.ReadPage(0)
	if err == nil {
		t.Fatalf("ReadPage on empty file succeeded, want IOError")
	}
	dbErr, ok := err.(*DBError)
	if !ok || dbErr.Code != IOError {
		t.Fatalf("error = %v, want IOError", err)
	}
}

func TestHeapFileCountsReadsAndWrites(t *testing.T) {
	hf := newTestHeapFile(t)
	hf.AppendPage()
	if hf.Writes() != 1 {
		t.Fatalf("Writes() = %d, want 1", hf.Writes())
	}
	hf.ReadPage(0)
	if hf.Reads() != 1 {
		t.Fatalf("Reads() = %d, want 1", hf.Reads())
	}
}

func TestHeapFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.hf")

	hf, err := NewHeapFile(1, path)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	hp, _ := hf.AppendPage()
	hp.AddValue([]byte("persisted"))
	hf.WritePage(hp)
	hf.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backing file missing after close: %v", err)
	}

	hf2, err := NewHeapFile(1, path)
	if err != nil {
		t.Fatalf("reopening heap file: %v", err)
	}
	defer hf2.Close()

	if hf2.NumPages() != 1 {
		t.Fatalf("reopened NumPages() = %d, want 1", hf2.NumPages())
	}
	page, err := hf2.ReadPage(0)
	if err != nil {
		t.Fatalf("ReadPage after reopen: %v", err)
	}
	data, ok := page.GetValue(0)
	if !ok || string(data) != "persisted" {
		t.Fatalf("data after reopen = %q, %v, want persisted, true", data, ok)
	}
}
