package godb

import (
	"path/filepath"
	"testing"
)

func TestHeapFileIteratorWalksAllPagesAndSlots(t *testing.T) {
	dir := t.TempDir()
	hf, err := NewHeapFile(1, filepath.Join(dir, "c.hf"))
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	defer hf.Close()

	for i := 0; i < 3; i++ {
		hp, err := hf.AppendPage()
		if err != nil {
			t.Fatalf("AppendPage: %v", err)
		}
		hp.AddValue([]byte{byte(i), byte(i)})
		hp.AddValue([]byte{byte(i), byte(i), byte(i)})
		if err := hf.WritePage(hp); err != nil {
			t.Fatalf("WritePage: %v", err)
		}
	}

	it := NewHeapFileIterator(hf)
	count := 0
	for {
		_, _, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 6 {
		t.Fatalf("iterator yielded %d records, want 6", count)
	}
}

func TestHeapFileIteratorSkipsTombstones(t *testing.T) {
	dir := t.TempDir()
	hf, err := NewHeapFile(1, filepath.Join(dir, "c.hf"))
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	defer hf.Close()

	hp, _ := hf.AppendPage()
	hp.AddValue([]byte("a"))
	id2, _ := hp.AddValue([]byte("b"))
	hp.DeleteValue(id2)
	hf.WritePage(hp)

	it := NewHeapFileIterator(hf)
	data, _, ok, err := it.Next()
	if err != nil || !ok || string(data) != "a" {
		t.Fatalf("first record = %q, %v, %v, want a, true, nil", data, ok, err)
	}
	_, _, ok, err = it.Next()
	if err != nil || ok {
		t.Fatalf("second Next() = %v, %v, want false, nil (tombstone skipped)", ok, err)
	}
}

func TestHeapFileIteratorRewind(t *testing.T) {
	dir := t.TempDir()
	hf, err := NewHeapFile(1, filepath.Join(dir, "c.hf"))
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	defer hf.Close()

	hp, _ := hf.AppendPage()
	hp.AddValue([]byte("only"))
	hf.WritePage(hp)

	it := NewHeapFileIterator(hf)
	it.Next()
	if _, _, ok, _ := it.Next(); ok {
		t.Fatalf("expected exhaustion before rewind")
	}

	it.Rewind()
	data, _, ok, err := it.Next()
	if err != nil || !ok || string(data) != "only" {
		t.Fatalf("after Rewind, Next() = %q, %v, %v, want only, true, nil", data, ok, err)
	}
}
