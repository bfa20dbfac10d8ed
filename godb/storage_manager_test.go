package godb

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestStorageManager(t *testing.T) *StorageManager {
	t.Helper()
	sm, err := NewStorageManager("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorageManager: %v", err)
	}
	t.Cleanup(func() { sm.Shutdown() })
	return sm
}

func TestStorageManagerInsertGetDelete(t *testing.T) {
	sm := newTestStorageManager(t)

	cid, err := sm.CreateContainer()
	if err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}

	vid, err := sm.InsertValue(cid, []byte("payload"))
	if err != nil {
		t.Fatalf("InsertValue: %v", err)
	}

	got, err := sm.GetValue(vid)
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("GetValue = %q, want payload", got)
	}

	if err := sm.DeleteValue(vid); err != nil {
		t.Fatalf("DeleteValue: %v", err)
	}
	if _, err := sm.GetValue(vid); err == nil {
		t.Fatalf("GetValue after delete succeeded, want error")
	}
}

func TestStorageManagerDeleteMissingLocationIsNoop(t *testing.T) {
	sm := newTestStorageManager(t)
	cid, _ := sm.CreateContainer()
	if err := sm.DeleteValue(ValueId{ContainerId: cid}); err != nil {
		t.Fatalf("DeleteValue with no location returned error: %v", err)
	}
}

func TestStorageManagerInsertAcrossManyPages(t *testing.T) {
	sm := newTestStorageManager(t)
	cid, _ := sm.CreateContainer()

	payload := make([]byte, 200)
	var ids []ValueId
	for i := 0; i < 100; i++ {
		vid, err := sm.InsertValue(cid, payload)
		if err != nil {
			t.Fatalf("InsertValue #%d: %v", i, err)
		}
		ids = append(ids, vid)
	}

	it, err := sm.GetIterator(cid)
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	count := 0
	for {
		_, _, ok, err := it.Next()
		if err != nil {
			t.Fatalf("iterator Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != len(ids) {
		t.Fatalf("iterator yielded %d records, want %d", count, len(ids))
	}
}

func TestStorageManagerUpdateValueMovesRecord(t *testing.T) {
	sm := newTestStorageManager(t)
	cid, _ := sm.CreateContainer()
	vid, _ := sm.InsertValue(cid, []byte("old"))

	newVid, err := sm.UpdateValue(vid, []byte("newvalue"))
	if err != nil {
		t.Fatalf("UpdateValue: %v", err)
	}
	got, err := sm.GetValue(newVid)
	if err != nil || string(got) != "newvalue" {
		t.Fatalf("GetValue(newVid) = %q, %v, want newvalue, nil", got, err)
	}
	// UpdateValue deletes then inserts; the insert reuses the lowest
	// tombstoned slot, which is the one the delete just freed.
	if *newVid.PageId != *vid.PageId || *newVid.SlotId != *vid.SlotId {
		t.Fatalf("UpdateValue returned %s, want the reused tombstoned slot %s", newVid, vid)
	}
}

func TestStorageManagerInsertOversizedValuePanics(t *testing.T) {
	sm := newTestStorageManager(t)
	cid, _ := sm.CreateContainer()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("InsertValue with oversized payload did not panic")
		}
		dbErr, ok := r.(*DBError)
		if !ok {
			t.Fatalf("panic value = %#v, want *DBError", r)
		}
		if dbErr.Code != ContractViolation {
			t.Fatalf("panic code = %s, want ContractViolation", dbErr.Code)
		}
	}()
	sm.InsertValue(cid, make([]byte, PageSize+1))
}

func TestStorageManagerResetEmptiesContainers(t *testing.T) {
	sm := newTestStorageManager(t)
	cid, _ := sm.CreateContainer()
	sm.InsertValue(cid, []byte("x"))

	if err := sm.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	it, err := sm.GetIterator(cid)
	if err != nil {
		t.Fatalf("GetIterator after reset: %v", err)
	}
	_, _, ok, err := it.Next()
	if err != nil {
		t.Fatalf("Next after reset: %v", err)
	}
	if ok {
		t.Fatalf("container still has data after Reset")
	}
}
