package godb

import "testing"

func TestHeapPageAddAndGetValue(t *testing.T) {
	hp := NewHeapPage(0)

	id1, ok := hp.AddValue([]byte("abc"))
	if !ok {
		t.Fatalf("AddValue failed on empty page")
	}
	id2, ok := hp.AddValue([]byte("defgh"))
	if !ok {
		t.Fatalf("AddValue failed on second insert")
	}
	if id1 != 0 || id2 != 1 {
		t.Fatalf("slot ids = %d, %d, want 0, 1", id1, id2)
	}

	v1, ok := hp.GetValue(id1)
	if !ok || string(v1) != "abc" {
		t.Fatalf("GetValue(id1) = %q, %v, want abc, true", v1, ok)
	}
	v2, ok := hp.GetValue(id2)
	if !ok || string(v2) != "defgh" {
		t.Fatalf("GetValue(id2) = %q, %v, want defgh, true", v2, ok)
	}
}

func TestHeapPageDeleteIsIdempotentAndTombstones(t *testing.T) {
	hp := NewHeapPage(0)
	id, _ := hp.AddValue([]byte("x"))

	if !hp.DeleteValue(id) {
		t.Fatalf("first DeleteValue returned false")
	}
	if !hp.DeleteValue(id) {
		t.Fatalf("second DeleteValue on same slot returned false, want idempotent true")
	}
	if _, ok := hp.GetValue(id); ok {
		t.Fatalf("GetValue succeeded on tombstoned slot")
	}
}

func TestHeapPageDeleteOutOfRange(t *testing.T) {
	hp := NewHeapPage(0)
	if hp.DeleteValue(5) {
		t.Fatalf("DeleteValue on out-of-range slot returned true")
	}
}

func TestHeapPageReusesTombstoneSlot(t *testing.T) {
	hp := NewHeapPage(0)
	id1, _ := hp.AddValue([]byte("aaaa"))
	hp.AddValue([]byte("bbbb"))
	hp.DeleteValue(id1)

	id3, ok := hp.AddValue([]byte("cc"))
	if !ok {
		t.Fatalf("AddValue after tombstone failed")
	}
	if id3 != id1 {
		t.Fatalf("AddValue assigned slot %d, want reused tombstone slot %d", id3, id1)
	}
	v, ok := hp.GetValue(id3)
	if !ok || string(v) != "cc" {
		t.Fatalf("GetValue(id3) = %q, %v, want cc, true", v, ok)
	}
}

func TestHeapPageFreeSpaceAccountsForTombstoneCompaction(t *testing.T) {
	hp := NewHeapPage(0)
	before := hp.GetFreeSpace()

	id1, _ := hp.AddValue(make([]byte, 100))
	mid := hp.GetFreeSpace()
	if mid != before-100-slotEntrySize {
		t.Fatalf("GetFreeSpace after insert = %d, want %d", mid, before-100-slotEntrySize)
	}

	hp.DeleteValue(id1)
	after := hp.GetFreeSpace()
	if after != mid+100 {
		t.Fatalf("GetFreeSpace after delete = %d, want %d", after, mid+100)
	}
}

func TestHeapPageAddValueFailsWhenFull(t *testing.T) {
	hp := NewHeapPage(0)
	big := make([]byte, PageSize)
	if _, ok := hp.AddValue(big); ok {
		t.Fatalf("AddValue succeeded with a record larger than the whole page")
	}
}

func TestHeapPageIteratorSkipsTombstonesInAscendingOrder(t *testing.T) {
	hp := NewHeapPage(0)
	hp.AddValue([]byte("a"))
	id2, _ := hp.AddValue([]byte("b"))
	hp.AddValue([]byte("c"))
	hp.DeleteValue(id2)

	it := hp.Iterator()
	var got []string
	for {
		data, _, ok := it()
		if !ok {
			break
		}
		got = append(got, string(data))
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("Iterator() yielded %v, want [a c]", got)
	}
}

func TestHeapPageCompactPreservesLiveRecords(t *testing.T) {
	hp := NewHeapPage(0)
	id1, _ := hp.AddValue([]byte("111"))
	id2, _ := hp.AddValue([]byte("222"))
	id3, _ := hp.AddValue([]byte("333"))
	hp.DeleteValue(id2)

	hp.compact()

	v1, ok1 := hp.GetValue(id1)
	v3, ok3 := hp.GetValue(id3)
	if !ok1 || string(v1) != "111" {
		t.Fatalf("after compact, GetValue(id1) = %q, %v", v1, ok1)
	}
	if !ok3 || string(v3) != "333" {
		t.Fatalf("after compact, GetValue(id3) = %q, %v", v3, ok3)
	}
	if _, ok := hp.GetValue(id2); ok {
		t.Fatalf("after compact, tombstoned slot came back live")
	}
}
