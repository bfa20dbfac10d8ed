package godb

import (
	"encoding/binary"
	"sort"
)

// slotEntrySize is the size in bytes of a single slot-directory entry:
// slot_id:u16, rec_off:u16, rec_size:u16.
const slotEntrySize = 6

// HeapPage interprets a Page's bytes as a slotted page: an 8-byte
// PageMetadata header, a slot directory that starts at offset 8 and grows
// toward higher offsets, and record payloads packed against the page tail
// that grow toward lower offsets. Slot ids are stable for
// the lifetime of a page: directory position i always holds the slot whose
// id is i, since ids are assigned as the then-current slot count and never
// renumbered.
type HeapPage struct {
	page *Page
}

// NewHeapPage creates an empty HeapPage with the given page id.
func NewHeapPage(id PageId) *HeapPage {
	return &HeapPage{page: NewPage(id)}
}

// HeapPageFromPage wraps an existing Page (e.g. one just read off disk) as
// a HeapPage.
func HeapPageFromPage(p *Page) *HeapPage {
	return &HeapPage{page: p}
}

// Page returns the underlying Page, e.g. for serialization by HeapFile.
func (h *HeapPage) Page() *Page {
	return h.page
}

func (h *HeapPage) PageID() PageId {
	return h.page.PageID()
}

func (h *HeapPage) numSlots() int {
	return int(binary.LittleEndian.Uint16(h.page.data[2:4]))
}

func (h *HeapPage) setNumSlots(n int) {
	binary.LittleEndian.PutUint16(h.page.data[2:4], uint16(n))
}

func (h *HeapPage) freeStart() int {
	return int(binary.LittleEndian.Uint16(h.page.data[4:6]))
}

func (h *HeapPage) setFreeStart(v int) {
	binary.LittleEndian.PutUint16(h.page.data[4:6], uint16(v))
}

func (h *HeapPage) freeSize() int {
	return int(binary.LittleEndian.Uint16(h.page.data[6:8]))
}

func (h *HeapPage) setFreeSize(v int) {
	binary.LittleEndian.PutUint16(h.page.data[6:8], uint16(v))
}

func (h *HeapPage) slotOffset(i int) int {
	return pageHeaderSize + i*slotEntrySize
}

func (h *HeapPage) slotRecOff(i int) int {
	o := h.slotOffset(i)
	return int(binary.LittleEndian.Uint16(h.page.data[o+2 : o+4]))
}

func (h *HeapPage) slotRecSize(i int) int {
	o := h.slotOffset(i)
	return int(binary.LittleEndian.Uint16(h.page.data[o+4 : o+6]))
}

func (h *HeapPage) setSlot(i int, slotId SlotId, recOff, recSize int) {
	o := h.slotOffset(i)
	binary.LittleEndian.PutUint16(h.page.data[o:o+2], uint16(slotId))
	binary.LittleEndian.PutUint16(h.page.data[o+2:o+4], uint16(recOff))
	binary.LittleEndian.PutUint16(h.page.data[o+4:o+6], uint16(recSize))
}

// GetHeaderSize returns 8 + num_slots*6: the fixed metadata plus the slot
// directory.
func (h *HeapPage) GetHeaderSize() int {
	return pageHeaderSize + h.numSlots()*slotEntrySize
}

// GetFreeSpace returns the total reclaimable capacity of the page: PageSize
// minus the header minus the sum of every live record's size. This is the
// total, not just the current contiguous free region, since tombstoned
// slots can be compacted to reclaim their space.
func (h *HeapPage) GetFreeSpace() int {
	used := 0
	for i := 0; i < h.numSlots(); i++ {
		if sz := h.slotRecSize(i); sz > 0 {
			used += sz
		}
	}
	return PageSize - h.GetHeaderSize() - used
}

// lowestTombstone returns the directory index of the lowest-id tombstoned
// slot, if any.
func (h *HeapPage) lowestTombstone() (int, bool) {
	for i := 0; i < h.numSlots(); i++ {
		if h.slotRecSize(i) == 0 {
			return i, true
		}
	}
	return 0, false
}

// AddValue attempts to store bytes as a new record. It returns the assigned
// SlotId and true on success, or false if there is not enough reclaimable
// free space (bytes.len() plus a new 6-byte directory entry, if no
// tombstone is available for reuse).
//
// Insertion never partially mutates: either the post-insert invariant holds
// or nothing changes and (0, false) is returned.
func (h *HeapPage) AddValue(data []byte) (SlotId, bool) {
	size := len(data)
	total := h.GetFreeSpace()

	if idx, ok := h.lowestTombstone(); ok {
		if total < size {
			return 0, false
		}
		if h.freeSize() < size {
			h.compact()
		}
		off := h.freeStart() + h.freeSize() - size
		copy(h.page.data[off:off+size], data)
		h.setSlot(idx, SlotId(idx), off, size)
		h.setFreeSize(h.freeSize() - size)
		return SlotId(idx), true
	}

	needed := size + slotEntrySize
	if total < needed {
		return 0, false
	}
	if h.freeSize() < needed {
		h.compact()
	}
	off := h.freeStart() + h.freeSize() - size
	copy(h.page.data[off:off+size], data)

	newId := h.numSlots()
	h.setNumSlots(newId + 1)
	h.setSlot(newId, SlotId(newId), off, size)
	h.setFreeStart(h.freeStart() + slotEntrySize)
	h.setFreeSize(h.freeSize() - size - slotEntrySize)
	return SlotId(newId), true
}

// GetValue returns a copy of the record bytes for a live slot, or
// (nil, false) if slot_id is out of range or tombstoned.
func (h *HeapPage) GetValue(slotId SlotId) ([]byte, bool) {
	idx := int(slotId)
	if idx < 0 || idx >= h.numSlots() {
		return nil, false
	}
	size := h.slotRecSize(idx)
	if size == 0 {
		return nil, false
	}
	off := h.slotRecOff(idx)
	out := make([]byte, size)
	copy(out, h.page.data[off:off+size])
	return out, true
}

// DeleteValue tombstones a live slot (rec_size := 0), leaving the directory
// entry in place; it does not reclaim storage immediately. Returns false
// for an out-of-range slot id; returns true (idempotently) even if the slot
// is already tombstoned.
func (h *HeapPage) DeleteValue(slotId SlotId) bool {
	idx := int(slotId)
	if idx < 0 || idx >= h.numSlots() {
		return false
	}
	off := h.slotRecOff(idx)
	h.setSlot(idx, slotId, off, 0)
	return true
}

// compact re-packs live records against the page tail in descending
// current-offset order (so payloads relocate downward without ever
// overlapping each other), preserving their relative order, slot ids, and
// directory order. Tombstones' offsets are set to the new free-region
// boundary so they never alias a live record.
func (h *HeapPage) compact() {
	n := h.numSlots()
	live := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if h.slotRecSize(i) > 0 {
			live = append(live, i)
		}
	}
	sort.Slice(live, func(a, b int) bool {
		return h.slotRecOff(live[a]) > h.slotRecOff(live[b])
	})

	writePos := PageSize
	for _, idx := range live {
		sz := h.slotRecSize(idx)
		oldOff := h.slotRecOff(idx)
		writePos -= sz
		if writePos != oldOff {
			tmp := make([]byte, sz)
			copy(tmp, h.page.data[oldOff:oldOff+sz])
			copy(h.page.data[writePos:writePos+sz], tmp)
		}
		h.setSlot(idx, SlotId(idx), writePos, sz)
	}

	headerSize := pageHeaderSize + n*slotEntrySize
	h.setFreeStart(headerSize)
	h.setFreeSize(writePos - headerSize)

	freeBoundary := h.freeStart() + h.freeSize()
	for i := 0; i < n; i++ {
		if h.slotRecSize(i) == 0 {
			h.setSlot(i, SlotId(i), freeBoundary, 0)
		}
	}
}

// NextLiveSlotByOffset returns the next slot, in on-page byte-offset order,
// whose record is still live after the given slot id's offset. This mirrors
// the original engine's helper used to assert that compaction preserves the
// relative on-page order of surviving records; it is not part of the public
// slot-id iteration order (which is always ascending by slot id).
func (h *HeapPage) NextLiveSlotByOffset(slotId SlotId) (SlotId, bool) {
	idx := int(slotId)
	if idx < 0 || idx >= h.numSlots() {
		return 0, false
	}
	currentOff := h.slotRecOff(idx)
	best := -1
	bestOff := -1
	for i := 0; i < h.numSlots(); i++ {
		if h.slotRecSize(i) == 0 {
			continue
		}
		off := h.slotRecOff(i)
		if off > currentOff && (best == -1 || off < bestOff) {
			best = i
			bestOff = off
		}
	}
	if best == -1 {
		return 0, false
	}
	return SlotId(best), true
}

// Iterator returns a consuming function that yields (bytes, slot_id) for
// every live slot in ascending slot_id order, skipping tombstones. The
// returned function is finite and not restartable.
func (h *HeapPage) Iterator() func() ([]byte, SlotId, bool) {
	i := 0
	n := h.numSlots()
	return func() ([]byte, SlotId, bool) {
		for i < n {
			idx := i
			i++
			if h.slotRecSize(idx) == 0 {
				continue
			}
			data, _ := h.GetValue(SlotId(idx))
			return data, SlotId(idx), true
		}
		return nil, 0, false
	}
}
