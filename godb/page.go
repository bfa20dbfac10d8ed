package godb

import "encoding/binary"

// PageSize is the fixed size, in bytes, of every page in this engine. The
// repository's Non-goals rule out variable page sizes, so this stays a
// compile-time constant rather than a configuration knob.
const PageSize = 4096

// PageId identifies a page within a single HeapFile.
type PageId uint16

// SlotId identifies a record within a single HeapPage. Once assigned to a
// live record it never changes until that record is deleted.
type SlotId uint16

// ContainerId identifies a HeapFile (a "table") within a StorageManager.
type ContainerId uint16

// pageHeaderSize is the fixed 8-byte PageMetadata region common to every
// page: page_id, num_slots, free_start, free_size, all little-endian u16.
const pageHeaderSize = 8

// Page is a fixed PageSize byte buffer tagged with a page id. It is the unit
// of disk I/O; HeapPage interprets its bytes as a slotted-page layout.
type Page struct {
	id   PageId
	data [PageSize]byte
}

// NewPage returns a zero-initialized page with the header encoding an empty
// slot directory: num_slots=0, free_start=8, free_size=PageSize-8.
func NewPage(id PageId) *Page {
	p := &Page{id: id}
	binary.LittleEndian.PutUint16(p.data[0:2], uint16(id))
	binary.LittleEndian.PutUint16(p.data[2:4], 0)
	binary.LittleEndian.PutUint16(p.data[4:6], pageHeaderSize)
	binary.LittleEndian.PutUint16(p.data[6:8], PageSize-pageHeaderSize)
	return p
}

// PageID returns the page's identifier.
func (p *Page) PageID() PageId {
	return p.id
}

// ToBytes returns the exact in-memory image of the page.
func (p *Page) ToBytes() [PageSize]byte {
	return p.data
}

// PageFromBytes recovers a Page from its on-disk image, reading the page id
// back out of the header. from_bytes(to_bytes(p)) reproduces p byte-for-byte.
func PageFromBytes(b [PageSize]byte) *Page {
	id := PageId(binary.LittleEndian.Uint16(b[0:2]))
	return &Page{id: id, data: b}
}

func (p *Page) equals(other *Page) bool {
	return p.id == other.id && p.data == other.data
}
