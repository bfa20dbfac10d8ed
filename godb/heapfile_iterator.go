package godb

// HeapFileIterator walks every live (payload, ValueId) pair of a HeapFile
// in ascending (page, slot) order. It holds at most one page in memory at
// a time.
type HeapFileIterator struct {
	hf          *HeapFile
	containerId ContainerId

	curPageId PageId
	curPage   *HeapPage
	slotNext  func() ([]byte, SlotId, bool)

	done bool
}

// NewHeapFileIterator returns an iterator positioned before the first
// record of the first page.
func NewHeapFileIterator(hf *HeapFile) *HeapFileIterator {
	return &HeapFileIterator{
		hf:          hf,
		containerId: hf.ContainerId(),
		curPageId:   0,
	}
}

// newHeapFileIteratorFrom resumes iteration starting at the given page and
// slot. Note that it re-derives the page's live-slot cursor by re-running
// the page's Iterator from its own slot 0 rather than seeking directly to
// startSlot: the first call to Next after construction can therefore yield
// a record at or before startSlot rather than strictly after it, when
// startSlot itself is a tombstone or otherwise not the page's first live
// slot. This mirrors the original engine's HeapFileIterator::new_from and
// is preserved rather than fixed.
func newHeapFileIteratorFrom(hf *HeapFile, startPage PageId, startSlot SlotId) (*HeapFileIterator, error) {
	it := &HeapFileIterator{
		hf:          hf,
		containerId: hf.ContainerId(),
		curPageId:   startPage,
	}
	page, err := hf.ReadPage(startPage)
	if err != nil {
		return nil, err
	}
	it.curPage = page
	it.slotNext = page.Iterator()
	_ = startSlot
	return it, nil
}

// Next returns the next live record's bytes and ValueId, or ok=false once
// every page has been exhausted. A page whose ReadPage fails (e.g. a
// transient I/O error) is skipped rather than aborting the whole scan; the
// iterator simply advances to the following page.
func (it *HeapFileIterator) Next() (data []byte, vid ValueId, ok bool, err error) {
	if it.done {
		return nil, ValueId{}, false, nil
	}

	for {
		if it.curPage == nil {
			if int(it.curPageId) >= it.hf.NumPages() {
				it.done = true
				return nil, ValueId{}, false, nil
			}
			page, readErr := it.hf.ReadPage(it.curPageId)
			if readErr != nil {
				it.curPageId++
				continue
			}
			it.curPage = page
			it.slotNext = page.Iterator()
		}

		d, slotId, hasMore := it.slotNext()
		if hasMore {
			vid = newValueId(it.containerId, it.curPageId, slotId)
			return d, vid, true, nil
		}

		it.curPage = nil
		it.curPageId++
	}
}

// Rewind resets the iterator back to the start of the first page.
func (it *HeapFileIterator) Rewind() {
	it.curPageId = 0
	it.curPage = nil
	it.slotNext = nil
	it.done = false
}
