package godb

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// HeapFile is an ordered sequence of fixed-size Pages backed by one
// operating-system file per container. Page i occupies bytes
// [i*PageSize, (i+1)*PageSize) of the backing file; there is no separate
// free-space map at the file level, so callers scan pages (via
// StorageManager) to find room for an insert.
//
// On unix builds a HeapFile takes an advisory exclusive lock on its backing
// file from NewHeapFile until Close, so two StorageManagers never write the
// same container concurrently; on other builds no lock is taken.
type HeapFile struct {
	containerId ContainerId
	path        string

	mu   sync.Mutex
	file *os.File

	reads  uint64
	writes uint64
}

// NewHeapFile opens (creating if necessary) the backing file for a
// container and takes an advisory lock on it.
func NewHeapFile(cid ContainerId, path string) (*HeapFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, newIOError(fmt.Sprintf("opening heap file %s", path), err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, newIOError(fmt.Sprintf("locking heap file %s", path), err)
	}
	return &HeapFile{containerId: cid, path: path, file: f}, nil
}

// ContainerId returns the container this heap file belongs to.
func (hf *HeapFile) ContainerId() ContainerId {
	return hf.containerId
}

// Path returns the backing file's path.
func (hf *HeapFile) Path() string {
	return hf.path
}

// NumPages returns how many fixed-size pages the backing file currently
// holds, derived from its length.
func (hf *HeapFile) NumPages() int {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	return hf.numPagesLocked()
}

func (hf *HeapFile) numPagesLocked() int {
	info, err := hf.file.Stat()
	if err != nil {
		return 0
	}
	return int(info.Size() / PageSize)
}

// ReadPage loads page pageId off disk and counts the read. Reading a page
// past the current end of file is an IOError.
func (hf *HeapFile) ReadPage(pageId PageId) (*HeapPage, error) {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	if int(pageId) >= hf.numPagesLocked() {
		return nil, newIOError(fmt.Sprintf("page %d does not exist in %s", pageId, hf.path), nil)
	}

	var buf [PageSize]byte
	off := int64(pageId) * PageSize
	if _, err := hf.file.ReadAt(buf[:], off); err != nil {
		return nil, newIOError(fmt.Sprintf("reading page %d of %s", pageId, hf.path), err)
	}
	atomic.AddUint64(&hf.reads, 1)
	return HeapPageFromPage(PageFromBytes(buf)), nil
}

// WritePage flushes a page's current bytes back to its slot in the backing
// file and counts the write. It is the caller's job to ensure hp.PageID()
// is a page that already exists (see AppendPage for growing the file).
func (hf *HeapFile) WritePage(hp *HeapPage) error {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	buf := hp.Page().ToBytes()
	off := int64(hp.PageID()) * PageSize
	if _, err := hf.file.WriteAt(buf[:], off); err != nil {
		return newIOError(fmt.Sprintf("writing page %d of %s", hp.PageID(), hf.path), err)
	}
	atomic.AddUint64(&hf.writes, 1)
	return nil
}

// AppendPage allocates a new empty page at the current end of file, writes
// it out so NumPages reflects it immediately, and returns it.
func (hf *HeapFile) AppendPage() (*HeapPage, error) {
	hf.mu.Lock()
	n := hf.numPagesLocked()
	hf.mu.Unlock()

	hp := NewHeapPage(PageId(n))
	if err := hf.WritePage(hp); err != nil {
		return nil, err
	}
	return hp, nil
}

// Reads returns the lifetime count of pages read off disk.
func (hf *HeapFile) Reads() uint64 {
	return atomic.LoadUint64(&hf.reads)
}

// Writes returns the lifetime count of pages written to disk.
func (hf *HeapFile) Writes() uint64 {
	return atomic.LoadUint64(&hf.writes)
}

// Close releases the advisory lock and closes the backing file.
func (hf *HeapFile) Close() error {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	unlockFile(hf.file)
	return hf.file.Close()
}
