package godb

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// StorageManager is the facade every operator and CLI command goes
// through to reach disk: it owns one HeapFile per container, hands out
// HeapFileIterators, and performs the first-fit-then-grow page scan that
// AddValue's page-level free-space check on its own cannot do.
type StorageManager struct {
	baseDir   string
	tempOwned bool
	log       zerolog.Logger

	mu        sync.Mutex
	nextCid   ContainerId
	files     map[ContainerId]*HeapFile
}

// NewStorageManager opens (or creates) a StorageManager rooted at dir. If
// dir is empty a fresh temp directory is created and removed again on
// Shutdown, mirroring the original engine's per-test scratch directories.
func NewStorageManager(dir string, log zerolog.Logger) (*StorageManager, error) {
	tempOwned := false
	if dir == "" {
		d, err := os.MkdirTemp("", "gopherdb-sm-")
		if err != nil {
			return nil, newIOError("creating temp storage directory", err)
		}
		dir = d
		tempOwned = true
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, newIOError(fmt.Sprintf("creating storage directory %s", dir), err)
	}

	return &StorageManager{
		baseDir:   dir,
		tempOwned: tempOwned,
		log:       log,
		files:     make(map[ContainerId]*HeapFile),
	}, nil
}

func (sm *StorageManager) containerPath(cid ContainerId) string {
	return filepath.Join(sm.baseDir, fmt.Sprintf("container-%d.hf", cid))
}

// CreateContainer allocates a new, empty container and returns its id.
func (sm *StorageManager) CreateContainer() (ContainerId, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cid := sm.nextCid
	sm.nextCid++

	hf, err := NewHeapFile(cid, sm.containerPath(cid))
	if err != nil {
		return 0, err
	}
	sm.files[cid] = hf
	sm.log.Debug().Uint16("container", uint16(cid)).Msg("created container")
	return cid, nil
}

// RemoveContainer closes and deletes a container's backing file.
func (sm *StorageManager) RemoveContainer(cid ContainerId) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	hf, ok := sm.files[cid]
	if !ok {
		return newValidationError("no such container %d", cid)
	}
	path := hf.Path()
	if err := hf.Close(); err != nil {
		return err
	}
	delete(sm.files, cid)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return newIOError(fmt.Sprintf("removing container file %s", path), err)
	}
	return nil
}

func (sm *StorageManager) heapFile(cid ContainerId) (*HeapFile, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	hf, ok := sm.files[cid]
	if !ok {
		return nil, newValidationError("no such container %d", cid)
	}
	return hf, nil
}

// InsertValue stores data as a new record in the given container, scanning
// existing pages for free space before appending a fresh page, mirroring
// the original storage manager's insert_value.
func (sm *StorageManager) InsertValue(cid ContainerId, data []byte) (ValueId, error) {
	if len(data) > PageSize {
		fatalf("insert value of %d bytes exceeds page size %d", len(data), PageSize)
	}

	hf, err := sm.heapFile(cid)
	if err != nil {
		return ValueId{}, err
	}

	n := hf.NumPages()
	for pid := PageId(0); int(pid) < n; pid++ {
		page, err := hf.ReadPage(pid)
		if err != nil {
			continue
		}
		if slotId, ok := page.AddValue(data); ok {
			if err := hf.WritePage(page); err != nil {
				return ValueId{}, err
			}
			return newValueId(cid, pid, slotId), nil
		}
	}

	page, err := hf.AppendPage()
	if err != nil {
		return ValueId{}, err
	}
	slotId, ok := page.AddValue(data)
	if !ok {
		return ValueId{}, newExecutionError("value of %d bytes does not fit on an empty page", len(data))
	}
	if err := hf.WritePage(page); err != nil {
		return ValueId{}, err
	}
	return newValueId(cid, page.PageID(), slotId), nil
}

// GetValue returns the bytes stored at vid.
func (sm *StorageManager) GetValue(vid ValueId) ([]byte, error) {
	if !vid.HasLocation() {
		return nil, newValidationError("value id %s has no page/slot location", vid)
	}
	hf, err := sm.heapFile(vid.ContainerId)
	if err != nil {
		return nil, err
	}
	page, err := hf.ReadPage(*vid.PageId)
	if err != nil {
		return nil, err
	}
	data, ok := page.GetValue(*vid.SlotId)
	if !ok {
		return nil, newValidationError("value id %s does not refer to a live record", vid)
	}
	return data, nil
}

// DeleteValue tombstones the record at vid. A ValueId with no page/slot
// location is a harmless no-op, matching spec on deletes of already-gone
// values.
func (sm *StorageManager) DeleteValue(vid ValueId) error {
	if !vid.HasLocation() {
		return nil
	}
	hf, err := sm.heapFile(vid.ContainerId)
	if err != nil {
		return err
	}
	page, err := hf.ReadPage(*vid.PageId)
	if err != nil {
		return err
	}
	if !page.DeleteValue(*vid.SlotId) {
		return newValidationError("value id %s does not refer to a live record", vid)
	}
	return hf.WritePage(page)
}

// UpdateValue deletes the record at vid (if it still exists) and inserts
// data as a fresh record, possibly landing on a different page or slot.
func (sm *StorageManager) UpdateValue(vid ValueId, data []byte) (ValueId, error) {
	if vid.HasLocation() {
		if err := sm.DeleteValue(vid); err != nil {
			return ValueId{}, err
		}
	}
	return sm.InsertValue(vid.ContainerId, data)
}

// GetIterator returns a HeapFileIterator over the whole container.
func (sm *StorageManager) GetIterator(cid ContainerId) (*HeapFileIterator, error) {
	hf, err := sm.heapFile(cid)
	if err != nil {
		return nil, err
	}
	return NewHeapFileIterator(hf), nil
}

// GetIteratorFrom resumes a scan partway through the container, at the
// page/slot pair of a previously-seen ValueId. See newHeapFileIteratorFrom
// for the preserved resume-position quirk this inherits.
func (sm *StorageManager) GetIteratorFrom(cid ContainerId, startPage PageId, startSlot SlotId) (*HeapFileIterator, error) {
	hf, err := sm.heapFile(cid)
	if err != nil {
		return nil, err
	}
	return newHeapFileIteratorFrom(hf, startPage, startSlot)
}

// Reset closes and recreates every container's backing file, leaving each
// container id allocated but empty.
func (sm *StorageManager) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for cid, hf := range sm.files {
		path := hf.Path()
		if err := hf.Close(); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return newIOError(fmt.Sprintf("removing container file %s", path), err)
		}
		newHf, err := NewHeapFile(cid, path)
		if err != nil {
			return err
		}
		sm.files[cid] = newHf
	}
	return nil
}

// Shutdown closes every open container file and, if this StorageManager
// owns a temp scratch directory, removes it.
func (sm *StorageManager) Shutdown() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for cid, hf := range sm.files {
		if err := hf.Close(); err != nil {
			sm.log.Warn().Err(err).Uint16("container", uint16(cid)).Msg("error closing container during shutdown")
		}
	}
	sm.files = make(map[ContainerId]*HeapFile)

	if sm.tempOwned {
		return os.RemoveAll(sm.baseDir)
	}
	return nil
}
