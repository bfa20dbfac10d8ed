package godb

import (
	"fmt"
	"sync/atomic"
)

// ValueId is the storage engine's public record identifier: a container id
// plus optional segment/page/slot ids. SegmentId is never set by this
// engine; core code only ever populates PageId and SlotId together.
type ValueId struct {
	ContainerId ContainerId
	SegmentId   *uint16
	PageId      *PageId
	SlotId      *SlotId
}

func newValueId(cid ContainerId, pageId PageId, slotId SlotId) ValueId {
	p := pageId
	s := slotId
	return ValueId{ContainerId: cid, PageId: &p, SlotId: &s}
}

// HasLocation reports whether both PageId and SlotId are populated. A
// ValueId missing either is a harmless no-op for deletes and an error for
// gets, per spec.
func (v ValueId) HasLocation() bool {
	return v.PageId != nil && v.SlotId != nil
}

func (v ValueId) String() string {
	if !v.HasLocation() {
		return fmt.Sprintf("ValueId{container=%d}", v.ContainerId)
	}
	return fmt.Sprintf("ValueId{container=%d, page=%d, slot=%d}", v.ContainerId, *v.PageId, *v.SlotId)
}

// TransactionID is an opaque, process-unique handle. Transaction/locking
// semantics are out of scope for this core (see spec.md §1), and no
// StorageManager or operator method takes a TransactionID parameter.
type TransactionID struct {
	id int64
}

var tidCounter int64

// NewTID allocates a fresh, process-unique TransactionID.
func NewTID() TransactionID {
	return TransactionID{id: atomic.AddInt64(&tidCounter, 1)}
}

func (t TransactionID) String() string {
	return fmt.Sprintf("tid(%d)", t.id)
}
