package godb

// HeapFileScan is the OperatorIterator leaf over a stored container: it
// decodes every live record in a HeapFile as a Tuple of the given schema.
// Configure(true) makes it buffer the decoded tuples in memory so Rewind
// can replay them without a second disk scan; Configure(false) streams
// directly off a HeapFileIterator instead.
type HeapFileScan struct {
	sm     *StorageManager
	cid    ContainerId
	schema *TableSchema

	willRewind bool
	opened     bool

	// streaming path
	fileIter *HeapFileIterator

	// buffered (rewindable) path
	buffered []*Tuple
	pos      int
}

// NewHeapFileScan builds a scan over container cid, interpreting its
// records with schema.
func NewHeapFileScan(sm *StorageManager, cid ContainerId, schema *TableSchema) *HeapFileScan {
	return &HeapFileScan{sm: sm, cid: cid, schema: schema}
}

func (s *HeapFileScan) Configure(willRewind bool) error {
	s.willRewind = willRewind
	return nil
}

func (s *HeapFileScan) Open() error {
	if s.opened {
		fatalf("HeapFileScan.Open called twice without Close")
	}
	s.opened = true

	if !s.willRewind {
		it, err := s.sm.GetIterator(s.cid)
		if err != nil {
			return err
		}
		s.fileIter = it
		return nil
	}

	it, err := s.sm.GetIterator(s.cid)
	if err != nil {
		return err
	}
	s.buffered = s.buffered[:0]
	for {
		data, vid, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t, err := DecodeTuple(data, s.schema)
		if err != nil {
			return err
		}
		t.Rid = vid
		s.buffered = append(s.buffered, t)
	}
	s.pos = 0
	return nil
}

func (s *HeapFileScan) Next() (*Tuple, error) {
	if !s.opened {
		fatalf("HeapFileScan.Next called before Open")
	}
	if !s.willRewind {
		data, vid, ok, err := s.fileIter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		t, err := DecodeTuple(data, s.schema)
		if err != nil {
			return nil, err
		}
		t.Rid = vid
		return t, nil
	}

	if s.pos >= len(s.buffered) {
		return nil, nil
	}
	t := s.buffered[s.pos]
	s.pos++
	return t, nil
}

func (s *HeapFileScan) Rewind() error {
	if !s.willRewind {
		fatalf("HeapFileScan.Rewind called without Configure(true)")
	}
	s.pos = 0
	return nil
}

func (s *HeapFileScan) Close() error {
	s.opened = false
	s.fileIter = nil
	return nil
}

func (s *HeapFileScan) Schema() *TableSchema {
	return s.schema
}
