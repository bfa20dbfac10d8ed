package godb

import (
	boom "github.com/tylertreat/BoomFilters"
)

// joinBloomFilter is a probabilistic pre-filter built over one pass of the
// inner (right) child's join-key values. NestedLoopJoin consults it before
// paying for a full inner rewind-scan per outer tuple: a negative answer
// proves no match is possible and the inner scan is skipped entirely; a
// positive answer only means "maybe", so the real nested-loop comparison
// still runs to confirm. This never changes NestedLoopJoin's result, only
// how often it has to re-scan the inner child.
type joinBloomFilter struct {
	filter *boom.ScalableBloomFilter
}

// newJoinBloomFilter builds a fresh filter with a 1% false-positive rate.
// expectedKeys is not used: the scalable filter grows as keys are added,
// so no up-front size is needed. A scalable bloom filter only ever has false
// positives, never false negatives or decay, which is what lets
// mightContain's "false means no match" guarantee hold no matter how many
// keys get added - unlike a stable bloom filter, which evicts old entries
// under bounded memory and can legitimately forget a key it was given.
func newJoinBloomFilter(expectedKeys uint) *joinBloomFilter {
	return &joinBloomFilter{filter: boom.NewDefaultScalableBloomFilter(0.01)}
}

func (j *joinBloomFilter) add(key Field) {
	j.filter.Add(bloomKey(key))
}

// mightContain reports whether key could plausibly match some row the
// filter was built from. A false result is a guarantee of no match.
func (j *joinBloomFilter) mightContain(key Field) bool {
	return j.filter.Test(bloomKey(key))
}

// bloomKey renders key so that numeric fields Compare treats as equal hash
// alike: Int and Decimal values are reduced to their shortest decimal form,
// so IntField(3), DecimalField(3, 0) and DecimalField(30, 1) share one key.
func bloomKey(key Field) []byte {
	if key.Kind == FieldKindInt {
		key = key.intAsDecimal()
	}
	if key.Kind == FieldKindDecimal {
		d := key.Decimal
		for d.Scale > 0 && d.Mantissa%10 == 0 {
			d.Mantissa /= 10
			d.Scale--
		}
		return []byte(d.String())
	}
	return []byte(key.String())
}
