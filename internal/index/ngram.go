package index

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// gramSize is the longest gram indexed. Patterns up to this length are
// answered from postings alone; longer patterns intersect their grams and
// are then verified against the stored value.
const gramSize = 3

// ngramIndex maps every substring of length 1..gramSize of a field value to the
// rows containing it.
type ngramIndex struct {
	postings map[string]*roaring.Bitmap
}

func newNgramIndex() *ngramIndex {
	return &ngramIndex{postings: make(map[string]*roaring.Bitmap)}
}

// add indexes value for row. Rows must be added in ascending order for the
// bitmaps to stay append-only.
func (x *ngramIndex) add(row uint32, value string) {
	for i := 0; i < len(value); i++ {
		for n := 1; n <= gramSize && i+n <= len(value); n++ {
			g := value[i : i+n]
			bm, ok := x.postings[g]
			if !ok {
				bm = roaring.New()
				x.postings[g] = bm
			}
			bm.Add(row)
		}
	}
}

// candidates returns rows that may contain pattern and whether the result is
// exact. A nil bitmap means no row can match. The returned bitmap is owned by
// the caller.
func (x *ngramIndex) candidates(pattern string) (*roaring.Bitmap, bool) {
	if len(pattern) <= gramSize {
		bm, ok := x.postings[pattern]
		if !ok {
			return nil, true
		}
		return bm.Clone(), true
	}

	lists := make([]*roaring.Bitmap, 0, len(pattern)-gramSize+1)
	for i := 0; i+gramSize <= len(pattern); i++ {
		bm, ok := x.postings[pattern[i:i+gramSize]]
		if !ok {
			return nil, true
		}
		lists = append(lists, bm)
	}
	return roaring.FastAnd(lists...), false
}
