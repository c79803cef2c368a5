package indexing

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/schema"
)

var (
	// ErrNotNumeric is returned by FindGreaterThan on a textual index
	ErrNotNumeric = errors.New("cannot perform greater-than on non-numeric column")

	// ErrTooManyRows is returned when row positions exceed the bitmap range
	ErrTooManyRows = errors.New("too many rows to index")
)

// ColumnIndex maps each distinct value of one column to the set of row
// positions holding it. Null values are never indexed.
//
// An index is built once, then sealed. After Seal the key order is fixed and
// reads are safe from multiple goroutines.
type ColumnIndex struct {
	Column string
	Type   schema.ColumnType

	numbers map[float64]*roaring.Bitmap
	texts   map[string]*roaring.Bitmap

	// sortedKeys holds the numeric keys in ascending order; set by Seal
	sortedKeys []float64
	sealed     bool
}

// New creates an empty index for a column of the given type
func New(column string, colType schema.ColumnType) *ColumnIndex {
	return &ColumnIndex{
		Column:  column,
		Type:    colType,
		numbers: make(map[float64]*roaring.Bitmap),
		texts:   make(map[string]*roaring.Bitmap),
	}
}

// Add records that row holds v. Null is ignored.
// Adding to a sealed index is a programming error and panics.
func (idx *ColumnIndex) Add(v data.Value, row int) {
	if idx.sealed {
		panic(fmt.Sprintf("indexing: add to sealed index on %q", idx.Column))
	}

	switch v.Kind() {
	case data.KindNumber:
		f, _ := v.AsNumber()
		bm, ok := idx.numbers[f]
		if !ok {
			bm = roaring.New()
			idx.numbers[f] = bm
		}
		bm.Add(uint32(row))
	case data.KindText:
		s, _ := v.AsText()
		bm, ok := idx.texts[s]
		if !ok {
			bm = roaring.New()
			idx.texts[s] = bm
		}
		bm.Add(uint32(row))
	}
}

// Seal freezes the index and sorts the numeric keys for range lookups
func (idx *ColumnIndex) Seal() {
	if idx.sealed {
		return
	}
	keys := make([]float64, 0, len(idx.numbers))
	for k, bm := range idx.numbers {
		bm.RunOptimize()
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, bm := range idx.texts {
		bm.RunOptimize()
	}
	idx.sortedKeys = keys
	idx.sealed = true
}

// Find returns the rows holding exactly v. The result is a fresh bitmap owned by the caller.
func (idx *ColumnIndex) Find(v data.Value) *roaring.Bitmap {
	var bm *roaring.Bitmap
	switch v.Kind() {
	case data.KindNumber:
		f, _ := v.AsNumber()
		bm = idx.numbers[f]
	case data.KindText:
		s, _ := v.AsText()
		bm = idx.texts[s]
	}
	if bm == nil {
		return roaring.New()
	}
	return bm.Clone()
}

// FindGreaterThan returns the rows whose value is strictly greater than threshold.
// The cost is proportional to the number of distinct keys, not rows.
func (idx *ColumnIndex) FindGreaterThan(threshold float64) (*roaring.Bitmap, error) {
	if !idx.Type.IsNumeric() {
		return nil, ErrNotNumeric
	}

	var matches []*roaring.Bitmap
	if idx.sealed {
		start := sort.Search(len(idx.sortedKeys), func(i int) bool {
			return idx.sortedKeys[i] > threshold
		})
		matches = make([]*roaring.Bitmap, 0, len(idx.sortedKeys)-start)
		for _, k := range idx.sortedKeys[start:] {
			matches = append(matches, idx.numbers[k])
		}
	} else {
		for k, bm := range idx.numbers {
			if k > threshold {
				matches = append(matches, bm)
			}
		}
	}

	if len(matches) == 0 {
		return roaring.New(), nil
	}
	return roaring.FastOr(matches...), nil
}

// Cardinality returns the number of distinct indexed values
func (idx *ColumnIndex) Cardinality() int {
	return len(idx.numbers) + len(idx.texts)
}
