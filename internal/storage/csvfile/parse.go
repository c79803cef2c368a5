package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"strings"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
)

// checkEvery is how many records are read between context checks
const checkEvery = 4096

// Parse reads comma separated text: a header line followed by data lines.
// Fields may be double-quoted, with "" escaping an embedded quote.
// Every field is trimmed, including blanks between a closing quote and the
// next delimiter; rows may have fewer or more fields than the header.
func Parse(r io.Reader) (storage.Dataset, error) {
	return ParseContext(context.Background(), r)
}

// ParseContext is Parse with cancellation between records
func ParseContext(ctx context.Context, r io.Reader) (storage.Dataset, error) {
	cr := csv.NewReader(newQuoteSpaceTrimmer(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return storage.Dataset{}, errors.New(errors.InvalidFileFormat, "CSV input has no header row")
	}
	if err != nil {
		return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to parse CSV header")
	}

	ds := storage.Dataset{Headers: trimAll(header)}
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return storage.Dataset{}, err
			}
		}

		record, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to parse CSV")
		}
		ds.Rows = append(ds.Rows, trimAll(record))
	}

	return ds, nil
}

func trimAll(fields []string) []string {
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// quoteSpaceTrimmer drops spaces and tabs that follow a closing quote when
// only a delimiter or line end comes next. encoding/csv rejects them otherwise.
type quoteSpaceTrimmer struct {
	src        *bufio.Reader
	inQuotes   bool
	fieldStart bool
	pending    []byte
}

func newQuoteSpaceTrimmer(r io.Reader) *quoteSpaceTrimmer {
	return &quoteSpaceTrimmer{src: bufio.NewReader(r), fieldStart: true}
}

func (t *quoteSpaceTrimmer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(t.pending) > 0 {
			c := copy(p[n:], t.pending)
			t.pending = t.pending[c:]
			n += c
			continue
		}

		b, err := t.src.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if err := t.step(b); err != nil {
			return n, err
		}
	}
	return n, nil
}

// step consumes b, plus any lookahead it needs, into pending
func (t *quoteSpaceTrimmer) step(b byte) error {
	if !t.inQuotes {
		switch {
		case b == '"' && t.fieldStart:
			t.inQuotes = true
			t.fieldStart = false
		case b == ',' || b == '\n':
			t.fieldStart = true
		case b == ' ' || b == '\t':
		default:
			t.fieldStart = false
		}
		t.pending = append(t.pending, b)
		return nil
	}

	if b != '"' {
		t.pending = append(t.pending, b)
		return nil
	}

	next, err := t.src.Peek(1)
	if err == nil && next[0] == '"' {
		t.src.ReadByte()
		t.pending = append(t.pending, '"', '"')
		return nil
	}

	t.inQuotes = false
	t.pending = append(t.pending, '"')

	var blanks []byte
	for {
		next, err := t.src.Peek(1)
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch next[0] {
		case ' ', '\t':
			t.src.ReadByte()
			blanks = append(blanks, next[0])
		case ',', '\n', '\r':
			return nil
		default:
			t.pending = append(t.pending, blanks...)
			return nil
		}
	}
}
