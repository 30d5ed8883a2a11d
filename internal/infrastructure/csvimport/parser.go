package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyFile is returned when the input has no bytes at all
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrMissingHeader is returned when the input has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrInvalidEncoding is returned for bytes that are not valid UTF-8
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)

// Parser reads a header row followed by data rows. Header names are
// normalised to lower_snake_case so "Base Price" and "base_price" match.
type Parser struct {
	delimiter rune
	latin1    bool
	checkUTF8 bool
	headers   []string
	line      int
	reader    *csv.Reader
}

// Option configures a Parser
type Option func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// WithWindows1252Fallback decodes input that is not valid UTF-8 as
// Windows-1252, which is what spreadsheet exports on Windows produce.
func WithWindows1252Fallback() Option {
	return func(p *Parser) {
		p.latin1 = true
	}
}

// NewParser wraps r. A UTF-8 byte order mark is discarded.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	p := &Parser{delimiter: ','}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)
	if bom, err := buf.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buf.Discard(3)
	}

	src, err := p.decode(buf)
	if err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(src)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

func (p *Parser) decode(buf *bufio.Reader) (io.Reader, error) {
	const sniff = 4096
	head, err := buf.Peek(sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	// only a full window can end in the middle of a rune
	if validPrefix(head, len(head) == sniff) {
		// the rest of the stream is checked record by record
		p.checkUTF8 = true
		return buf, nil
	}
	if !p.latin1 {
		return nil, ErrInvalidEncoding
	}
	return charmap.Windows1252.NewDecoder().Reader(buf), nil
}

// validPrefix reports whether b is valid UTF-8. When truncated is set a
// multi-byte rune cut off at the end of b is allowed.
func validPrefix(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && len(b) > i; i++ {
		if utf8.Valid(b[:len(b)-i]) {
			return true
		}
	}
	return false
}

func (p *Parser) validRecord(record []string) error {
	if !p.checkUTF8 {
		return nil
	}
	for _, field := range record {
		if !utf8.ValidString(field) {
			return ErrInvalidEncoding
		}
	}
	return nil
}

// ParseHeader reads the header row
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := p.validRecord(record); err != nil {
		return err
	}
	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = normalizeHeader(h)
	}
	p.line = 1
	return nil
}

// Headers returns the normalised header names
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing lists the required headers not present in the file
func (p *Parser) Missing(required ...string) []string {
	present := make(map[string]bool, len(p.headers))
	for _, h := range p.headers {
		present[h] = true
	}
	var missing []string
	for _, h := range required {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by normalised header
type Row struct {
	Line int
	data map[string]string
}

// Get returns the trimmed value of a column, or "" when absent
func (r Row) Get(column string) string {
	return r.data[column]
}

func (r Row) empty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next data row, or io.EOF
func (p *Parser) Next() (Row, error) {
	record, err := p.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		p.line++
		return Row{}, fmt.Errorf("line %d: %w", p.line, err)
	}
	p.line++
	if err := p.validRecord(record); err != nil {
		return Row{}, fmt.Errorf("line %d: %w", p.line, err)
	}

	row := Row{Line: p.line, data: make(map[string]string, len(p.headers))}
	for i, h := range p.headers {
		if i < len(record) {
			row.data[h] = strings.TrimSpace(record[i])
		}
	}
	return row, nil
}

// All reads every remaining row, skipping blank lines
func (p *Parser) All() ([]Row, error) {
	var rows []Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.empty() {
			continue
		}
		rows = append(rows, row)
	}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}
