// Package dictionary reads word/rank source lists and streams them into a trie builder.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrMalformed marks input that does not follow the dictionary layout.
var ErrMalformed = errors.New("malformed dictionary")

// maxLineSize bounds a single dictionary line.
const maxLineSize = 1 << 20

// Inserter receives entries during the load phase.
type Inserter interface {
	Insert(word string, rank int) error
}

// Entry is one (word, rank) pair of the source list.
type Entry struct {
	Word string
	Rank int
}

// Source describes what a load consumed.
type Source struct {
	Format Format
	// Words is the number of entries handed to the sink.
	Words int
	// Prefixes are the sample queries that follow the entries, if any.
	Prefixes []string
}

// ParseError reports where a load stopped.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dictionary line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// lineReader tracks line numbers for error reporting.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &lineReader{scanner: scanner}
}

// next returns the following line without its trailing CR.
func (lr *lineReader) next() (string, bool, error) {
	if !lr.scanner.Scan() {
		return "", false, lr.scanner.Err()
	}
	lr.line++
	return strings.TrimRight(lr.scanner.Text(), "\r"), true, nil
}

func (lr *lineReader) fail(format string, args ...any) error {
	return &ParseError{Line: lr.line, Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)}
}

// count reads a section header holding a non-negative decimal count.
func (lr *lineReader) count(section string) (int, error) {
	line, ok, err := lr.next()
	if err != nil {
		return 0, &ParseError{Line: lr.line + 1, Err: err}
	}
	if !ok {
		lr.line++
		return 0, lr.fail("missing %s count", section)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		return 0, lr.fail("invalid %s count %q", section, line)
	}
	return n, nil
}

// Load reads the text dictionary from r and feeds every entry to sink.
//
// The layout is a count N, N lines of "<word> <rank>", then an optional
// sample section: a count M followed by M prefixes, one per line. Loading
// stops at the first problem; a partially built index has no recovery path.
func Load(r io.Reader, sink Inserter) (*Source, error) {
	lr := newLineReader(r)
	src := &Source{Format: FormatText}

	n, err := lr.count("entry")
	if err != nil {
		return nil, err
	}
	log.Debugf("Loading %d dictionary entries", n)

	for i := 0; i < n; i++ {
		line, ok, err := lr.next()
		if err != nil {
			return nil, &ParseError{Line: lr.line + 1, Err: err}
		}
		if !ok {
			lr.line++
			return nil, lr.fail("expected %d entries, found %d", n, i)
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, lr.fail("want \"<word> <rank>\", got %q", line)
		}
		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, lr.fail("rank %q of %q is not a number", fields[1], fields[0])
		}
		if err := sink.Insert(fields[0], rank); err != nil {
			return nil, &ParseError{Line: lr.line, Err: err}
		}
		src.Words++
	}

	// the sample section is optional; blank trailing lines are tolerated
	var header string
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, &ParseError{Line: lr.line + 1, Err: err}
		}
		if !ok {
			log.Debugf("Loaded %d entries, no sample prefixes", src.Words)
			return src, nil
		}
		if strings.TrimSpace(line) != "" {
			header = line
			break
		}
	}

	m, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || m < 0 {
		return nil, lr.fail("invalid prefix count %q", header)
	}
	src.Prefixes = make([]string, 0, m)
	for i := 0; i < m; i++ {
		line, ok, err := lr.next()
		if err != nil {
			return nil, &ParseError{Line: lr.line + 1, Err: err}
		}
		if !ok {
			lr.line++
			return nil, lr.fail("expected %d prefixes, found %d", m, i)
		}
		src.Prefixes = append(src.Prefixes, strings.TrimSpace(line))
	}

	log.Debugf("Loaded %d entries and %d sample prefixes", src.Words, len(src.Prefixes))
	return src, nil
}
