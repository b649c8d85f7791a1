package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Binary layout: int32 entry count, then per entry a uint16 word length,
// the word bytes and a uint32 rank, all little endian.

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Path      string
	WordCount int
}

// ReadBinary streams a binary dictionary from r into sink.
func ReadBinary(r io.Reader, sink Inserter) (*Source, error) {
	reader := bufio.NewReader(r)
	src := &Source{Format: FormatBinary}

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if totalEntries < 0 {
		return nil, fmt.Errorf("%w: negative entry count %d", ErrMalformed, totalEntries)
	}

	var buf []byte
	for i := 0; i < int(totalEntries); i++ {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read word length: %w", i, noEOF(err))
		}
		if cap(buf) < int(wordLen) {
			buf = make([]byte, wordLen)
		}
		buf = buf[:wordLen]
		if _, err := io.ReadFull(reader, buf); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read word: %w", i, noEOF(err))
		}
		word := string(buf)

		var rank uint32
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read rank for %q: %w", i, word, noEOF(err))
		}
		if err := sink.Insert(word, int(rank)); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		src.Words++
	}
	return src, nil
}

// noEOF turns a clean EOF inside an entry into an unexpected one.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// WriteBinary writes entries in the binary layout.
func WriteBinary(w io.Writer, entries []Entry) error {
	if len(entries) > math.MaxInt32 {
		return fmt.Errorf("too many entries: %d", len(entries))
	}
	writer := bufio.NewWriter(w)

	if err := binary.Write(writer, binary.LittleEndian, int32(len(entries))); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if len(e.Word) > math.MaxUint16 {
			return fmt.Errorf("word too long for binary layout: %d bytes", len(e.Word))
		}
		if e.Rank < 0 || uint64(e.Rank) > math.MaxUint32 {
			return fmt.Errorf("rank %d of %q out of range", e.Rank, e.Word)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := writer.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(writer, binary.LittleEndian, uint32(e.Rank)); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Collector keeps entries in load order, for conversions.
type Collector struct {
	Entries []Entry
}

// Insert implements Inserter.
func (c *Collector) Insert(word string, rank int) error {
	if word == "" || rank < 0 {
		return fmt.Errorf("%w: entry (%q, %d)", ErrMalformed, word, rank)
	}
	c.Entries = append(c.Entries, Entry{Word: word, Rank: rank})
	return nil
}

// Convert reads a text dictionary and writes the binary layout.
// Sample prefixes are dropped.
func Convert(src io.Reader, dst io.Writer) (int, error) {
	var c Collector
	if _, err := Load(src, &c); err != nil {
		return 0, err
	}
	if err := WriteBinary(dst, c.Entries); err != nil {
		return 0, err
	}
	return len(c.Entries), nil
}

// AvailableChunks scans dir for dict_NNNN.bin files, sorted by ID.
func AvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Skipping %s: not a numbered chunk", file)
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		chunks = append(chunks, ChunkInfo{ID: id, Path: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// chunkWordCount reads the entry count from a chunk header.
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// LoadDir loads every chunk of dir in ID order. Later chunks overwrite
// ranks of words that appear in earlier ones.
func LoadDir(dir string, sink Inserter) (*Source, error) {
	chunks, err := AvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", dir)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	src := &Source{Format: FormatChunkDir}
	for _, chunk := range chunks {
		file, err := os.Open(chunk.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open chunk file %s: %w", chunk.Path, err)
		}
		part, err := ReadBinary(file, sink)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
		}
		src.Words += part.Words
		log.Debugf("Chunk %d loaded: %d words", chunk.ID, part.Words)
	}
	return src, nil
}
