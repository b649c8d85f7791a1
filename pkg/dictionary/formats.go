package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Format represents different dictionary source formats
type Format int

const (
	FormatUnknown  Format = iota
	FormatText            // "N / word rank / M / prefix" text layout
	FormatBinary          // single binary file
	FormatChunkDir        // directory of dict_NNNN.bin chunks
)

// StdinPath selects standard input as a text source.
const StdinPath = "-"

// FormatInfo contains metadata about a dictionary format
type FormatInfo struct {
	Format      Format
	Description string
	MinSize     int64
}

var supportedFormats = map[Format]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		MinSize:     1, // at least the entry count
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Dictionary",
		MinSize:     4, // at least the count header
	},
	FormatChunkDir: {
		Format:      FormatChunkDir,
		Description: "Chunked Binary Dictionary Directory",
	},
}

func (f Format) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// DetectFormat picks the format of path from its type, extension and header.
func DetectFormat(path string) (Format, error) {
	if path == StdinPath {
		return FormatText, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return FormatChunkDir, nil
	}

	if strings.ToLower(filepath.Ext(path)) == ".bin" {
		if err := validateBinaryFormat(path, info.Size()); err != nil {
			return FormatUnknown, err
		}
		return FormatBinary, nil
	}
	if info.Size() < supportedFormats[FormatText].MinSize {
		return FormatUnknown, fmt.Errorf("file %s is empty", path)
	}
	return FormatText, nil
}

// validateBinaryFormat checks the header of a binary dictionary file
func validateBinaryFormat(path string, size int64) error {
	if size < supportedFormats[FormatBinary].MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for %s", path, size, FormatBinary)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	if wordCount < 0 {
		return fmt.Errorf("invalid word count in %s: %d (negative)", path, wordCount)
	}
	log.Debugf("Binary file %s validated: %d words", path, wordCount)
	return nil
}

// LoadFile loads a dictionary from path, which may be StdinPath, a text
// file, a binary file or a chunk directory.
func LoadFile(path string, sink Inserter) (*Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loading %s as %s", path, format)

	switch format {
	case FormatChunkDir:
		return LoadDir(path, sink)
	case FormatText, FormatBinary:
	default:
		return nil, fmt.Errorf("unsupported format for %s", path)
	}

	file := os.Stdin
	if path != StdinPath {
		if file, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
		}
		defer file.Close()
	}
	if format == FormatBinary {
		return ReadBinary(file, sink)
	}
	return Load(file, sink)
}
