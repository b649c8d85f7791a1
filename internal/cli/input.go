// Package cli handles cmd line input and suggestions for DBG and testing the index
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InputHandler reads prefixes line by line and prints the ranked
// completions for each one.
type InputHandler struct {
	searcher     suggest.Searcher
	suggestLimit int
	maxPrefix    int
	requestCount int

	logger    *log.Logger
	printer   *message.Printer
	wordStyle lipgloss.Style
}

// NewInputHandler handles initialization of the InputHandler with basic parameters.
// A maxPrefix of 0 accepts prefixes of any length.
func NewInputHandler(searcher suggest.Searcher, limit, maxPrefix int) *InputHandler {
	return &InputHandler{
		searcher:     searcher,
		suggestLimit: limit,
		maxPrefix:    maxPrefix,
		logger:       logger.New("cli"),
		printer:      message.NewPrinter(language.English),
		wordStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
}

// Start runs the loop on stdin and stdout.
func (h *InputHandler) Start() error {
	return h.Run(os.Stdin, os.Stdout)
}

// Run begins the interface loop. It prompts only when in is a terminal
// and returns nil once in is exhausted.
func (h *InputHandler) Run(in io.Reader, out io.Writer) error {
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = term.IsTerminal(int(f.Fd()))
	}
	if prompt {
		fmt.Fprintln(out, "WordRank CLI")
		fmt.Fprintln(out, "type a prefix and press Enter to see the suggestions (Ctrl+D to exit):")
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		prefix := strings.TrimSpace(scanner.Text())
		if prefix == "" {
			continue
		}
		h.handleInput(out, prefix)
	}
}

// handleInput validates one prefix, searches and prints the results.
func (h *InputHandler) handleInput(out io.Writer, prefix string) {
	h.requestCount++

	if h.maxPrefix > 0 && utf8.RuneCountInString(prefix) > h.maxPrefix {
		h.logger.Errorf("Prefix too long: %s", prefix)
		return
	}

	start := time.Now()
	suggestions := h.searcher.Search(prefix, h.suggestLimit)
	h.logger.Debugf("Took [ %v ] for prefix '%s' (request %d)", time.Since(start), prefix, h.requestCount)

	if len(suggestions) == 0 {
		h.logger.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.printer.Fprintf(out, "Found %d suggestions for prefix '%s':\n", len(suggestions), prefix)
	for i, s := range suggestions {
		word := h.wordStyle.Render(s.Word)
		pad := strings.Repeat(" ", max(0, 24-utf8.RuneCountInString(s.Word)))
		h.printer.Fprintf(out, "%2d. %s%s (rank: %8d)\n", i+1, word, pad, s.Rank)
	}
}
