package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word completions
type Server struct {
	searcher suggest.Searcher
	cfg      config.ServerConfig
	logger   *log.Logger
	requests atomic.Int64
}

// NewServer creates a completion server over searcher.
func NewServer(searcher suggest.Searcher, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Serve accepts connections on ln until ctx is done, then closes the
// listener and every open connection and waits for their handlers.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Infof("Listening on %s", ln.Addr())

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Server shutting down")
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			closeConn := context.AfterFunc(ctx, func() { conn.Close() })
			defer closeConn()

			s.logger.Debugf("Client connected: %s", conn.RemoteAddr())
			if err := s.ServeConn(ctx, conn); err != nil {
				s.logger.Warnf("Connection %s: %v", conn.RemoteAddr(), err)
			}
			s.logger.Debugf("Client disconnected: %s", conn.RemoteAddr())
		}()
	}
}

// ServeConn answers requests read from rw until the stream ends.
// A clean end of stream returns nil.
func (s *Server) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	dec := msgpack.NewDecoder(bufio.NewReader(rw))
	bw := bufio.NewWriter(rw)
	enc := msgpack.NewEncoder(bw)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			// the stream cannot be resynchronised after a bad message
			s.send(enc, bw, &Response{Error: "invalid msgpack request", Code: 400})
			return fmt.Errorf("decoding request: %w", err)
		}

		resp := s.handleRequest(req)
		if err := s.send(enc, bw, resp); err != nil {
			return err
		}
	}
}

func (s *Server) send(enc *msgpack.Encoder, bw *bufio.Writer, resp *Response) error {
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// handleRequest dispatches on the request command.
func (s *Server) handleRequest(req Request) *Response {
	s.requests.Add(1)

	switch req.Command {
	case "", CommandComplete:
		return s.handleComplete(req)
	case CommandHealth:
		return &Response{ID: req.ID, Status: "ok"}
	case CommandStats:
		stats := s.searcher.Stats()
		stats["requests"] = int(s.requests.Load())
		return &Response{ID: req.ID, Status: "ok", Stats: stats}
	default:
		return errorResponse(req.ID, fmt.Sprintf("unknown command: %s", req.Command), 400)
	}
}

func errorResponse(id, message string, code int) *Response {
	return &Response{ID: id, Error: message, Code: code}
}

// handleComplete validates the request, applies the limit defaults and runs the search.
func (s *Server) handleComplete(req Request) *Response {
	if s.cfg.MaxPrefix > 0 && utf8.RuneCountInString(req.Prefix) > s.cfg.MaxPrefix {
		s.logger.Debug("Prefix is too long in request", "id", req.ID)
		return errorResponse(req.ID, fmt.Sprintf("prefix exceeds %d characters", s.cfg.MaxPrefix), 400)
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	start := time.Now()
	results := s.searcher.Search(req.Prefix, limit)
	elapsed := time.Since(start)

	suggestions := make([]CompletionSuggestion, len(results))
	for i, r := range results {
		suggestions[i] = CompletionSuggestion{Word: r.Word, Rank: r.Rank}
	}
	return &Response{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	}
}
