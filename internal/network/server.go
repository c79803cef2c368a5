package network

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/executor"
)

const maxRequestBytes = 1 << 20

// Engine answers queries on behalf of every connection
type Engine interface {
	Query(query string) (*executor.Result, error)
}

// Request is one line sent by a client
type Request struct {
	Query string `json:"query"`
}

// QueryResponse is written for a successful query
type QueryResponse struct {
	Columns []string   `json:"columns"`
	Rows    []data.Row `json:"rows"`
	Count   int        `json:"count"`
}

// ErrorResponse is written for a failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Config controls the listener and per-connection throttling.
// A non-positive RateLimitQPS disables throttling.
type Config struct {
	Address        string
	RateLimitQPS   float64
	RateLimitBurst int
}

// Server speaks line-delimited JSON over TCP. All connections share one engine.
type Server struct {
	engine Engine
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func New(eng Engine, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: eng,
		cfg:    cfg,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds cfg.Address and serves until ctx is canceled
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled.
// On shutdown open connections are closed and Serve waits for their handlers.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.logger.Info("query server listening", slog.String("address", listener.Addr().String()))

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
		s.closeConns()
	})
	defer stop()

	defer s.wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if stderrors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("failed to accept connection", slog.Any("error", err))
			continue
		}

		s.track(conn)
		if ctx.Err() != nil {
			s.untrack(conn)
			return nil
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	logger := s.logger.With(slog.String("remote_addr", conn.RemoteAddr().String()))
	logger.Debug("connection opened")
	defer logger.Debug("connection closed")

	limiter := s.newLimiter()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if !s.reply(encoder, logger, failure(errors.NewInvalidQuery("Invalid request format: %v", err))) {
				return
			}
			continue
		}

		query := strings.TrimSpace(req.Query)
		if strings.EqualFold(query, "exit") || query == `\q` {
			return
		}

		if !limiter.Allow() {
			if !s.reply(encoder, logger, failure(errors.New(errors.RateLimited, "Rate limit exceeded"))) {
				return
			}
			continue
		}

		result, err := s.engine.Query(query)
		if err != nil {
			if !s.reply(encoder, logger, failure(err)) {
				return
			}
			continue
		}

		rows := result.Rows
		if rows == nil {
			rows = []data.Row{}
		}
		if !s.reply(encoder, logger, QueryResponse{Columns: result.Columns, Rows: rows, Count: len(rows)}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		logger.Warn("read error", slog.Any("error", err))
	}
}

func (s *Server) reply(encoder *json.Encoder, logger *slog.Logger, resp any) bool {
	if err := encoder.Encode(resp); err != nil {
		logger.Warn("encode error", slog.Any("error", err))
		return false
	}
	return true
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.cfg.RateLimitQPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := s.cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.cfg.RateLimitQPS), burst)
}

func failure(err error) ErrorResponse {
	qerr := errors.Normalize(err, errors.ExecutionError)
	return ErrorResponse{Error: ErrorBody{Code: string(qerr.Code), Message: qerr.Description()}}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
