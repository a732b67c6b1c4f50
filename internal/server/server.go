package server

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// DefaultReadBuffer is the size of a single socket read
const DefaultReadBuffer = 16 * 1024

// Options tune every connection the server accepts
type Options struct {
	ReadBuffer  int           // bytes per socket read
	IdleTimeout time.Duration // close clients silent for this long, 0 disables
	RateLimit   int           // commands per second per connection, 0 disables
	MaxArrayLen int           // elements per command
	MaxBulkLen  int           // bytes per argument
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		ReadBuffer:  DefaultReadBuffer,
		MaxArrayLen: resp.DefaultMaxArrayLen,
		MaxBulkLen:  resp.DefaultMaxBulkLen,
	}
}

// Server accepts TCP clients and serves each one on its own goroutine
type Server struct {
	engine  *Engine
	logger  *zap.Logger
	metrics *Metrics
	opts    Options

	peers *xsync.MapOf[string, *Peer] // live connections by id
	wg    sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// NewServer creates a server executing commands on engine. metrics may be nil
func NewServer(engine *Engine, logger *zap.Logger, metrics *Metrics, opts Options) *Server {
	return &Server{
		engine:  engine,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
		peers:   xsync.NewMapOf[string, *Peer](),
	}
}

// Serve accepts connections on ln until ctx is cancelled or Shutdown is called.
// It returns nil after a requested stop
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close() //nolint:errcheck
		return net.ErrClosed
	}
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		ln.Close() //nolint:errcheck
	})
	defer stop()

	s.logger.Info("listening on", zap.String("address", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept error", zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close() //nolint:errcheck
			return nil
		}
		peer := NewPeer(ulid.Make().String(), conn, s.opts)
		s.peers.Store(peer.ID(), peer)
		s.wg.Add(1)
		s.mu.Unlock()

		s.metrics.connectionOpened()
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, peer)
		}()
	}
}

// handleConnection handles a connection for a single user
func (s *Server) handleConnection(ctx context.Context, peer *Peer) {
	log := s.logger.With(zap.String("conn", peer.ID()))

	if log.Core().Enabled(zap.DebugLevel) {
		log.Debug("client connected", zap.String("addr", peer.RemoteAddr()))
	}

	defer func() {
		peer.Close() //nolint:errcheck
		s.peers.Delete(peer.ID())
		s.metrics.connectionClosed()
		// log connection close
		if log.Core().Enabled(zap.DebugLevel) {
			log.Debug("client disconnected", zap.String("addr", peer.RemoteAddr()))
		}
	}()

	err := peer.serve(ctx, s.engine, s.metrics)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, context.Canceled):
	case errors.Is(err, resp.ErrProtocol):
		log.Warn("protocol error, closing connection", zap.Error(err))
	case errors.Is(err, os.ErrDeadlineExceeded):
		if !peer.stopping.Load() {
			log.Debug("idle timeout, closing connection")
		}
	default:
		log.Error("connection error", zap.Error(err))
	}
}

// Clients returns the number of open connections
func (s *Server) Clients() int {
	return s.peers.Size()
}

// Shutdown stops accepting, asks every connection to finish the commands it has read,
// and waits for them until ctx is done. Connections still open then are closed
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	if s.listener != nil {
		s.listener.Close() //nolint:errcheck
	}
	s.mu.Unlock()

	s.peers.Range(func(_ string, p *Peer) bool {
		p.stop()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.peers.Range(func(_ string, p *Peer) bool {
			p.Close() //nolint:errcheck
			return true
		})
		return ctx.Err()
	}
}
