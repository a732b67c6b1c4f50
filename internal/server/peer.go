package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"golang.org/x/time/rate"
)

// Peer represents a connected client.
// It owns the connection's decoder and encoder, replies are written in the order the
// commands were decoded and flushed once per read
type Peer struct {
	id      string
	conn    net.Conn
	decoder *resp.Decoder
	encoder *resp.Encoder
	limiter *rate.Limiter // nil when throttling is disabled

	readBuffer  int
	idleTimeout time.Duration

	stopping  atomic.Bool
	closeOnce sync.Once
}

// NewPeer initializes a new client peer from a network connection
func NewPeer(id string, conn net.Conn, opts Options) *Peer {
	p := &Peer{
		id:   id,
		conn: conn,
		decoder: resp.NewDecoder(
			resp.WithMaxArrayLen(opts.MaxArrayLen),
			resp.WithMaxBulkLen(opts.MaxBulkLen),
		),
		readBuffer:  opts.ReadBuffer,
		idleTimeout: opts.IdleTimeout,
	}
	if p.readBuffer <= 0 {
		p.readBuffer = DefaultReadBuffer
	}
	p.encoder = resp.NewEncoderSize(conn, p.readBuffer)
	if opts.RateLimit > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}
	return p
}

// ID returns the connection identifier
func (p *Peer) ID() string {
	return p.id
}

// RemoteAddr returns the client address
func (p *Peer) RemoteAddr() string {
	return p.conn.RemoteAddr().String()
}

// serve reads from the connection until it fails or is closed, executing every complete
// command. A malformed stream gets an error reply after the replies for the commands
// decoded before it, then serve returns the protocol error
func (p *Peer) serve(ctx context.Context, engine *Engine, metrics *Metrics) error {
	buf := make([]byte, p.readBuffer)

	for !p.stopping.Load() {
		if p.idleTimeout > 0 {
			if err := p.conn.SetReadDeadline(time.Now().Add(p.idleTimeout)); err != nil {
				return err
			}
			// stop may have run between the loop check and the new deadline
			if p.stopping.Load() {
				return nil
			}
		}

		n, readErr := p.conn.Read(buf)
		if n > 0 {
			frames, protoErr := p.decoder.Feed(buf[:n])

			for _, frame := range frames {
				if err := p.throttle(ctx, metrics); err != nil {
					return err
				}
				if err := p.encoder.Write(engine.Dispatch(frame)); err != nil {
					return err
				}
			}

			if protoErr != nil {
				metrics.errorReply(kindProtocol)
				if err := p.encoder.Write(protocolError(protoErr)); err != nil {
					return err
				}
				if err := p.flush(); err != nil {
					return err
				}
				return protoErr
			}

			if err := p.flush(); err != nil {
				return err
			}
		}

		if readErr != nil {
			return readErr
		}
	}

	return nil
}

// flush sends the replies buffered for the current read, if any
func (p *Peer) flush() error {
	if p.encoder.Buffered() == 0 {
		return nil
	}
	return p.encoder.Flush()
}

// throttle blocks until the rate limiter admits one more command
func (p *Peer) throttle(ctx context.Context, metrics *Metrics) error {
	if p.limiter == nil || p.limiter.Allow() {
		return nil
	}
	metrics.commandThrottled()
	return p.limiter.Wait(ctx)
}

// stop makes a blocked serve return after the replies in flight are flushed
func (p *Peer) stop() {
	p.stopping.Store(true)
	p.conn.SetReadDeadline(time.Now()) //nolint:errcheck
}

// Close terminates the underlying network connection
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.conn.Close()
	})
	return err
}
