package ingestor

import (
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"
)

// Batch is the set of keys drained from the listener in one ReadBatch.
type Batch struct {
	Values  []uint32
	Events  int
	Skipped int // events that carried no valid key
}

// --- TCP Ingestor using go-lumber v2 ---

// TCPIngestor receives keys from lumberjack v2 clients. An event carries
// keys either as a "message" string of whitespace-separated integers or as
// a numeric "value" field.
type TCPIngestor struct {
	listener    net.Listener
	readTimeout time.Duration
	events      chan *lj.Batch
	server      *srv2.Server
	drained     atomic.Bool // set once the server stopped and events is closed
	closeOnce   sync.Once
	closeErr    error
}

func NewTCPIngestor(addr string, readTimeout time.Duration) (*TCPIngestor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &TCPIngestor{
		listener:    ln,
		readTimeout: readTimeout,
		events:      make(chan *lj.Batch, 1000),
	}, nil
}

// Addr returns the listening address.
func (ing *TCPIngestor) Addr() net.Addr {
	return ing.listener.Addr()
}

// Accept starts the lumberjack v2 server.
func (ing *TCPIngestor) Accept() error {
	srv, err := srv2.NewWithListener(
		ing.listener,
		srv2.Timeout(ing.readTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create lumberjack server: %w", err)
	}
	ing.server = srv

	// Pull batches off ReceiveChan and ack them.
	go func() {
		for batch := range ing.server.ReceiveChan() {
			ing.events <- batch
			batch.ACK()
		}
		close(ing.events)
		ing.drained.Store(true)
	}()

	return nil
}

func parseEvent(evt map[string]interface{}) ([]uint32, error) {
	if raw, ok := evt["value"]; ok {
		v, err := numericValue(raw)
		if err != nil {
			return nil, err
		}
		return []uint32{v}, nil
	}

	msg, ok := evt["message"].(string)
	if !ok {
		return nil, errors.New("missing message field")
	}
	values, err := ParseValues(msg)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("empty message")
	}
	return values, nil
}

// numericValue accepts the number types a decoded event can hold. JSON
// numbers arrive as float64.
func numericValue(raw interface{}) (uint32, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
			return 0, fmt.Errorf("value %v is not an unsigned 32-bit integer", v)
		}
		return uint32(v), nil
	case int:
		if v < 0 || int64(v) > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return uint32(v), nil
	case uint64:
		if v > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return uint32(v), nil
	case uint32:
		return v, nil
	case string:
		return ParseValue(v)
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}

// ReadBatch drains every batch received so far without blocking.
func (ing *TCPIngestor) ReadBatch() (Batch, error) {
	var out Batch

	for {
		select {
		case batch, ok := <-ing.events:
			if !ok {
				return out, nil
			}
			for _, evt := range batch.Events {
				out.Events++
				m, ok := evt.(map[string]interface{})
				if !ok {
					out.Skipped++
					continue
				}
				values, err := parseEvent(m)
				if err != nil {
					out.Skipped++
					continue
				}
				out.Values = append(out.Values, values...)
			}
		default:
			// Channel is empty, return what we have
			return out, nil
		}
	}
}

// IsClosed reports whether the server has stopped and every received batch
// has been read. It never consumes from the events channel.
func (ing *TCPIngestor) IsClosed() bool {
	if ing.server == nil {
		return true
	}
	return ing.drained.Load() && len(ing.events) == 0
}

// Close shuts down the server and listener. Later calls return the result
// of the first.
func (ing *TCPIngestor) Close() error {
	ing.closeOnce.Do(func() {
		if ing.server != nil {
			ing.server.Close()
		}
		// The server may already have closed the listener.
		if err := ing.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			ing.closeErr = err
		}
	})
	return ing.closeErr
}
