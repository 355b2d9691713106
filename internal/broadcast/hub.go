package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/metrics"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
	commandBuffer  = 256
)

var (
	ErrTooManyChannels = errors.New("too many real-time channels")
	ErrHubStopped      = errors.New("broadcast hub stopped")
)

// ChannelID identifies one registered real-time connection.
type ChannelID = uuid.UUID

// Conn is the write side of a real-time connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Options tune the hub. Zero values fall back to the defaults below.
type Options struct {
	MaxChannels    int
	SendBuffer     int
	WriteTimeout   time.Duration
	AllowedOrigins []string
	Development    bool
}

const (
	defaultMaxChannels  = 1000
	defaultSendBuffer   = 16
	defaultWriteTimeout = 5 * time.Second
)

type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection Conn
	reply      chan registerResult
}

type registerResult struct {
	id  ChannelID
	err error
}

type unregisterCmd struct {
	baseHubCmd
	id ChannelID
}

type broadcastCmd struct {
	baseHubCmd
	origin    ChannelID
	eventType domain.EventType
	payload   []byte
}

type countCmd struct {
	baseHubCmd
	reply chan int
}

type stopCmd struct {
	baseHubCmd
}

// writeFailure is reported by a channel writer whose connection stopped accepting data.
type writeFailure struct {
	id  ChannelID
	err error
}

// Hub tracks live real-time channels and fans change notifications out to them.
type Hub struct {
	cmdCh       chan hubCmd
	failures    chan writeFailure
	clock       clockwork.Clock
	channels    map[ChannelID]*channelWriter
	metrics     *metrics.WebSocketMetrics
	upgrader    websocket.Upgrader
	opts        Options
	done        chan struct{}
	stopOnce    sync.Once
	stopTimeout time.Duration
}

// NewHub starts a hub. wsMetrics may be nil.
func NewHub(clock clockwork.Clock, wsMetrics *metrics.WebSocketMetrics, opts Options) *Hub {
	if opts.MaxChannels <= 0 {
		opts.MaxChannels = defaultMaxChannels
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	h := &Hub{
		cmdCh:       make(chan hubCmd, commandBuffer),
		failures:    make(chan writeFailure),
		clock:       clock,
		channels:    make(map[ChannelID]*channelWriter),
		metrics:     wsMetrics,
		opts:        opts,
		done:        make(chan struct{}),
		stopTimeout: stopTimeout,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     NewCheckOrigin(opts.AllowedOrigins, opts.Development),
	}
	go h.run()
	return h
}

// Register adds an accepted connection to the live set and queues its welcome frame.
// It fails with ErrTooManyChannels when the hub is full; the caller then owns conn.
func (h *Hub) Register(conn Conn) (ChannelID, error) {
	reply := make(chan registerResult, 1)
	if err := h.send(registerCmd{connection: conn, reply: reply}); err != nil {
		return uuid.Nil, err
	}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case res := <-reply:
		return res.id, res.err
	case <-h.done:
		return uuid.Nil, ErrHubStopped
	case <-timer.Chan():
		return uuid.Nil, fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a channel and closes its connection. Unknown ids are ignored.
func (h *Hub) Unregister(id ChannelID) {
	_ = h.send(unregisterCmd{id: id})
}

// ChannelCount returns the number of live channels, or -1 if the hub is
// stopped or does not answer.
func (h *Hub) ChannelCount() int {
	reply := make(chan int, 1)
	if err := h.send(countCmd{reply: reply}); err != nil {
		return -1
	}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case n := <-reply:
		return n
	case <-h.done:
		return -1
	case <-timer.Chan():
		slog.Warn("ChannelCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop closes every channel with a close frame and ends the hub goroutine.
// Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		if err := h.send(stopCmd{}); err != nil {
			return
		}

		timeout := h.clock.NewTimer(h.stopTimeout)
		defer timeout.Stop()

		select {
		case <-h.done:
			slog.Info("Broadcast hub stopped gracefully")
		case <-timeout.Chan():
			slog.Warn("Broadcast hub stop timeout exceeded", "timeout", h.stopTimeout)
		}
	})
}

func (h *Hub) send(cmd hubCmd) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.cmdCh <- cmd:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) run() {
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Broadcast hub panic recovered", "panic", r)
			h.closeAllChannels("broadcast hub panic")
		}
	}()

	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				h.handleRegister(c)
			case unregisterCmd:
				h.handleUnregister(c.id)
			case broadcastCmd:
				h.handleBroadcast(c)
			case countCmd:
				c.reply <- len(h.channels)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Broadcast hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		case f := <-h.failures:
			h.evict(f.id, "write_error", f.err)
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if len(h.channels) >= h.opts.MaxChannels {
		slog.Warn("Rejecting channel: max channels reached", "max_channels", h.opts.MaxChannels)
		if h.metrics != nil {
			h.metrics.ChannelsRejected.Inc()
		}
		c.reply <- registerResult{err: ErrTooManyChannels}
		return
	}

	id := uuid.New()
	cw := newChannelWriter(id, c.connection, h.clock, h.opts.SendBuffer, h.opts.WriteTimeout, h.failures, h.done)

	welcome, err := encode(domain.ConnectedEvent{
		Type:      domain.EventConnected,
		ChannelID: id.String(),
		Timestamp: h.clock.Now().UTC(),
	})
	if err == nil {
		cw.sendChannel <- welcome
	}

	h.channels[id] = cw
	if h.metrics != nil {
		h.metrics.ActiveChannels.Set(float64(len(h.channels)))
	}

	slog.Debug("Channel registered", "channel_id", id.String(), "total_channels", len(h.channels))
	c.reply <- registerResult{id: id}
}

func (h *Hub) handleUnregister(id ChannelID) {
	cw, ok := h.channels[id]
	if !ok {
		return
	}

	delete(h.channels, id)
	cw.stop()
	if h.metrics != nil {
		h.metrics.ActiveChannels.Set(float64(len(h.channels)))
	}

	slog.Debug("Channel unregistered", "channel_id", id.String(), "remaining_channels", len(h.channels))
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	var slow []ChannelID
	delivered := 0
	for id, cw := range h.channels {
		if id == c.origin || cw.failed.Load() {
			continue
		}
		select {
		case cw.sendChannel <- c.payload:
			delivered++
		default:
			slow = append(slow, id)
		}
	}

	for _, id := range slow {
		h.evict(id, "buffer_full", nil)
	}

	if h.metrics != nil {
		h.metrics.MessagesBroadcast.WithLabelValues(string(c.eventType)).Inc()
	}
	slog.Debug("Broadcast queued", "type", c.eventType, "delivered", delivered, "evicted", len(slow))
}

// evict prunes a channel that failed to keep up or to accept a write.
func (h *Hub) evict(id ChannelID, reason string, err error) {
	if _, ok := h.channels[id]; !ok {
		return
	}
	slog.Warn("Pruning real-time channel", "channel_id", id.String(), "reason", reason, "error", err)
	if h.metrics != nil {
		h.metrics.SendFailures.WithLabelValues(reason).Inc()
	}
	h.handleUnregister(id)
}

func (h *Hub) handleStop() {
	total := len(h.channels)
	slog.Info("Broadcast hub shutting down", "channels", total)
	h.closeAllChannels("Server shutting down")
	slog.Info("Broadcast hub shutdown complete", "disconnected_channels", total)
}

// closeAllChannels stops every writer in parallel, so shutdown takes at most
// one write timeout however many peers are stuck.
func (h *Hub) closeAllChannels(reason string) {
	var wg sync.WaitGroup
	for id, cw := range h.channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cw.stopGraceful(reason)
		}()
		delete(h.channels, id)
	}
	wg.Wait()
	if h.metrics != nil {
		h.metrics.ActiveChannels.Set(0)
	}
}
