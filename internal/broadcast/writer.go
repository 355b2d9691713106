package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	pingInterval   = 30 * time.Second
	pongDeadline   = 60 * time.Second
	maxMessageSize = 4096
)

// channelWriter owns every write to one connection. Messages are queued on
// sendChannel by the hub goroutine and written here, one deadline per write.
type channelWriter struct {
	id           ChannelID
	connection   Conn
	clock        clockwork.Clock
	writeTimeout time.Duration
	sendChannel  chan []byte
	doneChannel  chan struct{}
	failures     chan<- writeFailure
	hubDone      <-chan struct{}
	failed       atomic.Bool
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func newChannelWriter(
	id ChannelID,
	connection Conn,
	clock clockwork.Clock,
	buffer int,
	writeTimeout time.Duration,
	failures chan<- writeFailure,
	hubDone <-chan struct{},
) *channelWriter {
	cw := &channelWriter{
		id:           id,
		connection:   connection,
		clock:        clock,
		writeTimeout: writeTimeout,
		sendChannel:  make(chan []byte, buffer),
		doneChannel:  make(chan struct{}),
		failures:     failures,
		hubDone:      hubDone,
	}
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *channelWriter) run() {
	ticker := cw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer cw.wg.Done()

	for {
		select {
		case msg := <-cw.sendChannel:
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				cw.fail(err)
				return
			}
		case <-ticker.Chan():
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				cw.fail(err)
				return
			}
		case <-cw.doneChannel:
			return
		}
	}
}

// fail marks the channel dead so later broadcasts skip it, then asks the hub
// to prune it.
func (cw *channelWriter) fail(err error) {
	cw.failed.Store(true)
	select {
	case cw.failures <- writeFailure{id: cw.id, err: err}:
	case <-cw.doneChannel:
	case <-cw.hubDone:
	}
}

func (cw *channelWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.doneChannel)
		_ = cw.connection.Close()
	})
	cw.wg.Wait()
}

// stopGraceful sends a close frame with reason before closing. A failed
// channel, or one whose pending write outlives the write timeout, is closed
// without the frame; closing aborts the stuck write.
func (cw *channelWriter) stopGraceful(reason string) {
	cw.stopOnce.Do(func() {
		close(cw.doneChannel)

		if cw.failed.Load() || !cw.waitWriter(cw.writeTimeout) {
			_ = cw.connection.Close()
			cw.wg.Wait()
			return
		}

		// The run goroutine is gone, so this is the only writer.
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		cw.updateWriteDeadline()
		_ = cw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = cw.connection.Close()
	})
}

// waitWriter reports whether the run goroutine exited within timeout.
func (cw *channelWriter) waitWriter(timeout time.Duration) bool {
	exited := make(chan struct{})
	go func() {
		cw.wg.Wait()
		close(exited)
	}()

	timer := cw.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-exited:
		return true
	case <-timer.Chan():
		return false
	}
}

func (cw *channelWriter) updateWriteDeadline() {
	_ = cw.connection.SetWriteDeadline(cw.clock.Now().Add(cw.writeTimeout))
}
