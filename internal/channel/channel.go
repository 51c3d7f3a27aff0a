// Package channel maintains the kiosk's single long-lived WebSocket
// connection to the backend and fans menu events out to subscribers.
// The connection is an explicitly constructed service, not a package
// global; subscribers get a disposer and never own the connection.
package channel

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"menukiosk/pkg/models"
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusConnecting   Status = "connecting"
	StatusDisconnected Status = "disconnected"
)

const (
	EventMenuToday        = "menus:today"
	EventMenuTodayUpdated = "menus:today_updated"
	EventStatusChanged    = "status"
)

// Event is either a menu push (Menu set) or a connection status change
// (Status set), distinguished by Type.
type Event struct {
	Type   string
	Menu   *models.Menu
	Status Status
}

// frame is the wire shape of one inbound message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Channel struct {
	URL    string
	Logger *log.Logger

	// ReconnectDelay separates dial attempts; 1s unless overridden.
	ReconnectDelay time.Duration

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
	status Status
	conn   *websocket.Conn

	done     chan struct{}
	closeOne sync.Once
}

func New(url string, logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		URL:            url,
		Logger:         logger,
		ReconnectDelay: time.Second,
		subs:           make(map[int]func(Event)),
		status:         StatusDisconnected,
		done:           make(chan struct{}),
	}
}

// Start launches the connect/read loop. It returns immediately; the
// channel keeps reconnecting until Close is called.
func (c *Channel) Start() {
	go c.run()
}

func (c *Channel) run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.setStatus(StatusConnecting)
		conn, _, err := websocket.DefaultDialer.Dial(c.URL, nil)
		if err != nil {
			c.Logger.Printf("[channel] dial %s: %v", c.URL, err)
			c.setStatus(StatusDisconnected)
			select {
			case <-time.After(c.ReconnectDelay):
			case <-c.done:
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.setStatus(StatusConnected)
		c.Logger.Printf("[channel] connected to %s", c.URL)

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.setStatus(StatusDisconnected)

		select {
		case <-time.After(c.ReconnectDelay):
		case <-c.done:
			return
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.Logger.Printf("[channel] read: %v", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			c.Logger.Printf("[channel] bad frame: %v", err)
			continue
		}
		if f.Event != EventMenuToday && f.Event != EventMenuTodayUpdated {
			continue
		}

		var m models.Menu
		if err := json.Unmarshal(f.Data, &m); err != nil {
			c.Logger.Printf("[channel] bad menu payload: %v", err)
			continue
		}
		c.dispatch(Event{Type: f.Event, Menu: &m})
	}
}

// Subscribe registers a callback for every event and returns a disposer
// that removes it. Callbacks run on the channel's read goroutine and
// must not block.
func (c *Channel) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close tears the connection down and clears all listeners. The kiosk
// never calls this during normal operation; one connection lives for
// the whole process.
func (c *Channel) Close() {
	c.closeOne.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.subs = make(map[int]func(Event))
		c.status = StatusDisconnected
		c.mu.Unlock()
	})
}

func (c *Channel) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()
	if changed {
		c.dispatch(Event{Type: EventStatusChanged, Status: s})
	}
}

func (c *Channel) dispatch(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
