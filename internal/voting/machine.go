// Package voting holds the kiosk's screen state machine: whether the
// serving window is open, the countdown to opening, the optimistic
// vote flow, and the post-vote cooldown that frees the screen for the
// next guest.
package voting

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

type Mode string

const (
	ModeClosedWaiting Mode = "closed_waiting"
	ModeOpenVoting    Mode = "open_voting"
	ModeOpenVoted     Mode = "open_voted"
)

// CooldownTicks is how many one-second ticks the thank-you screen stays
// up before the kiosk is ready for the next guest.
const CooldownTicks = 5

var (
	ErrNoMenu       = errors.New("no menu configured for today")
	ErrNotOpen      = errors.New("voting is not open")
	ErrAlreadyVoted = errors.New("cooldown in progress")
)

// VoteSender is the gateway dependency; submission happens off the
// caller's goroutine and never blocks the screen transition.
type VoteSender interface {
	SubmitVote(ctx context.Context, req models.VoteRequest) (*models.Menu, error)
}

// Machine is safe for concurrent use: the ticker, HTTP handlers and
// channel pushes all touch it from different goroutines.
type Machine struct {
	openHour  int
	closeHour int
	sender    VoteSender
	logger    *log.Logger

	mu          sync.Mutex
	dayToken    string
	menu        *models.Menu
	votes       models.VoteTotals
	voted       bool
	marker      Rating
	celebration bool
	sadness     bool
	cooldown    int
}

func NewMachine(openHour, closeHour int, sender VoteSender, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	return &Machine{
		openHour:  openHour,
		closeHour: closeHour,
		sender:    sender,
		logger:    logger,
	}
}

// Snapshot is the full screen state for one instant.
type Snapshot struct {
	Mode        Mode              `json:"mode"`
	Countdown   string            `json:"countdown,omitempty"` // HH:MM:SS, closed mode only
	DayToken    string            `json:"dayToken"`
	Menu        *models.Menu      `json:"menu"`
	Votes       models.VoteTotals `json:"votes"`
	Marker      Rating            `json:"marker,omitempty"`
	Celebration bool              `json:"celebration"`
	Sadness     bool              `json:"sadness"`
	Cooldown    int               `json:"cooldown"`
}

func (m *Machine) withinWindow(now time.Time) bool {
	h := now.Hour()
	return h >= m.openHour && h < m.closeHour
}

func (m *Machine) classify(now time.Time) Mode {
	if !m.withinWindow(now) {
		return ModeClosedWaiting
	}
	if m.voted {
		return ModeOpenVoted
	}
	return ModeOpenVoting
}

// Tick advances the machine by one observed second. It reports true
// when the calendar day rolled over, in which case the caller must
// reload today's menu; the stale state is already discarded by then
// (a transient empty screen is expected, not an error).
func (m *Machine) Tick(now time.Time) (dayChanged bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := dates.DayToken(now)
	if m.dayToken == "" {
		m.dayToken = token
	} else if token != m.dayToken {
		m.dayToken = token
		m.menu = nil
		m.votes = models.VoteTotals{}
		m.resetVoteLocked()
		return true
	}

	if m.voted {
		m.cooldown--
		if m.cooldown <= 0 {
			m.resetVoteLocked()
		}
	}
	return false
}

func (m *Machine) resetVoteLocked() {
	m.voted = false
	m.marker = ""
	m.celebration = false
	m.sadness = false
	m.cooldown = 0
}

// SetToday installs today's menu and counters after a (re)load.
func (m *Machine) SetToday(menu *models.Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menu = menu
	if menu != nil {
		m.votes = menu.Totals()
	} else {
		m.votes = models.VoteTotals{}
	}
}

// Submit accepts one guest interaction. The screen flips to the voted
// state immediately; the network send happens in the background and a
// failure there is logged, never surfaced to the guest.
func (m *Machine) Submit(now time.Time, rating Rating) error {
	m.mu.Lock()
	if m.menu == nil {
		m.mu.Unlock()
		return ErrNoMenu
	}
	switch m.classify(now) {
	case ModeClosedWaiting:
		m.mu.Unlock()
		return ErrNotOpen
	case ModeOpenVoted:
		m.mu.Unlock()
		return ErrAlreadyVoted
	}

	m.voted = true
	m.marker = rating
	m.cooldown = CooldownTicks
	m.celebration = rating == RatingLike
	m.sadness = rating == RatingDislike
	m.mu.Unlock()

	fecha := dates.TodayAPI(now)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		result, err := m.sender.SubmitVote(ctx, models.VoteRequest{
			Fecha: fecha,
			Like:  rating == RatingLike,
		})
		if err != nil {
			// Counts self-correct from the next channel push or reload.
			m.logger.Printf("[voting] vote submission failed: %v", err)
			return
		}
		m.ApplyAuthoritative(*result)
	}()
	return nil
}

// ApplyAuthoritative reconciles counters from a submission response or
// a channel push. Events for any other calendar day, or arriving before
// the first Tick pinned the day, are ignored; for today, whichever
// event arrives last wins.
func (m *Machine) ApplyAuthoritative(menu models.Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today, err := dates.ISOToAPI(m.dayToken)
	if err != nil || menu.Fecha != today {
		return
	}
	copied := menu
	m.menu = &copied
	m.votes = menu.Totals()
}

func (m *Machine) Snapshot(now time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Mode:        m.classify(now),
		DayToken:    dates.DayToken(now),
		Menu:        m.menu,
		Votes:       m.votes,
		Marker:      m.marker,
		Celebration: m.celebration,
		Sadness:     m.sadness,
		Cooldown:    m.cooldown,
	}
	if snap.Mode == ModeClosedWaiting {
		snap.Countdown = dates.CountdownToOpen(now, m.openHour)
	}
	return snap
}
