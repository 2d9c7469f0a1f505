package mediagroups

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mymmrac/telego"
)

const (
	// DefaultProcessDelay is the quiescence window measured from the FIRST
	// fragment of an album. A fragment delayed past the window is dropped
	// from the batch; this is a known race inherited from Telegram's
	// burst-style album delivery, not something the manager re-arms for.
	DefaultProcessDelay = 1 * time.Second
	// DefaultMaxGroupSize limits the number of fragments stored per album.
	DefaultMaxGroupSize = 10
)

// ProcessFunc handles a completed album: the fragments arrive sorted by their
// original send timestamp.
type ProcessFunc func(ctx context.Context, groupID string, messages []telego.Message) error

type groupState struct {
	messages []telego.Message
	timer    *time.Timer
	mu       sync.Mutex
}

// Manager buffers album fragments until the quiescence window elapses, then
// releases them as one ordered unit. Concurrent albums do not block each other.
type Manager struct {
	groups sync.Map // map[string]*groupState
}

// NewManager creates a new media group manager.
func NewManager() *Manager {
	return &Manager{}
}

// HandleMessage adds an album fragment to its buffer. The first fragment arms
// the processing timer; the handler runs once the window closes.
func (m *Manager) HandleMessage(
	ctx context.Context,
	message telego.Message,
	handler ProcessFunc,
	delay time.Duration,
	maxSize int,
) error {
	if message.MediaGroupID == "" {
		return nil // Not an album fragment.
	}

	groupID := message.MediaGroupID

	actualVal, _ := m.groups.LoadOrStore(groupID, &groupState{
		messages: make([]telego.Message, 0, maxSize),
	})
	state := actualVal.(*groupState)

	state.mu.Lock()

	found := false
	for _, msg := range state.messages {
		if msg.MessageID == message.MessageID {
			found = true
			break
		}
	}

	wasEmpty := len(state.messages) == 0
	added := false

	if !found && len(state.messages) < maxSize {
		state.messages = append(state.messages, message)
		added = true
	} else if !found {
		log.Printf("[MediaGroups Group:%s] Size limit (%d) reached, fragment %d dropped.", groupID, maxSize, message.MessageID)
	}

	armTimer := wasEmpty && added
	if armTimer && state.timer == nil {
		state.timer = time.AfterFunc(delay, func() {
			messages := m.takeGroup(groupID)
			if len(messages) == 0 {
				return
			}
			if err := handler(context.Background(), groupID, messages); err != nil {
				log.Printf("[MediaGroups Group:%s] Error processing album: %v", groupID, err)
			}
		})
	}

	state.mu.Unlock()
	return nil
}

// takeGroup atomically removes the album state and returns its fragments
// sorted by original send timestamp (message ID breaks ties).
func (m *Manager) takeGroup(groupID string) []telego.Message {
	val, loaded := m.groups.LoadAndDelete(groupID)
	if !loaded {
		return nil
	}
	state := val.(*groupState)

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}

	messages := make([]telego.Message, len(state.messages))
	copy(messages, state.messages)
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Date != messages[j].Date {
			return messages[i].Date < messages[j].Date
		}
		return messages[i].MessageID < messages[j].MessageID
	})
	return messages
}

// Shutdown stops all pending album timers. Buffered fragments are discarded;
// album state lives in process memory only.
func (m *Manager) Shutdown() {
	stopped := 0
	m.groups.Range(func(key, value interface{}) bool {
		state := value.(*groupState)
		state.mu.Lock()
		if state.timer != nil {
			if state.timer.Stop() {
				stopped++
			}
			state.timer = nil
		}
		state.mu.Unlock()
		m.groups.Delete(key)
		return true
	})
	if stopped > 0 {
		log.Printf("[MediaGroups] Shutdown stopped %d pending timer(s).", stopped)
	}
}
