package meshlog

import (
	"strings"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/logtail"
)

// Event types mirror the bbslink protocol phases observed in the log.
const (
	EventBroadcastSent     = "broadcast_sent"
	EventBroadcastReceived = "broadcast_received"
	EventDmSent            = "dm_sent"
	EventDmReceived        = "dm_received"
	EventWaitSync          = "wait_sync"
	EventSendingSync       = "sending_sync"
	EventSyncComplete      = "sync_complete"
)

// eventWindow is the tail window scanned for BBS events. Sync handshakes are
// chatty, so this is deliberately larger than the outcome window.
const eventWindow = 5000

// Event is one self-contained peer-sync occurrence. Timestamps are kept as
// the log's own string form so they stay lexically ordered end to end.
type Event struct {
	Timestamp     string `json:"timestamp"`
	Type          string `json:"type"`
	Device        int    `json:"device,omitempty"`
	Channel       int    `json:"channel,omitempty"`
	Message       string `json:"message,omitempty"`
	NodeName      string `json:"node_name,omitempty"`
	NodeID        int64  `json:"node_id,omitempty"`
	MessageNum    int    `json:"message_num,omitempty"`
	TotalMessages int    `json:"total_messages,omitempty"`
}

// ExtractEvents converts classified lines into a flat event sequence in file
// order. There is no pairing: every relevant match becomes exactly one
// event. Channel traffic is only promoted when the message is bbslink
// traffic; DM and sync matches are promoted unconditionally.
func ExtractEvents(lines []string) []Event {
	var events []Event
	for _, line := range lines {
		m := Classify(line)
		stamp := m.Timestamp.Format(TimeLayout)
		switch m.Kind {
		case KindBroadcastSend:
			if !isBBSLink(m.Message) {
				continue
			}
			events = append(events, Event{
				Timestamp: stamp,
				Type:      EventBroadcastSent,
				Device:    m.Device,
				Channel:   m.Channel,
				Message:   m.Message,
			})
		case KindBroadcastReceive:
			if !isBBSLink(m.Message) {
				continue
			}
			events = append(events, Event{
				Timestamp: stamp,
				Type:      EventBroadcastReceived,
				Device:    m.Device,
				Channel:   m.Channel,
				Message:   m.Message,
				NodeName:  m.NodeName,
			})
		case KindDmSend:
			events = append(events, Event{
				Timestamp: stamp,
				Type:      EventDmSent,
				Device:    m.Device,
				Message:   m.Message,
				NodeName:  m.NodeName,
			})
		case KindDmReceive:
			events = append(events, Event{
				Timestamp: stamp,
				Type:      EventDmReceived,
				Device:    m.Device,
				Channel:   m.Channel,
				Message:   m.Message,
				NodeName:  m.NodeName,
			})
		case KindSyncWait:
			events = append(events, Event{Timestamp: stamp, Type: EventWaitSync, NodeID: m.NodeID})
		case KindSyncProgress:
			events = append(events, Event{
				Timestamp:     stamp,
				Type:          EventSendingSync,
				MessageNum:    m.MessageNum,
				TotalMessages: m.TotalMessages,
				NodeID:        m.NodeID,
			})
		case KindSyncComplete:
			events = append(events, Event{Timestamp: stamp, Type: EventSyncComplete, NodeID: m.NodeID})
		}
	}
	return events
}

// RecentEvents returns events in reverse file order (most recent first),
// capped at limit when limit is positive.
func RecentEvents(events []Event, limit int) []Event {
	out := make([]Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ReadEvents tails the log at path and extracts BBS events in file order.
func ReadEvents(path string) ([]Event, error) {
	lines, err := logtail.Read(path, eventWindow)
	if err != nil {
		return nil, err
	}
	return ExtractEvents(lines), nil
}

func isBBSLink(message string) bool {
	return strings.Contains(strings.ToLower(message), "bbslink")
}
