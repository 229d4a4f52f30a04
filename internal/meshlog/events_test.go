package meshlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEventsPromotesOnlyBBSLinkBroadcasts(t *testing.T) {
	lines := []string{
		"2025-03-14 09:00:00,000 | INFO | System: Device:1 Channel:2 SendingChannel: weather update",
		"2025-03-14 09:00:01,000 | INFO | System: Device:1 Channel:2 SendingChannel: BBSLINK noreply $msg",
		"2025-03-14 09:00:02,000 | INFO | System: Device:1 Channel:2 ReceivedChannel: bbslink ack From: Ridge1",
		"2025-03-14 09:00:03,000 | INFO | System: Device:1 Channel:2 ReceivedChannel: general chatter From: Ridge1",
	}
	events := ExtractEvents(lines)
	require.Len(t, events, 2)
	assert.Equal(t, EventBroadcastSent, events[0].Type)
	assert.Equal(t, "BBSLINK noreply $msg", events[0].Message)
	assert.Equal(t, EventBroadcastReceived, events[1].Type)
	assert.Equal(t, "Ridge1", events[1].NodeName)
}

func TestExtractEventsDmsAreUnconditional(t *testing.T) {
	lines := []string{
		"2025-03-14 10:00:00,000 | INFO | System: Device:2 Sending DM: plain text To: BaseCamp",
		"2025-03-14 10:00:01,000 | INFO | System: Device:1 Channel: 0 Received DM: reply From: BaseCamp",
	}
	events := ExtractEvents(lines)
	require.Len(t, events, 2)
	assert.Equal(t, EventDmSent, events[0].Type)
	assert.Equal(t, EventDmReceived, events[1].Type)
	assert.Equal(t, "BaseCamp", events[0].NodeName)
}

func TestExtractEventsSyncSequence(t *testing.T) {
	lines := []string{
		"2025-03-14 11:00:00,000 | INFO | System: wait to bbslink with peer 42",
		"2025-03-14 11:00:01,000 | INFO | System: Sending bbslink message 1 of 2 to peer 42",
		"2025-03-14 11:00:02,000 | INFO | System: Sending bbslink message 2 of 2 to peer 42",
		"2025-03-14 11:00:03,000 | INFO | System: bbslink sync complete with peer 42",
	}
	events := ExtractEvents(lines)
	require.Len(t, events, 4)
	assert.Equal(t, EventWaitSync, events[0].Type)
	assert.Equal(t, EventSendingSync, events[1].Type)
	assert.Equal(t, 2, events[2].MessageNum)
	assert.Equal(t, 2, events[2].TotalMessages)
	assert.Equal(t, EventSyncComplete, events[3].Type)
	assert.Equal(t, int64(42), events[3].NodeID)
}

func TestExtractEventsKeepsFileOrderAndStringStamps(t *testing.T) {
	lines := []string{
		"2025-03-14 11:00:00,000 | INFO | System: wait to bbslink with peer 7",
		"2025-03-14 11:05:00,000 | INFO | System: bbslink sync complete with peer 7",
	}
	events := ExtractEvents(lines)
	require.Len(t, events, 2)
	assert.Equal(t, "2025-03-14 11:00:00", events[0].Timestamp)
	assert.Equal(t, "2025-03-14 11:05:00", events[1].Timestamp)
	assert.Less(t, events[0].Timestamp, events[1].Timestamp)
}

func TestRecentEventsReversesAndCaps(t *testing.T) {
	events := []Event{
		{Timestamp: "2025-03-14 11:00:00", Type: EventWaitSync},
		{Timestamp: "2025-03-14 11:01:00", Type: EventSendingSync},
		{Timestamp: "2025-03-14 11:02:00", Type: EventSyncComplete},
	}
	recent := RecentEvents(events, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, EventSyncComplete, recent[0].Type)
	assert.Equal(t, EventSendingSync, recent[1].Type)
	// Input order untouched.
	assert.Equal(t, EventWaitSync, events[0].Type)
}

func TestExtractEventsIgnoresNoise(t *testing.T) {
	lines := []string{
		"2025-03-14 11:00:00,000 | INFO | Telemetry: battery at 90%",
		"garbage line",
		"",
	}
	assert.Empty(t, ExtractEvents(lines))
}
