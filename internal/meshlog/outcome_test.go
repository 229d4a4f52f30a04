package meshlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendLine(stamp, msg string) string {
	return stamp + ",000 | INFO | System: Device:1 Channel:2 SendingChannel: " + msg
}

func TestReconstructOutcomesErrorFailsPendingSend(t *testing.T) {
	lines := []string{
		sendLine("2025-03-14 09:00:00", "hello"),
		"2025-03-14 09:00:01,000 | ERROR | System: Exception during send_message: boom",
		sendLine("2025-03-14 09:00:02", "world"),
	}
	out := ReconstructOutcomes(lines, 0)
	require.Len(t, out, 2)

	// Descending timestamp order: "world" first.
	assert.Equal(t, "world", out[0].Message)
	assert.Equal(t, StatusSent, out[0].Status)
	assert.Empty(t, out[0].Error)

	assert.Equal(t, "hello", out[1].Message)
	assert.Equal(t, StatusFailed, out[1].Status)
	assert.Equal(t, "boom", out[1].Error)
}

func TestReconstructOutcomesNextSendFinalizesAsSent(t *testing.T) {
	lines := []string{
		sendLine("2025-03-14 09:00:00", "first"),
		sendLine("2025-03-14 09:00:05", "second"),
	}
	out := ReconstructOutcomes(lines, 0)
	require.Len(t, out, 2)
	for _, o := range out {
		assert.Equal(t, StatusSent, o.Status)
	}
}

func TestReconstructOutcomesErrorScansPastUnrelatedLines(t *testing.T) {
	// Any error before the next send finalizes the pending send as failed,
	// even with unrelated traffic between them.
	lines := []string{
		sendLine("2025-03-14 09:00:00", "announcement"),
		"2025-03-14 09:00:01,000 | INFO | Telemetry: battery at 80%",
		"2025-03-14 09:00:02,000 | DEBUG | System: heartbeat",
		"2025-03-14 09:00:03,000 | ERROR | System: Exception during send_message: radio busy",
	}
	out := ReconstructOutcomes(lines, 0)
	require.Len(t, out, 1)
	assert.Equal(t, StatusFailed, out[0].Status)
	assert.Equal(t, "radio busy", out[0].Error)
}

func TestReconstructOutcomesErrorWithoutPendingSendIgnored(t *testing.T) {
	lines := []string{
		"2025-03-14 09:00:00,000 | ERROR | System: Exception during send_message: stray",
		sendLine("2025-03-14 09:00:01", "fine"),
	}
	out := ReconstructOutcomes(lines, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "fine", out[0].Message)
	assert.Equal(t, StatusSent, out[0].Status)
}

func TestReconstructOutcomesEndOfStreamImpliesSent(t *testing.T) {
	out := ReconstructOutcomes([]string{sendLine("2025-03-14 09:00:00", "tail send")}, 0)
	require.Len(t, out, 1)
	assert.Equal(t, StatusSent, out[0].Status)
}

func TestReconstructOutcomesTruncatesMessage(t *testing.T) {
	long := strings.Repeat("x", 500)
	out := ReconstructOutcomes([]string{sendLine("2025-03-14 09:00:00", long)}, 0)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Message, MaxOutcomeMessage)
}

func TestReconstructOutcomesCapsAtMax(t *testing.T) {
	lines := []string{
		sendLine("2025-03-14 09:00:00", "a"),
		sendLine("2025-03-14 09:00:01", "b"),
		sendLine("2025-03-14 09:00:02", "c"),
	}
	out := ReconstructOutcomes(lines, 2)
	require.Len(t, out, 2)
	// Most recent survive the cap.
	assert.Equal(t, "c", out[0].Message)
	assert.Equal(t, "b", out[1].Message)
}

func TestReconstructOutcomesFixedFields(t *testing.T) {
	out := ReconstructOutcomes([]string{sendLine("2025-03-14 09:00:00", "hi")}, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "Channel Broadcast", out[0].ScheduleName)
	assert.Equal(t, "message", out[0].Action)
	assert.Equal(t, 2, out[0].Channel)
	assert.Equal(t, 1, out[0].Interface)
}
