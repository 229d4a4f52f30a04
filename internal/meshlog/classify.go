// Package meshlog reconstructs structured events from the meshbot log file.
//
// The log is an append-only stream of free-text lines. Classification,
// send-outcome pairing and BBS event extraction are three separate layers:
// Classify turns one line into at most one typed match, and the
// reconstructor/extractor consume matches without ever touching the raw
// line grammar themselves.
package meshlog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp prefix used by the bot's log formatter
// (milliseconds are matched separately and discarded).
const TimeLayout = "2006-01-02 15:04:05"

// Kind identifies which line pattern matched.
type Kind int

const (
	KindUnmatched Kind = iota
	KindBroadcastSend
	KindBroadcastReceive
	KindDmSend
	KindDmReceive
	KindSyncWait
	KindSyncProgress
	KindSyncComplete
	KindGenericError
	KindLeveledLine
)

// Match is the classification of a single log line. Only the fields relevant
// to the matched Kind are populated; KindUnmatched carries nothing.
type Match struct {
	Kind          Kind
	Timestamp     time.Time
	Device        int
	Channel       int
	Message       string
	NodeName      string
	NodeID        int64
	MessageNum    int
	TotalMessages int
	Level         string
	Source        string
	ErrText       string
}

const stampPattern = `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}),\d+ \|`

var (
	ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	broadcastSendRe = regexp.MustCompile(`(?i)` + stampPattern + `.*Device:(\d+) Channel:(\d+) SendingChannel: (.+)$`)
	broadcastRecvRe = regexp.MustCompile(`(?i)` + stampPattern + `.*Device:(\d+) Channel:(\d+) ReceivedChannel: (.+) From: (.+)$`)
	dmSendRe        = regexp.MustCompile(`(?i)` + stampPattern + `.*Device:(\d+) Sending DM: (.+) To: (.+)$`)
	dmRecvRe        = regexp.MustCompile(`(?i)` + stampPattern + `.*Device:(\d+) Channel: (\d+) Received DM: (.+) From: (.+)$`)
	syncWaitRe      = regexp.MustCompile(stampPattern + `.*System: wait to bbslink with peer (\d+)$`)
	syncProgressRe  = regexp.MustCompile(stampPattern + `.*System: Sending bbslink message (\d+) of (\d+) to peer (\d+)$`)
	syncCompleteRe  = regexp.MustCompile(stampPattern + `.*System: bbslink sync complete with peer (\d+)$`)
	leveledRe       = regexp.MustCompile(stampPattern + `\s*(DEBUG|INFO|WARNING|ERROR)\s*\|\s*(.+)$`)

	// Error cues may appear anywhere in the line, not just at a fixed column.
	errorRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Exception during send_message:\s*(.+)`),
		regexp.MustCompile(`(?i)Error Opening interface\d+ on:\s*(.+)`),
		regexp.MustCompile(`(?i)Error.*send.*?:\s*(.+)`),
		regexp.MustCompile(`(?i)failed to send.*?:\s*(.+)`),
		regexp.MustCompile(`(?i)\|\s*ERROR\s*\|\s*(.+)`),
	}
)

// Classify applies the pattern set to one raw log line and returns at most
// one typed match. Matching is ordered and exclusive: patterns are tried in
// a fixed priority order and the first hit wins. ANSI escape sequences are
// stripped before matching, captured fields are trimmed, and a line whose
// embedded timestamp fails to parse is treated as unmatched.
func Classify(line string) Match {
	line = ansiRe.ReplaceAllString(strings.TrimSpace(line), "")

	if m := broadcastSendRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{
			Kind:      KindBroadcastSend,
			Timestamp: ts,
			Device:    atoi(m[2]),
			Channel:   atoi(m[3]),
			Message:   strings.TrimSpace(m[4]),
		}
	}
	if m := broadcastRecvRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{
			Kind:      KindBroadcastReceive,
			Timestamp: ts,
			Device:    atoi(m[2]),
			Channel:   atoi(m[3]),
			Message:   strings.TrimSpace(m[4]),
			NodeName:  strings.TrimSpace(m[5]),
		}
	}
	if m := dmSendRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{
			Kind:      KindDmSend,
			Timestamp: ts,
			Device:    atoi(m[2]),
			Message:   strings.TrimSpace(m[3]),
			NodeName:  strings.TrimSpace(m[4]),
		}
	}
	if m := dmRecvRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{
			Kind:      KindDmReceive,
			Timestamp: ts,
			Device:    atoi(m[2]),
			Channel:   atoi(m[3]),
			Message:   strings.TrimSpace(m[4]),
			NodeName:  strings.TrimSpace(m[5]),
		}
	}
	if m := syncWaitRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{Kind: KindSyncWait, Timestamp: ts, NodeID: atoi64(m[2])}
	}
	if m := syncProgressRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{
			Kind:          KindSyncProgress,
			Timestamp:     ts,
			MessageNum:    atoi(m[2]),
			TotalMessages: atoi(m[3]),
			NodeID:        atoi64(m[4]),
		}
	}
	if m := syncCompleteRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		return Match{Kind: KindSyncComplete, Timestamp: ts, NodeID: atoi64(m[2])}
	}
	for _, re := range errorRes {
		if m := re.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[1])
			if text == "" {
				text = line
			}
			return Match{Kind: KindGenericError, ErrText: text}
		}
	}
	if m := leveledRe.FindStringSubmatch(line); m != nil {
		ts, ok := parseStamp(m[1])
		if !ok {
			return Match{}
		}
		source, message := splitSource(strings.TrimSpace(m[3]))
		return Match{
			Kind:      KindLeveledLine,
			Timestamp: ts,
			Level:     m[2],
			Source:    source,
			Message:   message,
		}
	}
	return Match{}
}

// splitSource splits a leveled-line body on the first ": " into source and
// message, defaulting the source to "System".
func splitSource(body string) (source, message string) {
	if before, after, found := strings.Cut(body, ": "); found {
		return before, after
	}
	return "System", body
}

// Truncate limits s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Timestamps carry no zone; the bot logs wall-clock local time, so they are
// parsed in the local location to keep liveness math against time.Now sane.
func parseStamp(s string) (time.Time, bool) {
	ts, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
