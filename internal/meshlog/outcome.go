package meshlog

import (
	"sort"
	"time"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/logtail"
)

// Send statuses for a reconstructed broadcast attempt.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// MaxOutcomeMessage bounds the message text stored on an outcome.
const MaxOutcomeMessage = 200

// Outcome is one finalized channel-broadcast attempt reconstructed from the
// log: the send line itself, plus the error that followed it if any.
type Outcome struct {
	Timestamp    time.Time `json:"timestamp"`
	ScheduleName string    `json:"schedule_name"`
	Action       string    `json:"action"`
	Message      string    `json:"message"`
	Channel      int       `json:"channel"`
	Interface    int       `json:"interface"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// reconstructor is a two-state machine: idle, or awaiting the outcome of
// exactly one send. The awaiting flag is the single source of truth for
// whether pending holds a live attempt, so no two unfinalized sends can
// coexist within a pass.
type reconstructor struct {
	awaiting bool
	pending  Outcome
}

func (r *reconstructor) begin(m Match) (finalized Outcome, emitted bool) {
	if r.awaiting {
		// The previous send saw no error before the next one started:
		// implicit success.
		finalized, emitted = r.pending, true
	}
	r.awaiting = true
	r.pending = Outcome{
		Timestamp:    m.Timestamp,
		ScheduleName: "Channel Broadcast",
		Action:       "message",
		Message:      Truncate(m.Message, MaxOutcomeMessage),
		Channel:      m.Channel,
		Interface:    m.Device,
		Status:       StatusSent,
	}
	return finalized, emitted
}

func (r *reconstructor) fail(errText string) (finalized Outcome, emitted bool) {
	if !r.awaiting {
		return Outcome{}, false
	}
	r.pending.Status = StatusFailed
	r.pending.Error = errText
	finalized = r.pending
	*r = reconstructor{}
	return finalized, true
}

func (r *reconstructor) flush() (finalized Outcome, emitted bool) {
	if !r.awaiting {
		return Outcome{}, false
	}
	finalized = r.pending
	*r = reconstructor{}
	return finalized, true
}

// ReconstructOutcomes pairs each broadcast-send line with the error that
// follows it, if any, and returns one outcome per attempt in descending
// timestamp order, capped at max. An error line while a send is pending
// finalizes it as failed; the next send or the end of the stream finalizes
// it as sent. Lines the classifier cannot place leave the pending send
// untouched.
func ReconstructOutcomes(lines []string, max int) []Outcome {
	var (
		out []Outcome
		rec reconstructor
	)
	for _, line := range lines {
		m := Classify(line)
		switch m.Kind {
		case KindBroadcastSend:
			if o, ok := rec.begin(m); ok {
				out = append(out, o)
			}
		case KindGenericError:
			if o, ok := rec.fail(m.ErrText); ok {
				out = append(out, o)
			}
		}
	}
	if o, ok := rec.flush(); ok {
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// ReadOutcomes tails the log at path and reconstructs broadcast outcomes
// from it. The read window is oversized relative to max because most log
// lines are not send attempts.
func ReadOutcomes(path string, max int) ([]Outcome, error) {
	lines, err := logtail.Read(path, max*5)
	if err != nil {
		return nil, err
	}
	return ReconstructOutcomes(lines, max), nil
}
