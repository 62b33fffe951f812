package navigator

import (
	"time"

	"github.com/edufiliova/navigator/model"
)

// HistoryOp is the browser history operation a commit asks the client to
// perform.
type HistoryOp string

const (
	HistoryPush    HistoryOp = "push"
	HistoryReplace HistoryOp = "replace"
	HistoryNone    HistoryOp = "none"
)

// HistoryEntry records one commit.
type HistoryEntry struct {
	Seq   uint64                `json:"seq"`
	State model.PageState       `json:"state"`
	Path  string                `json:"path"`
	Op    HistoryOp             `json:"op"`
	Style model.TransitionStyle `json:"style"`
	At    time.Time             `json:"at"`
}

// maxJournal bounds the number of entries a journal keeps.
const maxJournal = 50

// journal is a bounded log of commits, oldest first.
type journal struct {
	entries []HistoryEntry
	seq     uint64
}

func (j *journal) append(e HistoryEntry) HistoryEntry {
	j.seq++
	e.Seq = j.seq
	if len(j.entries) == maxJournal {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:maxJournal-1]
	}
	j.entries = append(j.entries, e)
	return e
}

func (j *journal) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *journal) reset() {
	j.entries = nil
}
