package cli

const defaultHistoryMaxEntries = 50

// commandHistory keeps the most recent REPL lines.
type commandHistory struct {
	entries    []string
	maxEntries int
}

func newCommandHistory(maxEntries int) *commandHistory {
	if maxEntries <= 0 {
		maxEntries = defaultHistoryMaxEntries
	}
	return &commandHistory{maxEntries: maxEntries}
}

func (h *commandHistory) Append(line string) {
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.maxEntries; over > 0 {
		h.entries = append([]string(nil), h.entries[over:]...)
	}
}

func (h *commandHistory) Entries() []string {
	if len(h.entries) == 0 {
		return nil
	}
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *commandHistory) Clear() {
	h.entries = nil
}
