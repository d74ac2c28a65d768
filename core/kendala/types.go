package kendala

import "time"

// State is the effective lifecycle state of a kendala. It is always derived
// from timestamps; the value persisted by the store is only a display hint.
type State string

const (
	StatePending       State = "pending"
	StateOverdue       State = "overdue"
	StateCompleted     State = "completed"
	StateCompletedLate State = "completed_but_overdue"
)

func (s State) Valid() bool {
	switch s {
	case StatePending, StateOverdue, StateCompleted, StateCompletedLate:
		return true
	}
	return false
}

// Label returns the Indonesian display label used by dashboards and exports.
func (s State) Label() string {
	switch s {
	case StatePending:
		return "Proses"
	case StateCompleted:
		return "Selesai"
	case StateOverdue:
		return "Melewati Deadline"
	case StateCompletedLate:
		return "Selesai Terlambat"
	}
	return string(s)
}

// Completed reports whether the state is one of the two terminal states.
func (s State) Completed() bool {
	return s == StateCompleted || s == StateCompletedLate
}

// TerminalRef is the denormalized terminal directory entry attached to a
// kendala at creation time.
type TerminalRef struct {
	ID          int64  `json:"id"`
	TID         string `json:"tid"`
	Lokasi      string `json:"lokasi"`
	KCSupervisi string `json:"kc_supervisi"`
	Pengelola   string `json:"pengelola"`
}

// Kendala is one maintenance incident raised against a banking terminal.
// CreatedAt is immutable; CompletedAt and EvidenceURL are set together,
// exactly once, when proof of resolution is accepted.
type Kendala struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// StoredState is the state last persisted by the store. It may be stale
	// relative to wall-clock time and is never trusted for classification.
	StoredState State `json:"state,omitempty"`
	// OverdueDuration is the historical overdue string computed by the store
	// at submission time. When present it wins for display only.
	OverdueDuration string       `json:"overdue_duration,omitempty"`
	EvidenceURL     string       `json:"evidence_url,omitempty"`
	Terminal        *TerminalRef `json:"reference_data,omitempty"`
	OperatorID      int64        `json:"user_id"`
	Operator        string       `json:"username,omitempty"`
}

// TID returns the terminal id or "" when the kendala has no terminal ref.
func (k *Kendala) TID() string {
	if k == nil || k.Terminal == nil {
		return ""
	}
	return k.Terminal.TID
}
