package subscription

// Status is the lifecycle tag of a subscription attempt.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusBusy        Status = "busy"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusUnsupported Status = "unsupported"
)

func (s Status) String() string { return string(s) }

// State is the tagged variant exposed to presenters. Message is set only when
// Status is StatusError.
type State struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s State) IsIdle() bool        { return s.Status == StatusIdle }
func (s State) IsBusy() bool        { return s.Status == StatusBusy }
func (s State) IsSuccess() bool     { return s.Status == StatusSuccess }
func (s State) IsError() bool       { return s.Status == StatusError }
func (s State) IsUnsupported() bool { return s.Status == StatusUnsupported }

// Settled reports whether no attempt is in flight.
func (s State) Settled() bool { return s.Status != StatusBusy }

// Attempt identifies one subscription attempt. Numbers increase monotonically
// per machine, starting at 1.
type Attempt uint64

// DefaultErrorMessage is used when a failed attempt carries no text.
const DefaultErrorMessage = "Something went wrong while enabling notifications. Please try again."
