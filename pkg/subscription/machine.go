package subscription

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/pushgate/pkg/logger"
	"github.com/dmitrymomot/pushgate/pkg/statemachine"
)

type event string

const (
	eventRequest event = "request"
	eventSucceed event = "succeed"
	eventFail    event = "fail"
)

// Observer receives every effective state change.
type Observer func(State)

type requestData struct {
	attempt Attempt
}

type resultData struct {
	attempt Attempt
	message string
}

// Machine is the subscription lifecycle:
//
//	idle    --request--> busy
//	busy    --request--> busy (supersedes the in-flight attempt)
//	busy    --succeed--> success
//	busy    --fail-->    error
//	success --request--> busy
//	error   --request--> busy
//
// A machine built WithUnsupported starts in unsupported and has no transitions
// at all. Events that are not in the table are ignored.
type Machine struct {
	fsm    *statemachine.Machine[Status, event]
	logger *slog.Logger

	latest atomic.Uint64
	state  atomic.Pointer[State]

	mu        sync.RWMutex
	observers []Observer
}

// Option configures a Machine.
type Option func(*options)

type options struct {
	unsupported bool
	logger      *slog.Logger
}

// WithUnsupported builds the machine directly into the absorbing unsupported state.
func WithUnsupported() Option {
	return func(o *options) { o.unsupported = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewMachine returns a machine in idle, or in unsupported when WithUnsupported is given.
func NewMachine(opts ...Option) *Machine {
	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Machine{logger: o.logger.With(logger.Component("subscription"))}

	if o.unsupported {
		m.fsm = statemachine.MustNew[Status, event](StatusUnsupported)
		m.state.Store(&State{Status: StatusUnsupported})
		return m
	}

	begin := statemachine.WithAction(statemachine.Action[Status, event](m.begin))
	settle := statemachine.WithAction(statemachine.Action[Status, event](m.settle))
	current := statemachine.WithGuard(statemachine.Guard[Status, event](m.isLatest))

	m.fsm = statemachine.MustNew(StatusIdle,
		statemachine.WithTransition(StatusIdle, StatusBusy, eventRequest, begin),
		statemachine.WithTransition(StatusBusy, StatusBusy, eventRequest, begin),
		statemachine.WithTransition(StatusSuccess, StatusBusy, eventRequest, begin),
		statemachine.WithTransition(StatusError, StatusBusy, eventRequest, begin),
		statemachine.WithTransition(StatusBusy, StatusSuccess, eventSucceed, current, settle),
		statemachine.WithTransition(StatusBusy, StatusError, eventFail, current, settle),
		statemachine.WithListener[Status, event](m.notify),
	)
	m.state.Store(&State{Status: StatusIdle})
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	return *m.state.Load()
}

// Latest returns the number of the most recent attempt, or 0 if none was made.
func (m *Machine) Latest() Attempt {
	return Attempt(m.latest.Load())
}

// OnChange registers an observer. Observers run after the state changed, in
// registration order, and may call Current but not Request or Resolve.
// A busy to busy supersede is not reported since the visible state does not
// change.
func (m *Machine) OnChange(fn Observer) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Request starts a new attempt. It returns false and changes nothing when the
// machine is unsupported.
func (m *Machine) Request() (Attempt, bool) {
	data := &requestData{}
	if err := m.fsm.Fire(context.Background(), eventRequest, data); err != nil {
		m.logger.Debug("subscription request ignored",
			logger.Status(m.Current().Status.String()),
			logger.Error(m.explain(err)),
		)
		return 0, false
	}
	return data.attempt, true
}

// Resolve feeds the outcome of attempt back into the machine. A nil err moves
// to success, anything else to error with err's text, or DefaultErrorMessage
// when the text is blank. Results for superseded attempts, or arriving when
// nothing is in flight, are discarded and Resolve returns false.
func (m *Machine) Resolve(attempt Attempt, err error) bool {
	evt := eventSucceed
	data := &resultData{attempt: attempt}
	if err != nil {
		evt = eventFail
		data.message = messageOf(err)
	}

	if ferr := m.fsm.Fire(context.Background(), evt, data); ferr != nil {
		m.logger.Debug("subscription result discarded",
			logger.Attempt(uint64(attempt)),
			logger.Status(m.Current().Status.String()),
			logger.Error(m.explain(ferr)),
		)
		return false
	}
	return true
}

func (m *Machine) begin(_ context.Context, _, to Status, _ event, data any) error {
	n := Attempt(m.latest.Add(1))
	if req, ok := data.(*requestData); ok {
		req.attempt = n
	}
	m.state.Store(&State{Status: to})
	return nil
}

func (m *Machine) settle(_ context.Context, _, to Status, _ event, data any) error {
	st := State{Status: to}
	if res, ok := data.(*resultData); ok && to == StatusError {
		st.Message = res.message
	}
	m.state.Store(&st)
	return nil
}

func (m *Machine) isLatest(_ context.Context, _ Status, _ event, data any) bool {
	res, ok := data.(*resultData)
	return ok && uint64(res.attempt) == m.latest.Load()
}

func (m *Machine) notify(from, to Status, _ event) {
	if from == to {
		m.logger.Debug("subscription attempt superseded", logger.Attempt(m.latest.Load()))
		return
	}

	st := m.Current()
	m.logger.Debug("subscription state changed",
		logger.Transition(from.String(), to.String()),
		logger.Attempt(m.latest.Load()),
	)

	m.mu.RLock()
	observers := m.observers
	m.mu.RUnlock()

	for _, fn := range observers {
		fn(st)
	}
}

// explain maps state machine errors to this package's sentinels for logging.
func (m *Machine) explain(err error) error {
	switch {
	case statemachine.IsTransitionRejectedError(err):
		return ErrStaleAttempt
	case statemachine.IsNoTransitionAvailableError(err) && m.Current().IsUnsupported():
		return ErrUnsupported
	case statemachine.IsNoTransitionAvailableError(err):
		return ErrNotBusy
	default:
		return errors.Join(ErrNotBusy, err)
	}
}

// UserMessager is implemented by collaborator errors that carry a message
// meant for the end user. An empty UserMessage selects DefaultErrorMessage.
type UserMessager interface {
	UserMessage() string
}

func messageOf(err error) string {
	msg := err.Error()
	var um UserMessager
	if errors.As(err, &um) {
		msg = um.UserMessage()
	}
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
