package onboarding

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/async"
	"github.com/dmitrymomot/pushgate/pkg/broadcast"
	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/logger"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
)

// Orchestrator drives one onboarding session: it owns the subscription
// machine, calls the collaborators and republishes a fresh directive after
// every state change.
type Orchestrator struct {
	info       device.Info
	identity   IdentityResolver
	subscriber Subscriber

	selector    *presenter.Selector
	policy      SupportPolicy
	recorder    Recorder
	logger      *slog.Logger
	bufferSize  int
	callTimeout time.Duration

	machine *subscription.Machine
	updates *broadcast.MemoryBroadcaster[presenter.Directive]

	idMu   sync.Mutex
	userID string

	mu       sync.Mutex
	inflight *async.Future[subscription.Attempt]
	closed   bool
}

// New creates a session for the device snapshot info. Whether the device is
// supported is decided here, once, by the support policy.
func New(info device.Info, identity IdentityResolver, subscriber Subscriber, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		info:        info,
		identity:    identity,
		subscriber:  subscriber,
		policy:      DefaultSupportPolicy,
		recorder:    nopRecorder{},
		logger:      logger.Nop(),
		bufferSize:  DefaultBroadcastBuffer,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.selector == nil {
		o.selector = presenter.NewSelector()
	}
	o.logger = o.logger.With(logger.Component("onboarding"), logger.Device(info.Identifier))

	idle := o.selector.Select(&info, subscription.State{Status: subscription.StatusIdle})
	machineOpts := []subscription.Option{subscription.WithLogger(o.logger)}
	if !o.policy(info, idle.Blocking()) {
		machineOpts = append(machineOpts, subscription.WithUnsupported())
		o.logger.Info("push notifications unsupported on device", logger.Status(string(info.PushAPI)))
	}

	o.machine = subscription.NewMachine(machineOpts...)
	o.updates = broadcast.NewMemoryBroadcaster[presenter.Directive](o.bufferSize)
	o.machine.OnChange(o.publish)

	return o
}

// Info returns the device snapshot the session was created with.
func (o *Orchestrator) Info() device.Info { return o.info }

// State returns the current subscription state.
func (o *Orchestrator) State() subscription.State { return o.machine.Current() }

// Directive returns what the renderer should show right now.
func (o *Orchestrator) Directive() presenter.Directive {
	return o.selectFor(o.machine.Current())
}

// Dropped returns how many directives slow Updates readers missed.
func (o *Orchestrator) Dropped() uint64 { return o.updates.Dropped() }

// Updates streams a directive after every state change until ctx is done or
// the session is closed. Slow readers only miss intermediate directives.
func (o *Orchestrator) Updates(ctx context.Context) broadcast.Subscriber[presenter.Directive] {
	return o.updates.Subscribe(ctx)
}

// RequestSubscription starts a subscription attempt and returns immediately;
// the outcome arrives through the state machine. It does nothing while the
// install instructions hold, on unsupported devices, or after Close. A request
// during a busy attempt supersedes it.
func (o *Orchestrator) RequestSubscription(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	if d := o.Directive(); d.Blocking() {
		o.logger.DebugContext(ctx, "subscription request ignored", logger.Directive(d.Kind.String()))
		return
	}

	attempt, ok := o.machine.Request()
	if !ok {
		return
	}

	o.logger.InfoContext(ctx, "subscription attempt started", logger.Attempt(uint64(attempt)))
	// The attempt outlives the request that started it.
	o.inflight = async.Async(context.WithoutCancel(ctx), attempt, o.run)
}

// Wait blocks until no attempt is in flight or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	for {
		o.mu.Lock()
		f := o.inflight
		o.mu.Unlock()

		if f == nil {
			return nil
		}
		// Attempt errors land in the state; only giving up is reported.
		if _, err := f.AwaitContext(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		o.mu.Lock()
		latest := o.inflight == f
		o.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Close stops publishing updates and rejects further requests. An attempt in
// flight still completes and updates the state.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	return o.updates.Close()
}

func (o *Orchestrator) run(ctx context.Context, attempt subscription.Attempt) (subscription.Attempt, error) {
	log := o.logger.With(logger.Attempt(uint64(attempt)))
	start := time.Now()

	err := o.subscribe(ctx)
	if err != nil {
		log.WarnContext(ctx, "subscription attempt failed", logger.Error(err))
	} else {
		log.InfoContext(ctx, "subscription attempt succeeded")
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	if !o.machine.Resolve(attempt, err) {
		outcome = OutcomeStale
		log.DebugContext(ctx, "stale subscription result discarded")
	}
	o.recorder.ObserveAttempt(outcome, time.Since(start))
	return attempt, err
}

func (o *Orchestrator) subscribe(ctx context.Context) error {
	userID, err := o.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}
	return o.subscriber.Subscribe(ctx, userID)
}

// resolveIdentity asks the identity collaborator once per session. Failures
// are not cached, so the next attempt asks again.
func (o *Orchestrator) resolveIdentity(ctx context.Context) (string, error) {
	o.idMu.Lock()
	defer o.idMu.Unlock()

	if o.userID != "" {
		return o.userID, nil
	}

	id, err := o.identity.UserID(ctx)
	if err != nil {
		return "", &identityError{err: err}
	}
	if id == "" {
		return "", &identityError{err: errEmptyUserID}
	}

	o.userID = id
	return id, nil
}

func (o *Orchestrator) publish(st subscription.State) {
	d := o.selectFor(st)
	o.logger.Debug("directive changed", logger.Directive(d.Kind.String()), logger.Status(st.Status.String()))
	// Broadcast only fails once the session is closed.
	_ = o.updates.Broadcast(context.Background(), broadcast.Message[presenter.Directive]{Data: d})
}

func (o *Orchestrator) selectFor(st subscription.State) presenter.Directive {
	info := o.info
	return o.selector.Select(&info, st)
}
