package linkAuth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/linkAuth/deeplink"
	"github.com/MrEthical07/linkAuth/envelope"
	"github.com/MrEthical07/linkAuth/forumapi"
	"github.com/MrEthical07/linkAuth/securestore"
)

// Engine defines a public type used by linkAuth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	store       securestore.Store
	credentials *credentialStore
	intents     *PendingIntentStore
	nonces      *nonceStore
	crypto      *envelope.Engine
	api         *forumapi.Client
	browser     Browser
	resolver    *deeplink.Resolver
	audit       *auditDispatcher
	metrics     *Metrics
	now         func() time.Time

	state atomic.Int32

	// signInBusy serializes whole attempts; redirectBusy guards the
	// callback path against double delivery. Both are set synchronously
	// before the first suspension point.
	signInBusy   atomic.Bool
	redirectBusy atomic.Bool
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// State reports the current position in the sign-in state machine.
// Diagnostic only; transitions race with the flow that drives them.
func (e *Engine) State() SignInState {
	if e == nil {
		return StateIdle
	}
	return SignInState(e.state.Load())
}

// Resolver describes the resolver operation and its observable behavior.
//
// Resolver may return an error when input validation, dependency calls, or security checks fail.
// Resolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Resolver() *deeplink.Resolver {
	if e == nil {
		return nil
	}
	return e.resolver
}

// PendingIntents describes the pendingintents operation and its observable behavior.
//
// PendingIntents may return an error when input validation, dependency calls, or security checks fail.
// PendingIntents does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PendingIntents() *PendingIntentStore {
	if e == nil {
		return nil
	}
	return e.intents
}

func (e *Engine) setState(s SignInState) {
	e.state.Store(int32(s))
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(ctx context.Context, event AuthEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(ctx, event)
}
