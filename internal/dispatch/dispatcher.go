package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/shopdeck/internal/storefront"
)

// Kind names a user-initiated mutating command.
type Kind int

const (
	KindUnknown Kind = iota
	KindFulfill
	KindRespond
	KindAddProduct
	KindCreateCampaign
)

func (k Kind) String() string {
	switch k {
	case KindFulfill:
		return "fulfill"
	case KindRespond:
		return "respond"
	case KindAddProduct:
		return "addProduct"
	case KindCreateCampaign:
		return "createCampaign"
	default:
		return "unknown"
	}
}

// Target names the view store an action re-synchronizes on success.
type Target int

const (
	TargetNone Target = iota
	TargetOrders
	TargetMessages
	TargetAds
)

func (t Target) String() string {
	switch t {
	case TargetOrders:
		return "orders"
	case TargetMessages:
		return "messages"
	case TargetAds:
		return "ads"
	default:
		return "none"
	}
}

// RefreshTarget returns the store refreshed after a successful action of kind k.
func RefreshTarget(k Kind) Target {
	switch k {
	case KindFulfill:
		return TargetOrders
	case KindRespond:
		return TargetMessages
	case KindCreateCampaign:
		return TargetAds
	default:
		// addProduct imports into the catalog, which no view shows.
		return TargetNone
	}
}

// Request is one user action.
type Request struct {
	TargetID string
	Kind     Kind
	Payload  any
}

// Refresher re-synchronizes a view store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Mutator is the write half of storefront.Fetcher.
type Mutator interface {
	Mutate(ctx context.Context, path string, payload any) (storefront.Ack, error)
}

type inflightKey struct {
	kind     Kind
	targetID string
}

// Dispatcher sends actions to the API and forces the matching refresh when
// they succeed. It never writes view state itself.
type Dispatcher struct {
	client     Mutator
	refreshers map[Target]Refresher
	logger     *zap.Logger

	mu       sync.Mutex
	inflight map[inflightKey]struct{}
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRefresher registers the refresher for target.
func WithRefresher(target Target, r Refresher) Option {
	return func(d *Dispatcher) {
		if r != nil && target != TargetNone {
			d.refreshers[target] = r
		}
	}
}

// New builds a Dispatcher over client.
func New(client Mutator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:     client,
		refreshers: make(map[Target]Refresher),
		logger:     zap.NewNop(),
		inflight:   make(map[inflightKey]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes req. On success the store named by RefreshTarget is
// refreshed before Dispatch returns; a failing refresh lands in that store
// and does not change the action's outcome. On failure nothing is refreshed
// and the error is returned as a *storefront.Error.
//
// A request whose (kind, target) pair is already outstanding fails with
// KindAlreadyInFlight and never reaches the network.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (storefront.Ack, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// The guard, the route and the logs all see the same id.
	req.TargetID = strings.TrimSpace(req.TargetID)
	path, payload, err := route(req)
	if err != nil {
		return storefront.Ack{}, err
	}

	key := inflightKey{kind: req.Kind, targetID: req.TargetID}
	if !d.acquire(key) {
		d.logger.Debug("action already in flight",
			zap.Stringer("kind", req.Kind),
			zap.String("target_id", req.TargetID),
		)
		return storefront.Ack{}, &storefront.Error{
			Kind: storefront.KindAlreadyInFlight,
			Op:   "dispatch",
			Path: path,
		}
	}
	// Held through the forced refresh so a repeat waits for the updated view.
	defer d.release(key)

	ack, err := d.client.Mutate(ctx, path, payload)
	if err != nil {
		d.logger.Warn("action failed",
			zap.Stringer("kind", req.Kind),
			zap.String("target_id", req.TargetID),
			zap.Stringer("error_kind", storefront.KindOf(err)),
			zap.Error(err),
		)
		return storefront.Ack{}, err
	}
	d.logger.Info("action acknowledged",
		zap.Stringer("kind", req.Kind),
		zap.String("target_id", req.TargetID),
		zap.String("status", ack.Status),
	)

	target := RefreshTarget(req.Kind)
	if r, ok := d.refreshers[target]; ok {
		if err := r.Refresh(ctx); err != nil {
			d.logger.Warn("post-action refresh failed",
				zap.Stringer("kind", req.Kind),
				zap.Stringer("target", target),
				zap.Error(err),
			)
		}
	}
	return ack, nil
}

// InFlight reports whether an action for (kind, targetID) is outstanding.
func (d *Dispatcher) InFlight(kind Kind, targetID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inflight[inflightKey{kind: kind, targetID: strings.TrimSpace(targetID)}]
	return ok
}

func (d *Dispatcher) acquire(key inflightKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[key]; busy {
		return false
	}
	d.inflight[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key inflightKey) {
	d.mu.Lock()
	delete(d.inflight, key)
	d.mu.Unlock()
}

func route(req Request) (string, any, error) {
	id := req.TargetID
	switch req.Kind {
	case KindFulfill:
		if id == "" {
			return "", nil, rejected(storefront.PathPendingOrders, errors.New("order id required"))
		}
		return storefront.FulfillOrderPath(id), nil, nil
	case KindRespond:
		if id == "" {
			return "", nil, rejected(storefront.PathMessages, errors.New("message id required"))
		}
		return storefront.RespondPath(id), nil, nil
	case KindAddProduct:
		if req.Payload == nil {
			return "", nil, rejected(storefront.PathAddProduct, errors.New("product payload required"))
		}
		return storefront.PathAddProduct, req.Payload, nil
	case KindCreateCampaign:
		// The campaign shape belongs to the caller; it is forwarded untouched.
		if req.Payload == nil {
			return "", nil, rejected(storefront.PathCreateCampaign, errors.New("campaign payload required"))
		}
		return storefront.PathCreateCampaign, req.Payload, nil
	default:
		return "", nil, rejected("", fmt.Errorf("unknown action kind %d", int(req.Kind)))
	}
}

func rejected(path string, err error) *storefront.Error {
	return &storefront.Error{Kind: storefront.KindRejected, Op: "dispatch", Path: path, Err: err}
}
