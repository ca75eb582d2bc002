package console

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shopdeck/internal/dispatch"
	"github.com/five82/shopdeck/internal/poll"
	"github.com/five82/shopdeck/internal/state"
	"github.com/five82/shopdeck/internal/storefront"
)

// View identifies one screen of the console.
type View int

const (
	Dashboard View = iota
	Orders
	Products
	Ads
	CustomerService
)

var viewKeys = [...]string{"dashboard", "orders", "products", "ads", "messages"}
var viewTitles = [...]string{"Dashboard", "Orders", "Products", "Ads", "Customer Service"}

// Views lists every view in display order.
func Views() []View {
	return []View{Dashboard, Orders, Products, Ads, CustomerService}
}

// String returns the stable key used in prefs and logs.
func (v View) String() string {
	if v < 0 || int(v) >= len(viewKeys) {
		return "unknown"
	}
	return viewKeys[v]
}

// Title returns the display label.
func (v View) Title() string {
	if v < 0 || int(v) >= len(viewTitles) {
		return "Unknown"
	}
	return viewTitles[v]
}

// Next returns the view after v, wrapping around.
func (v View) Next() View {
	return View((int(v) + 1) % len(viewKeys))
}

// ParseView maps a key or title back to a View.
func ParseView(s string) (View, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range viewKeys {
		if s == viewKeys[i] || s == strings.ToLower(viewTitles[i]) {
			return View(i), true
		}
	}
	return Dashboard, false
}

// API is the slice of the storefront client the console needs.
type API interface {
	dispatch.Mutator
	FetchDashboard(ctx context.Context) (storefront.DashboardMetrics, error)
	FetchPendingOrders(ctx context.Context) ([]storefront.Order, error)
	DiscoverProducts(ctx context.Context, limit int) ([]storefront.Product, error)
	FetchCampaigns(ctx context.Context) ([]storefront.Campaign, error)
	FetchMessages(ctx context.Context, answered bool) ([]storefront.CustomerMessage, error)
}

// Options configures a Console. Zero intervals mean fetch once per visit.
type Options struct {
	DashboardInterval time.Duration
	OrdersInterval    time.Duration
	MessagesInterval  time.Duration
	ProductsLimit     int
	Logger            *zap.Logger
	Ticker            poll.TickerFunc
}

// DefaultOptions returns the storefront's stock refresh cadence.
func DefaultOptions() Options {
	return Options{
		DashboardInterval: 60 * time.Second,
		OrdersInterval:    30 * time.Second,
		MessagesInterval:  30 * time.Second,
		ProductsLimit:     20,
	}
}

// Status is the view-independent part of a ViewState.
type Status struct {
	Loading     bool
	HasData     bool
	LastError   error
	LastUpdated time.Time
	Offline     bool
}

func statusOf[T any](st state.ViewState[T]) Status {
	return Status{
		Loading:     st.Loading,
		HasData:     st.HasSnapshot,
		LastError:   st.LastError,
		LastUpdated: st.LastUpdated,
		Offline:     st.IsOffline(),
	}
}

// Console owns one store per view and keeps exactly the shown view polled.
type Console struct {
	ctx        context.Context
	logger     *zap.Logger
	sched      *poll.Scheduler
	dispatcher *dispatch.Dispatcher
	intervals  map[View]time.Duration

	dashboard *state.Store[storefront.DashboardMetrics]
	orders    *state.Store[[]storefront.Order]
	products  *state.Store[[]storefront.Product]
	ads       *state.Store[[]storefront.Campaign]
	messages  *state.Store[[]storefront.CustomerMessage]

	mu      sync.Mutex
	current View
	shown   bool
	handle  *poll.Handle
	filter  string
}

// New wires stores, scheduler and dispatcher over api. Leases live no longer
// than ctx.
func New(ctx context.Context, api API, opts Options) *Console {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.ProductsLimit
	if limit <= 0 {
		limit = DefaultOptions().ProductsLimit
	}

	schedOpts := []poll.Option{poll.WithLogger(logger.Named("poll"))}
	if opts.Ticker != nil {
		schedOpts = append(schedOpts, poll.WithTicker(opts.Ticker))
	}

	c := &Console{
		ctx:    ctx,
		logger: logger,
		sched:  poll.NewScheduler(schedOpts...),
		intervals: map[View]time.Duration{
			Dashboard:       opts.DashboardInterval,
			Orders:          opts.OrdersInterval,
			Products:        0,
			Ads:             0,
			CustomerService: opts.MessagesInterval,
		},
		dashboard: state.NewStore(Dashboard.String(), api.FetchDashboard),
		orders:    state.NewStore(Orders.String(), api.FetchPendingOrders),
		products: state.NewStore(Products.String(), func(ctx context.Context) ([]storefront.Product, error) {
			return api.DiscoverProducts(ctx, limit)
		}),
		ads: state.NewStore(Ads.String(), api.FetchCampaigns),
		messages: state.NewStore(CustomerService.String(), func(ctx context.Context) ([]storefront.CustomerMessage, error) {
			return api.FetchMessages(ctx, false)
		}),
	}

	c.dispatcher = dispatch.New(api,
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithRefresher(dispatch.TargetOrders, c.leaseRefresher(Orders)),
		dispatch.WithRefresher(dispatch.TargetMessages, c.leaseRefresher(CustomerService)),
		dispatch.WithRefresher(dispatch.TargetAds, c.leaseRefresher(Ads)),
	)
	return c
}

// leaseRefresher refreshes view only while it is shown. A hidden view is
// fetched afresh on its next activation.
func (c *Console) leaseRefresher(view View) poll.Refresher {
	return poll.RefreshFunc(func(ctx context.Context) error {
		_, err := c.sched.RefreshNow(ctx, view.String())
		return err
	})
}

func (c *Console) target(view View) poll.Refresher {
	switch view {
	case Dashboard:
		return c.dashboard
	case Orders:
		return c.orders
	case Products:
		return c.products
	case Ads:
		return c.ads
	default:
		return c.messages
	}
}

// Show makes view the visible one: the previous view's lease is retired and
// view is fetched immediately, then polled on its interval.
func (c *Console) Show(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		c.handle.Deactivate()
	}
	c.current = view
	c.shown = true
	c.handle = c.sched.Activate(c.ctx, view.String(), c.intervals[view], c.target(view))
	c.logger.Debug("view shown", zap.String("view", view.String()))
}

// Current returns the visible view.
func (c *Console) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Active reports whether view currently holds a poll lease.
func (c *Console) Active(view View) bool {
	return c.sched.Active(view.String())
}

// Refresh forces an immediate refresh of the visible view.
func (c *Console) Refresh(ctx context.Context) error {
	c.mu.Lock()
	view, shown := c.current, c.shown
	c.mu.Unlock()
	if !shown {
		return nil
	}
	_, err := c.sched.RefreshNow(ctx, view.String())
	return err
}

// Dispatch runs a user action and, on success, refreshes the affected view
// if it is visible.
func (c *Console) Dispatch(ctx context.Context, req dispatch.Request) (storefront.Ack, error) {
	return c.dispatcher.Dispatch(ctx, req)
}

// InFlight reports whether an action for (kind, id) is outstanding.
func (c *Console) InFlight(kind dispatch.Kind, id string) bool {
	return c.dispatcher.InFlight(kind, id)
}

// SetProductFilter narrows the products view by title. It never fetches.
func (c *Console) SetProductFilter(text string) {
	c.mu.Lock()
	c.filter = text
	c.mu.Unlock()
	c.products.SetFilter(state.TitleFilter(text, func(p storefront.Product) string { return p.Title }))
}

// ProductFilter returns the current product search text.
func (c *Console) ProductFilter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// DashboardState returns the dashboard metrics state.
func (c *Console) DashboardState() state.ViewState[storefront.DashboardMetrics] {
	return c.dashboard.State()
}

// OrdersState returns the pending orders state.
func (c *Console) OrdersState() state.ViewState[[]storefront.Order] {
	return c.orders.State()
}

// ProductsState returns the discovered products state; Visible is filtered.
func (c *Console) ProductsState() state.ViewState[[]storefront.Product] {
	return c.products.State()
}

// AdsState returns the campaigns state.
func (c *Console) AdsState() state.ViewState[[]storefront.Campaign] {
	return c.ads.State()
}

// MessagesState returns the unanswered customer messages state.
func (c *Console) MessagesState() state.ViewState[[]storefront.CustomerMessage] {
	return c.messages.State()
}

// Status summarizes view's state for headers and indicators.
func (c *Console) Status(view View) Status {
	switch view {
	case Dashboard:
		return statusOf(c.dashboard.State())
	case Orders:
		return statusOf(c.orders.State())
	case Products:
		return statusOf(c.products.State())
	case Ads:
		return statusOf(c.ads.State())
	default:
		return statusOf(c.messages.State())
	}
}

// Close retires every lease. The console must not be used afterwards.
func (c *Console) Close() {
	c.mu.Lock()
	c.handle = nil
	c.mu.Unlock()
	c.sched.Close()
}
