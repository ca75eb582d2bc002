package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/logging"
	"github.com/five82/shopdeck/internal/poll"
	"github.com/five82/shopdeck/internal/prefs"
	"github.com/five82/shopdeck/internal/storefront"
)

type idleTicker struct{ ch chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.ch }
func (t idleTicker) Stop()               {}

type fakeShop struct {
	mu       sync.Mutex
	hits     map[string]int
	bodies   map[string]string
	answered bool
}

func (s *fakeShop) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.bodies[r.URL.Path] = string(body)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/v1/dashboard/metrics":
		_ = json.NewEncoder(w).Encode(storefront.DashboardMetrics{
			TotalSales:  1234.5,
			TotalOrders: 3,
			SalesByDate: []storefront.DatedAmount{{Date: "2024-01-01", Sales: 10}, {Date: "2024-01-02", Sales: 30}},
		})
	case "/api/v1/orders/pending":
		_ = json.NewEncoder(w).Encode([]storefront.Order{
			{ID: "1", OrderNumber: "1001", CustomerName: "Ada", FulfillmentStatus: "unfulfilled", Total: 20},
			{ID: "2", OrderNumber: "1002", CustomerName: "Grace", FulfillmentStatus: "fulfilled", Total: 35},
		})
	case "/api/v1/products/discover":
		_ = json.NewEncoder(w).Encode([]storefront.Product{
			{Title: "Desk Lamp", SupplierID: "a", Price: 30, Margin: 0.6},
			{Title: "Coffee Mug", SupplierID: "b", Price: 12, Margin: 0.4},
		})
	case "/api/v1/ads/campaigns":
		_ = json.NewEncoder(w).Encode([]storefront.Campaign{{ID: "c1", Name: "Spring", Platform: "tiktok", Status: "active"}})
	case "/api/v1/customer/messages":
		_ = json.NewEncoder(w).Encode([]storefront.CustomerMessage{{ID: "m1", Subject: "Where is my order?", CustomerName: "Ada"}})
	case "/api/v1/orders/1/fulfill", "/api/v1/products/add", "/api/v1/ads/create", "/api/v1/customer/messages/m1/respond":
		_, _ = w.Write([]byte(`{"status":"success"}`))
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeShop) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits["/api/v1/"+path]
}

func (s *fakeShop) body(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies["/api/v1/"+path]
}

func newTestModel(t *testing.T) (Model, *fakeShop, *console.Console) {
	t.Helper()
	shop := &fakeShop{hits: make(map[string]int), bodies: make(map[string]string)}
	server := httptest.NewServer(http.HandlerFunc(shop.serve))
	t.Cleanup(server.Close)

	client, err := storefront.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	opts := console.DefaultOptions()
	opts.Ticker = func(time.Duration) poll.Ticker { return idleTicker{ch: make(chan time.Time)} }
	c := console.New(context.Background(), client, opts)
	t.Cleanup(c.Close)

	m := New(Options{Console: c, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), shop, c
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestViewKeysSwitchViews(t *testing.T) {
	m, shop, c := newTestModel(t)

	m, _ = press(m, "2")
	if c.Current() != console.Orders || !c.Active(console.Orders) {
		t.Fatalf("current = %v, want orders with a live lease", c.Current())
	}
	waitFor(t, func() bool { return c.OrdersState().HasSnapshot })

	// Pressing the visible view again does not refetch.
	m, _ = press(m, "2")
	if shop.count("orders/pending") != 1 {
		t.Fatalf("orders fetched %d times, want 1", shop.count("orders/pending"))
	}

	m, _ = press(m, "tab")
	if c.Current() != console.Products || c.Active(console.Orders) {
		t.Fatalf("tab did not move to products and retire orders")
	}

	_, _ = press(m, "5")
	if c.Current() != console.CustomerService {
		t.Fatalf("current = %v, want customer service", c.Current())
	}
}

func TestFulfillKeyDispatchesAndReportsSuccess(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "2")
	waitFor(t, func() bool { return c.OrdersState().HasSnapshot })

	m, cmd := press(m, "f")
	if cmd == nil {
		t.Fatalf("f returned no command")
	}
	if m.notice.level != noticeInfo || !strings.Contains(m.notice.text, "#1001") {
		t.Fatalf("pending notice = %#v", m.notice)
	}

	msg := cmd()
	res, ok := msg.(actionResultMsg)
	if !ok {
		t.Fatalf("command returned %T, want actionResultMsg", msg)
	}
	if res.err != nil {
		t.Fatalf("fulfill failed: %v", res.err)
	}
	m, _ = update(m, res)
	if m.notice.level != noticeSuccess || m.notice.text != "Order fulfillment initiated!" {
		t.Fatalf("notice = %#v", m.notice)
	}
	if shop.count("orders/1/fulfill") != 1 {
		t.Fatalf("fulfill endpoint hit %d times", shop.count("orders/1/fulfill"))
	}
	// Success refreshes the visible orders.
	if shop.count("orders/pending") != 2 {
		t.Fatalf("orders fetched %d times, want 2", shop.count("orders/pending"))
	}
}

func TestFulfillKeySkipsFulfilledOrder(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "2")
	waitFor(t, func() bool { return c.OrdersState().HasSnapshot })

	m, _ = press(m, "j")
	if m.selected[console.Orders] != 1 {
		t.Fatalf("selection = %d, want 1", m.selected[console.Orders])
	}
	m, _ = press(m, "j")
	if m.selected[console.Orders] != 1 {
		t.Fatalf("selection moved past the end")
	}

	m, cmd := press(m, "f")
	if cmd != nil {
		t.Fatalf("fulfilled order dispatched an action")
	}
	if m.notice.level != noticeError {
		t.Fatalf("notice = %#v, want error", m.notice)
	}
	if shop.count("orders/2/fulfill") != 0 {
		t.Fatalf("fulfill endpoint was called")
	}
}

func TestProductSearchFiltersAsYouType(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "3")
	waitFor(t, func() bool { return c.ProductsState().HasSnapshot })

	m, _ = press(m, "/")
	if !m.searching {
		t.Fatalf("/ did not start search")
	}
	m, _ = press(m, "l", "a", "m", "p")
	if c.ProductFilter() != "lamp" {
		t.Fatalf("filter = %q, want lamp", c.ProductFilter())
	}
	if got := c.ProductsState().Visible; len(got) != 1 || got[0].Title != "Desk Lamp" {
		t.Fatalf("Visible = %#v", got)
	}

	m, _ = press(m, "enter")
	if m.searching || c.ProductFilter() != "lamp" {
		t.Fatalf("enter should keep the filter and leave search mode")
	}

	m, _ = press(m, "esc")
	if c.ProductFilter() != "" || len(c.ProductsState().Visible) != 2 {
		t.Fatalf("esc did not clear the filter")
	}
	if m.searching {
		t.Fatalf("esc left search mode on")
	}
	if shop.count("products/discover") != 1 {
		t.Fatalf("search triggered a fetch")
	}
}

func TestAddProductSendsSelectedProduct(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "3")
	waitFor(t, func() bool { return c.ProductsState().HasSnapshot })

	m, cmd := press(m, "j", "a")
	if cmd == nil {
		t.Fatalf("a returned no command")
	}
	m, _ = update(m, cmd())
	if m.notice.text != "Product added to store!" {
		t.Fatalf("notice = %#v", m.notice)
	}
	if !strings.Contains(shop.body("products/add"), "Coffee Mug") {
		t.Fatalf("add body = %q, want the selected product", shop.body("products/add"))
	}
}

func TestCampaignFormSubmitCreatesCampaign(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "4")
	waitFor(t, func() bool { return c.AdsState().HasSnapshot })

	m, _ = press(m, "n")
	if m.modal == nil {
		t.Fatalf("n did not open the campaign form")
	}

	form := m.modal.(campaignForm)
	form.inputs[fieldName].SetValue("Summer push")
	form.inputs[fieldProduct].SetValue("p-1")
	form.inputs[fieldBudget].SetValue("100")
	form.inputs[fieldCaption].SetValue("Light up your desk")
	m.modal = form

	m, cmd := press(m, "enter")
	if m.modal != nil {
		t.Fatalf("form stayed open after a valid submit")
	}
	msg := cmd()
	submit, ok := msg.(campaignSubmitMsg)
	if !ok {
		t.Fatalf("form command returned %T", msg)
	}

	m, cmd = update(m, submit)
	m, _ = update(m, cmd())
	if m.notice.text != "Campaign created!" {
		t.Fatalf("notice = %#v", m.notice)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(shop.body("ads/create")), &sent); err != nil {
		t.Fatalf("decode create body: %v", err)
	}
	if sent["name"] != "Summer push" || sent["platform"] != "tiktok" || sent["status"] != "draft" {
		t.Fatalf("create body = %v", sent)
	}
	if shop.count("ads/campaigns") != 2 {
		t.Fatalf("campaigns fetched %d times, want refresh after create", shop.count("ads/campaigns"))
	}
}

func TestThemeKeyCyclesAndSaves(t *testing.T) {
	m, _, c := newTestModel(t)
	c.Show(console.Orders)

	before := m.theme.Name
	m, _ = press(m, "T")
	if m.theme.Name == before {
		t.Fatalf("theme did not change")
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if saved.Theme != m.theme.Name || saved.StartView != "orders" {
		t.Fatalf("saved prefs = %#v", saved)
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m, _ = press(m, "x")
	if m.showHelp {
		t.Fatalf("help still open")
	}
}

func TestViewRendersOrders(t *testing.T) {
	m, _, c := newTestModel(t)
	m, _ = press(m, "2")
	waitFor(t, func() bool { return c.OrdersState().HasSnapshot })

	out := m.View()
	for _, want := range []string{"shopdeck", "#1001", "Ada", "Pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q", want)
		}
	}
}

func TestNoticeExpires(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.notice = notice{text: "done", level: noticeSuccess, at: time.Now().Add(-2 * NoticeTTL)}
	m, _ = update(m, tickMsg(time.Now()))
	if m.notice.text != "" {
		t.Fatalf("notice = %#v, want expired", m.notice)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&storefront.Error{Kind: storefront.KindAlreadyInFlight}, "already in progress"},
		{&storefront.Error{Kind: storefront.KindNetwork, Err: errors.New("dial tcp: refused")}, "storefront unreachable"},
		{&storefront.Error{Kind: storefront.KindRejected, Status: 400, Detail: "order closed"}, "rejected: order closed"},
		{&storefront.Error{Kind: storefront.KindRejected, Status: 404}, "rejected (status 404)"},
		{&storefront.Error{Kind: storefront.KindDecode}, "unexpected response from storefront"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Errorf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestLogOverlayShowsLogFile(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(m, "L")
	if m.modal != nil || m.notice.level != noticeError {
		t.Fatalf("L without a log file should only set a notice")
	}

	path := filepath.Join(t.TempDir(), "shopdeck.log")
	logger, closeLog, err := logging.New(logging.Config{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	logger.Named("dispatch").Warn("action failed", zap.String("kind", "fulfill"))
	if err := closeLog(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	m.logPath = path
	m, _ = press(m, "L")
	if _, ok := m.modal.(logModal); !ok {
		t.Fatalf("modal = %T, want logModal", m.modal)
	}
	out := m.View()
	for _, want := range []string{"action failed", "WARN", "[dispatch]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log overlay missing %q", want)
		}
	}

	m, _ = press(m, "esc")
	if m.modal != nil {
		t.Fatalf("esc did not close the log overlay")
	}
}

func TestDashboardRendersMetricsAndChart(t *testing.T) {
	m, _, c := newTestModel(t)
	m, _ = press(m, "1")
	waitFor(t, func() bool { return c.DashboardState().HasSnapshot })

	out := m.View()
	for _, want := range []string{"Total Sales", "$1,234.50", "2024-01-01 → 2024-01-02", "peak $30.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestProfitByDatePrefersSeparateSeries(t *testing.T) {
	d := storefront.DashboardMetrics{
		SalesByDate:  []storefront.DatedAmount{{Date: "d1", Sales: 10, Profit: 2}, {Date: "d2", Sales: 20}},
		ProfitByDate: []storefront.DatedAmount{{Date: "d2", Profit: 14}},
	}
	got := profitByDate(d)
	if got["d1"] != 2 || got["d2"] != 14 {
		t.Fatalf("profitByDate = %v", got)
	}
}

func TestRespondKeySendsAutoResponse(t *testing.T) {
	m, shop, c := newTestModel(t)
	m, _ = press(m, "5")
	waitFor(t, func() bool { return c.MessagesState().HasSnapshot })

	m, cmd := press(m, "r")
	if cmd == nil {
		t.Fatalf("r returned no command")
	}
	m, _ = update(m, cmd())
	if m.notice.level != noticeSuccess || m.notice.text != "Response sent automatically!" {
		t.Fatalf("notice = %#v", m.notice)
	}
	if shop.count("customer/messages/m1/respond") != 1 {
		t.Fatalf("respond endpoint hit %d times", shop.count("customer/messages/m1/respond"))
	}
	if shop.count("customer/messages") != 2 {
		t.Fatalf("messages fetched %d times, want refresh after respond", shop.count("customer/messages"))
	}
}

func TestViewsRenderOnSmallTerminals(t *testing.T) {
	m, _, c := newTestModel(t)

	for i, view := range console.Views() {
		m, _ = press(m, fmt.Sprint(i+1))
		waitFor(t, func() bool { return c.Status(view).HasData })

		for _, width := range []int{120, 40} {
			for height := 1; height <= 14; height++ {
				m, _ = update(m, tea.WindowSizeMsg{Width: width, Height: height})
				func() {
					defer func() {
						if r := recover(); r != nil {
							t.Fatalf("%s at %dx%d panicked: %v", view.Title(), width, height, r)
						}
					}()
					if out := m.View(); out == "" {
						t.Fatalf("%s at %dx%d rendered nothing", view.Title(), width, height)
					}
				}()
			}
		}
	}
}

func TestDashboardDropsPanesWhenShort(t *testing.T) {
	m, _, c := newTestModel(t)
	m, _ = press(m, "1")
	waitFor(t, func() bool { return c.DashboardState().HasSnapshot })

	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 8})
	out := m.View()
	if !strings.Contains(out, "Total Sales") {
		t.Fatalf("short dashboard lost the metric cards")
	}
	if strings.Contains(out, "Sales Over Time") || strings.Contains(out, "Ad Performance") {
		t.Fatalf("short dashboard still renders panes that do not fit")
	}

	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 14})
	out = m.View()
	if !strings.Contains(out, "Sales Over Time") || strings.Contains(out, "Ad Performance") {
		t.Fatalf("medium dashboard should show the chart without the ads pane")
	}
}
