package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/dispatch"
	"github.com/five82/shopdeck/internal/prefs"
	"github.com/five82/shopdeck/internal/storefront"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Console   *console.Console
	Logger    *zap.Logger
	ThemeName string
	PrefsPath string
	LogPath   string // log overlay source; empty disables it
	Tick      time.Duration
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeError
)

// notice is the transient footer message left by an action.
type notice struct {
	text  string
	level noticeLevel
	at    time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	console   *console.Console
	logger    *zap.Logger
	prefsPath string
	logPath   string
	tick      time.Duration

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	spinner  spinner.Model
	selected map[console.View]int

	// Product search
	search    textinput.Model
	searching bool

	// Message detail pane
	detail viewport.Model

	modal    Modal
	notice   notice
	showHelp bool
}

// New creates a new Bubble Tea model over opts.Console.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.Prompt = "/"
	search.CharLimit = 100
	search.SetValue(opts.Console.ProductFilter())

	return Model{
		ctx:       ctx,
		console:   opts.Console,
		logger:    logger,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		tick:      tick,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		spinner:   spin,
		selected:  make(map[console.View]int),
		search:    search,
		detail:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.tick),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionResultMsg:
		m.notice = resultNotice(msg)
		return m, nil

	case refreshResultMsg:
		if msg.err != nil {
			m.notice = notice{text: "Refresh failed: " + describeError(msg.err), level: noticeError, at: time.Now()}
		}
		return m, nil

	case campaignSubmitMsg:
		m.notice = notice{text: fmt.Sprintf("Creating campaign %q...", msg.campaign.Name), level: noticeInfo, at: time.Now()}
		return m, m.dispatchCmd(dispatch.Request{
			TargetID: msg.campaign.Name,
			Kind:     dispatch.KindCreateCampaign,
			Payload:  msg.campaign,
		}, "Campaign created!")
	}

	// Forward blink and other component messages to whatever owns input.
	var cmd tea.Cmd
	switch {
	case m.modal != nil:
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.show(m.console.Current().Next())
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.show(previousView(m.console.Current()))
		return m, nil

	case key.Matches(msg, m.keys.ViewDashboard):
		m.show(console.Dashboard)
		return m, nil
	case key.Matches(msg, m.keys.ViewOrders):
		m.show(console.Orders)
		return m, nil
	case key.Matches(msg, m.keys.ViewProducts):
		m.show(console.Products)
		return m, nil
	case key.Matches(msg, m.keys.ViewAds):
		m.show(console.Ads)
		return m, nil
	case key.Matches(msg, m.keys.ViewMessages):
		m.show(console.CustomerService)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Logs):
		if m.logPath == "" {
			m.notice = notice{text: "Logs are going to the terminal, not a file", level: noticeError, at: time.Now()}
			return m, nil
		}
		m.modal = newLogModal(m.logPath, m.theme, m.width, m.height)
		return m, nil
	}

	view := m.console.Current()
	switch view {
	case console.Orders:
		if key.Matches(msg, m.keys.Fulfill) {
			return m.fulfillSelected()
		}
	case console.Products:
		switch {
		case key.Matches(msg, m.keys.AddProduct):
			return m.addSelectedProduct()
		case key.Matches(msg, m.keys.Search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.Escape):
			m.search.SetValue("")
			m.console.SetProductFilter("")
			m.selected[view] = 0
			return m, nil
		}
	case console.Ads:
		if key.Matches(msg, m.keys.NewCampaign) {
			m.modal = newCampaignForm(m.selectedProductID())
			return m, textinput.Blink
		}
	case console.CustomerService:
		switch {
		case key.Matches(msg, m.keys.Respond):
			return m.respondSelected()
		case key.Matches(msg, m.keys.PageDown):
			m.syncDetail()
			m.detail.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.syncDetail()
			m.detail.HalfPageUp()
			return m, nil
		}
	}

	return m.handleListKey(view, msg)
}

// handleListKey moves the selection of list views.
func (m Model) handleListKey(view console.View, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.rowCount(view)
	if count == 0 {
		return m, nil
	}

	current := clamp(m.selected[view], count)
	next := current
	switch {
	case key.Matches(msg, m.keys.Down):
		next = min(current+1, count-1)
	case key.Matches(msg, m.keys.Up):
		next = max(current-1, 0)
	case key.Matches(msg, m.keys.Top):
		next = 0
	case key.Matches(msg, m.keys.Bottom):
		next = count - 1
	}
	if next != current {
		m.selected[view] = next
		m.detail.GotoTop()
	}
	return m, nil
}

// handleSearchKey edits the product search; the filter applies as you type.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.console.SetProductFilter("")
		m.selected[console.Products] = 0
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil

	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != m.console.ProductFilter() {
		m.console.SetProductFilter(value)
		m.selected[console.Products] = 0
	}
	return m, cmd
}

// show switches the visible view.
func (m *Model) show(view console.View) {
	if view == m.console.Current() && m.console.Active(view) {
		return
	}
	m.console.Show(view)
	m.detail.GotoTop()
}

func previousView(v console.View) console.View {
	views := console.Views()
	for i, candidate := range views {
		if candidate == v {
			return views[(i-1+len(views))%len(views)]
		}
	}
	return console.Dashboard
}

// savePrefs persists the theme and current view. Failures are logged only.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, StartView: m.console.Current().String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// handleTick re-renders and expires stale notices.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.notice.text != "" && m.notice.level != noticeInfo && now.Sub(m.notice.at) > NoticeTTL {
		m.notice = notice{}
	}
	return m, tickCmd(m.tick)
}

// rowCount returns the number of selectable rows in view.
func (m Model) rowCount(view console.View) int {
	switch view {
	case console.Orders:
		return len(m.console.OrdersState().Visible)
	case console.Products:
		return len(m.console.ProductsState().Visible)
	case console.Ads:
		return len(m.console.AdsState().Visible)
	case console.CustomerService:
		return len(m.console.MessagesState().Visible)
	default:
		return 0
	}
}

func (m Model) selectedOrder() (storefront.Order, bool) {
	orders := m.console.OrdersState().Visible
	if len(orders) == 0 {
		return storefront.Order{}, false
	}
	return orders[clamp(m.selected[console.Orders], len(orders))], true
}

func (m Model) selectedProduct() (storefront.Product, bool) {
	products := m.console.ProductsState().Visible
	if len(products) == 0 {
		return storefront.Product{}, false
	}
	return products[clamp(m.selected[console.Products], len(products))], true
}

func (m Model) selectedProductID() string {
	if p, ok := m.selectedProduct(); ok {
		return p.ID
	}
	return ""
}

func (m Model) selectedMessage() (storefront.CustomerMessage, bool) {
	messages := m.console.MessagesState().Visible
	if len(messages) == 0 {
		return storefront.CustomerMessage{}, false
	}
	return messages[clamp(m.selected[console.CustomerService], len(messages))], true
}

func (m Model) fulfillSelected() (tea.Model, tea.Cmd) {
	order, ok := m.selectedOrder()
	if !ok {
		return m, nil
	}
	if !order.Fulfillable() {
		m.notice = notice{text: fmt.Sprintf("Order %s is already %s", orderLabel(order), strings.ToLower(order.FulfillmentStatus)), level: noticeError, at: time.Now()}
		return m, nil
	}
	m.notice = notice{text: "Fulfilling order " + orderLabel(order) + "...", level: noticeInfo, at: time.Now()}
	return m, m.dispatchCmd(dispatch.Request{TargetID: order.ID, Kind: dispatch.KindFulfill}, "Order fulfillment initiated!")
}

func (m Model) respondSelected() (tea.Model, tea.Cmd) {
	msg, ok := m.selectedMessage()
	if !ok {
		return m, nil
	}
	if msg.Answered {
		m.notice = notice{text: "Message already answered", level: noticeError, at: time.Now()}
		return m, nil
	}
	m.notice = notice{text: "Sending response to " + displayName(msg.CustomerName, msg.CustomerEmail) + "...", level: noticeInfo, at: time.Now()}
	return m, m.dispatchCmd(dispatch.Request{TargetID: msg.ID, Kind: dispatch.KindRespond}, "Response sent automatically!")
}

func (m Model) addSelectedProduct() (tea.Model, tea.Cmd) {
	product, ok := m.selectedProduct()
	if !ok {
		return m, nil
	}
	m.notice = notice{text: "Adding " + truncate(product.Title, 40) + "...", level: noticeInfo, at: time.Now()}
	return m, m.dispatchCmd(dispatch.Request{TargetID: product.Key(), Kind: dispatch.KindAddProduct, Payload: product}, "Product added to store!")
}

// Messages

type tickMsg time.Time

type actionResultMsg struct {
	kind    dispatch.Kind
	id      string
	success string
	err     error
}

type refreshResultMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// dispatchCmd runs req off the update loop and reports the outcome.
func (m Model) dispatchCmd(req dispatch.Request, success string) tea.Cmd {
	ctx, c := m.ctx, m.console
	return func() tea.Msg {
		_, err := c.Dispatch(ctx, req)
		return actionResultMsg{kind: req.Kind, id: req.TargetID, success: success, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, c := m.ctx, m.console
	return func() tea.Msg {
		return refreshResultMsg{err: c.Refresh(ctx)}
	}
}

func resultNotice(msg actionResultMsg) notice {
	if msg.err == nil {
		return notice{text: msg.success, level: noticeSuccess, at: time.Now()}
	}
	return notice{text: titleCase(msg.kind.String()) + " failed: " + describeError(msg.err), level: noticeError, at: time.Now()}
}

// describeError turns an action or fetch failure into operator-facing text.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var sfErr *storefront.Error
	switch storefront.KindOf(err) {
	case storefront.KindAlreadyInFlight:
		return "already in progress"
	case storefront.KindNetwork:
		if errors.Is(err, context.Canceled) {
			return "cancelled"
		}
		return "storefront unreachable"
	case storefront.KindDecode:
		return "unexpected response from storefront"
	case storefront.KindRejected:
		if errors.As(err, &sfErr) {
			switch {
			case sfErr.Detail != "":
				return "rejected: " + sfErr.Detail
			case sfErr.Status > 0:
				return fmt.Sprintf("rejected (status %d)", sfErr.Status)
			case sfErr.Err != nil:
				return sfErr.Err.Error()
			}
		}
		return "rejected"
	default:
		return err.Error()
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + tabs + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderNotice())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	view := m.console.Current()
	if placeholder, ok := m.renderPlaceholder(view); ok {
		return placeholder
	}
	switch view {
	case console.Dashboard:
		return m.renderDashboard()
	case console.Orders:
		return m.renderOrders()
	case console.Products:
		return m.renderProducts()
	case console.Ads:
		return m.renderAds()
	case console.CustomerService:
		return m.renderMessages()
	default:
		return ""
	}
}

// renderPlaceholder covers the states where a view has nothing to draw yet.
func (m Model) renderPlaceholder(view console.View) (string, bool) {
	st := m.console.Status(view)
	if st.HasData {
		return "", false
	}
	styles := m.theme.Styles()

	var text string
	switch {
	case st.LastError != nil:
		text = styles.DangerText.Render("Could not load "+strings.ToLower(view.Title())+": "+describeError(st.LastError)) +
			"\n" + styles.MutedText.Render("Press R to retry")
	case st.Loading || m.console.Active(view):
		text = m.spinner.View() + " " + styles.MutedText.Render("Loading "+strings.ToLower(view.Title())+"...")
	default:
		text = styles.MutedText.Render("Press R to load " + strings.ToLower(view.Title()))
	}
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, text), true
}

// renderEmpty centers msg in the content area.
func (m Model) renderEmpty(msg string) string {
	styles := m.theme.Styles()
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
}

// renderNotice renders the footer with the latest action result.
func (m Model) renderNotice() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var text string
	switch {
	case m.notice.text == "":
	case m.notice.level == noticeSuccess:
		text = bg.Render("✓ "+m.notice.text, styles.SuccessText)
	case m.notice.level == noticeError:
		text = bg.Render("✗ "+m.notice.text, styles.DangerText)
	default:
		text = bg.Render(m.notice.text, styles.InfoText)
	}
	return styles.Footer.Width(m.width).Render(text)
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Console == nil {
		return fmt.Errorf("ui requires a console")
	}
	if opts.Context == nil {
		opts.Context = ctx
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
