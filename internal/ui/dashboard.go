package ui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/storefront"
)

// Smallest useful heights, borders included, for the dashboard panes.
const (
	dashboardMinPane = 5
	dashboardMinAds  = 4
)

type metricCard struct {
	title string
	value string
}

// dashboardCards lists the headline figures in display order. The first four
// always show; the rest only on wide terminals.
func dashboardCards(d storefront.DashboardMetrics) []metricCard {
	return []metricCard{
		{"Total Sales", formatMoney(d.TotalSales, "")},
		{"Total Profit", formatMoney(d.TotalProfit, "")},
		{"Total Orders", formatCount(d.TotalOrders)},
		{"ROI", formatPercent(d.ROI, 1)},
		{"Ad Spend", formatMoney(d.TotalAdSpend, "")},
		{"Conversion", formatPercent(d.ConversionRate, 2)},
		{"Avg Order", formatMoney(d.AverageOrderValue, "")},
	}
}

// renderDashboard renders the metric cards, the sales chart, best sellers and
// ad performance.
func (m Model) renderDashboard() string {
	d := m.console.DashboardState().Visible
	height := m.contentHeight()

	cards := dashboardCards(d)
	if m.width < LayoutExtraWideWidth {
		cards = cards[:4]
	}
	cardRow := m.renderCards(cards)

	// Short terminals keep the cards and drop the panes that no longer fit.
	rest := height - lipgloss.Height(cardRow)
	if rest < dashboardMinPane {
		return cardRow
	}
	adsHeight := 0
	if rest >= 2*dashboardMinPane+dashboardMinAds {
		adsHeight = min(max(dashboardMinAds, len(d.AdPerformance)+3), rest/3)
	}
	middleHeight := rest - adsHeight

	chartWidth := m.width
	listWidth := 0
	if m.width >= LayoutSplitWidth {
		chartWidth = m.width * 60 / 100
		listWidth = m.width - chartWidth
	}

	middle := m.renderTitledBox("Sales Over Time", m.renderSalesChart(d, chartWidth-2, middleHeight-2), chartWidth, middleHeight, false)
	if listWidth > 0 {
		top := m.renderTitledBox("Top Products", m.renderTopProducts(d.TopProducts, listWidth-2, middleHeight-2), listWidth, middleHeight, false)
		middle = lipgloss.JoinHorizontal(lipgloss.Top, middle, top)
	}

	if adsHeight == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, cardRow, middle)
	}
	ads := m.renderTitledBox("Ad Performance", m.renderAdPerformance(d.AdPerformance), m.width, adsHeight, false)
	return lipgloss.JoinVertical(lipgloss.Left, cardRow, middle, ads)
}

// renderCards lays the metric cards out in one row of equal-width boxes.
func (m Model) renderCards(cards []metricCard) string {
	if len(cards) == 0 {
		return ""
	}
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	width := m.width / len(cards)
	boxes := make([]string, 0, len(cards))
	for i, card := range cards {
		w := width
		if i == len(cards)-1 {
			w = m.width - width*(len(cards)-1)
		}
		value := bg.Render(card.value, styles.Text.Bold(true))
		pad := max(0, (w-2-lipgloss.Width(value))/2)
		boxes = append(boxes, m.renderTitledBox(card.title, bg.Spaces(pad)+value, w, 3, false))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// renderSalesChart draws daily sales as bars, newest on the right. The lower
// segment of each bar is that day's profit.
func (m Model) renderSalesChart(d storefront.DashboardMetrics, width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	series := d.SalesByDate
	if len(series) == 0 || width < 4 || height < 3 {
		return styles.MutedText.Render("No sales recorded yet")
	}

	// One line for the caption below the bars.
	chartHeight := height - 1
	maxBars := max(1, width/2)
	if len(series) > maxBars {
		series = series[len(series)-maxBars:]
	}
	profits := profitByDate(d)

	salesStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.ChartSales)).
		Background(lipgloss.Color(m.theme.ChartSales))
	profitStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.ChartProfit)).
		Background(lipgloss.Color(m.theme.ChartProfit))

	bc := barchart.New(width, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)

	peak := series[0]
	for _, point := range series {
		if point.Sales > peak.Sales {
			peak = point
		}
		profit := min(max(0, profits[point.Date]), point.Sales)
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{
				{Name: "profit", Value: profit, Style: profitStyle},
				{Name: "sales", Value: point.Sales - profit, Style: salesStyle},
			},
		})
	}
	bc.Draw()

	first, last := series[0].Date, series[len(series)-1].Date
	caption := fmt.Sprintf("%s → %s  peak %s on %s", first, last, formatMoney(peak.Sales, ""), peak.Date)
	legend := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ChartProfit)).Background(lipgloss.Color(m.theme.SurfaceAlt)).Render("■ profit")
	return bc.View() + "\n" + styles.MutedText.Render(truncate(caption, width-9)) + " " + legend
}

// profitByDate indexes profit per day. The API reports it either inline on
// sales points or as a separate series.
func profitByDate(d storefront.DashboardMetrics) map[string]float64 {
	out := make(map[string]float64, len(d.SalesByDate))
	for _, p := range d.SalesByDate {
		if p.Profit != 0 {
			out[p.Date] = p.Profit
		}
	}
	for _, p := range d.ProfitByDate {
		out[p.Date] = p.Profit
	}
	return out
}

// renderTopProducts renders the best sellers as label and revenue columns.
func (m Model) renderTopProducts(products []storefront.TopProduct, width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	if len(products) == 0 {
		return styles.MutedText.Render("No sales yet")
	}

	amountWidth := 14
	labelWidth := max(4, width-amountWidth-6)
	lines := make([]string, 0, max(0, min(len(products), height)))
	for i, p := range products {
		if i >= height {
			break
		}
		rank := bg.Render(fmt.Sprintf("%2d.", i+1), styles.FaintText)
		label := bg.Column(p.Label(), labelWidth, styles.Text)
		amount := bg.Render(formatMoney(p.Amount(), ""), styles.SuccessText)
		lines = append(lines, rank+bg.Space()+label+bg.Space()+amount)
	}
	return strings.Join(lines, "\n")
}

// renderAdPerformance renders spend, ROAS and conversions per platform.
func (m Model) renderAdPerformance(rows []storefront.AdPerformance) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	if len(rows) == 0 {
		return styles.MutedText.Render("No ad spend recorded")
	}

	header := bg.Column("Platform", 14, styles.FaintText) + bg.Space() +
		bg.Column("Spend", 14, styles.FaintText) + bg.Space() +
		bg.Column("ROAS", 8, styles.FaintText) + bg.Space() +
		bg.Render("Conversions", styles.FaintText)

	lines := []string{header}
	for _, row := range rows {
		roasStyle := styles.Text
		if row.ROAS >= 1 {
			roasStyle = styles.SuccessText
		} else if row.ROAS > 0 {
			roasStyle = styles.WarningText
		}
		lines = append(lines,
			bg.Column(titleCase(row.Platform), 14, styles.Text)+bg.Space()+
				bg.Column(formatMoney(row.Spend, ""), 14, styles.Text)+bg.Space()+
				bg.Column(fmt.Sprintf("%.2fx", row.ROAS), 8, roasStyle)+bg.Space()+
				bg.Render(formatCount(row.Conversions), styles.Text))
	}
	return strings.Join(lines, "\n")
}
