package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopdeck/internal/storefront"
)

// Campaign form fields in tab order.
const (
	fieldName = iota
	fieldPlatform
	fieldProduct
	fieldBudget
	fieldDailyBudget
	fieldVideo
	fieldCaption
	fieldCount
)

var campaignLabels = [fieldCount]string{
	"Name:        ",
	"Platform:    ",
	"Product ID:  ",
	"Budget:      ",
	"Daily:       ",
	"Video URL:   ",
	"Caption:     ",
}

var adPlatforms = []string{"tiktok", "facebook", "instagram"}

// campaignSubmitMsg carries a validated campaign out of the form.
type campaignSubmitMsg struct {
	campaign storefront.Campaign
}

// campaignForm is the modal used to draft a new ad campaign.
type campaignForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newCampaignForm(productID string) campaignForm {
	var f campaignForm
	placeholders := [fieldCount]string{
		"e.g. Spring lamp promo",
		"tiktok, facebook or instagram",
		"product to promote",
		"total budget, e.g. 250",
		"optional, e.g. 25",
		"optional",
		"ad copy shown with the creative",
	}
	limits := [fieldCount]int{80, 12, 64, 12, 12, 256, 280}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 36
		in.Prompt = ""
		f.inputs[i] = in
	}
	f.inputs[fieldPlatform].SetValue(adPlatforms[0])
	f.inputs[fieldProduct].SetValue(productID)
	f.inputs[fieldName].Focus()
	return f
}

// Update handles form input. Enter validates and submits; Esc cancels.
func (f campaignForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd, false
	}

	switch {
	case key.Matches(keyMsg, keys.Escape):
		return f, nil, true

	case key.Matches(keyMsg, keys.Confirm):
		campaign, err := f.campaign()
		if err != nil {
			f.err = err.Error()
			return f, nil, false
		}
		return f, func() tea.Msg { return campaignSubmitMsg{campaign: campaign} }, true

	case key.Matches(keyMsg, keys.Tab), keyMsg.String() == "down":
		return f.moveFocus(1), nil, false

	case key.Matches(keyMsg, keys.ShiftTab), keyMsg.String() == "up":
		return f.moveFocus(-1), nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f campaignForm) moveFocus(delta int) campaignForm {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

func (f campaignForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// campaign validates the form into a draft campaign.
func (f campaignForm) campaign() (storefront.Campaign, error) {
	c := storefront.Campaign{
		Name:             f.value(fieldName),
		Platform:         strings.ToLower(f.value(fieldPlatform)),
		ProductID:        f.value(fieldProduct),
		CreativeVideoURL: f.value(fieldVideo),
		CreativeCaption:  f.value(fieldCaption),
		TargetAudience:   map[string]any{},
		Status:           "draft",
	}

	if c.Name == "" {
		return c, errors.New("name is required")
	}
	known := false
	for _, p := range adPlatforms {
		if c.Platform == p {
			known = true
			break
		}
	}
	if !known {
		return c, errors.New("platform must be tiktok, facebook or instagram")
	}
	if c.ProductID == "" {
		return c, errors.New("product id is required")
	}

	budget, err := strconv.ParseFloat(strings.TrimPrefix(f.value(fieldBudget), "$"), 64)
	if err != nil || budget <= 0 {
		return c, errors.New("budget must be a positive number")
	}
	c.Budget = budget

	if raw := strings.TrimPrefix(f.value(fieldDailyBudget), "$"); raw != "" {
		daily, err := strconv.ParseFloat(raw, 64)
		if err != nil || daily <= 0 {
			return c, errors.New("daily budget must be a positive number")
		}
		if daily > budget {
			return c, errors.New("daily budget exceeds total budget")
		}
		c.DailyBudget = &daily
	}

	if c.CreativeCaption == "" {
		return c, errors.New("caption is required")
	}
	return c, nil
}

// View renders the form as a centered modal.
func (f campaignForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("New Ad Campaign"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	for i := range f.inputs {
		label := styles.MutedText.Render(campaignLabels[i])
		if i == f.focus {
			label = styles.AccentText.Render(campaignLabels[i])
		}
		b.WriteString(label)
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Create draft  •  Tab: Next field  •  Esc: Cancel"))

	return placeModal(theme, b.String(), 60, width, height)
}
