// Package tui renders the crypto-pulse dashboard in the terminal. It is a
// read-only client of the HTTP API; all aggregation happens server side.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshEvery = 60 * time.Second

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	bullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type verdictMsg struct {
	verdict *domain.SentimentVerdict
}

type pricesMsg struct {
	prices []domain.PriceSnapshot
}

type fearGreedMsg struct {
	point *domain.FearGreedPoint
}

type errMsg struct {
	err error
}

type tickMsg time.Time

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	client  *APIClient
	symbols []string

	selected  int
	verdict   *domain.SentimentVerdict
	prices    []domain.PriceSnapshot
	fearGreed *domain.FearGreedPoint

	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func NewModel(client *APIClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		client:  client,
		symbols: domain.SupportedSymbols,
		spinner: s,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchVerdict(false),
		m.fetchPrices(),
		m.fetchFearGreed(),
		scheduleTick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.selected = (m.selected + len(m.symbols) - 1) % len(m.symbols)
			m.loading = true
			m.err = nil
			return m, m.fetchVerdict(false)
		case "right", "l", "tab":
			m.selected = (m.selected + 1) % len(m.symbols)
			m.loading = true
			m.err = nil
			return m, m.fetchVerdict(false)
		case "r":
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.fetchVerdict(true), m.fetchPrices(), m.fetchFearGreed())
		}
		return m, nil

	case verdictMsg:
		m.verdict = msg.verdict
		m.loading = false
		return m, nil

	case pricesMsg:
		m.prices = msg.prices
		return m, nil

	case fearGreedMsg:
		m.fearGreed = msg.point
		return m, nil

	case errMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchVerdict(false), m.fetchPrices(), scheduleTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	symbol := m.symbols[m.selected]
	sb.WriteString(titleStyle.Render("crypto-pulse"))
	sb.WriteString(dimStyle.Render("  q quit · r refresh · ←/→ switch symbol"))
	sb.WriteString("\n\n")

	sb.WriteString(headerStyle.Render("Symbol: "))
	sb.WriteString(symbol)
	if m.fearGreed != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("    Fear & Greed: %d (%s)", m.fearGreed.Value, m.fearGreed.Classification)))
	}
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" analyzing...\n")
	case m.verdict != nil:
		sb.WriteString(renderVerdict(m.verdict))
	}

	if price := m.priceFor(symbol); price != nil {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Price: "))
		sb.WriteString(fmt.Sprintf("$%.2f  24h %+.2f%%\n", price.PriceUSD, price.Change24hPct))
	}

	return sb.String()
}

func (m Model) priceFor(symbol string) *domain.PriceSnapshot {
	for i := range m.prices {
		if m.prices[i].Symbol == symbol {
			return &m.prices[i]
		}
	}
	return nil
}

func renderVerdict(v *domain.SentimentVerdict) string {
	var sb strings.Builder

	style := neutralStyle
	switch v.Label {
	case domain.LabelBullish:
		style = bullishStyle
	case domain.LabelBearish:
		style = bearishStyle
	}

	sb.WriteString(headerStyle.Render("Sentiment: "))
	sb.WriteString(style.Render(fmt.Sprintf("%s (%.3f)", strings.ToUpper(string(v.Label)), v.OverallScore)))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  from %d of %d sources", v.ContributingSources, len(v.PerSource))))
	sb.WriteString("\n\n")

	for _, s := range v.PerSource {
		name := fmt.Sprintf("%-8s", s.Source)
		if s.ItemCount == 0 {
			sb.WriteString(dimStyle.Render(name + "no data"))
		} else {
			sb.WriteString(name + fmt.Sprintf("%+.3f  %s  %d items", s.MeanPolarity, polarityBar(s.MeanPolarity), s.ItemCount))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(dimStyle.Render("generated " + v.GeneratedAt.Local().Format("15:04:05")))
	sb.WriteString("\n")
	return sb.String()
}

// polarityBar renders a fixed-width bar centered on zero, e.g. "····|███··".
func polarityBar(polarity float64) string {
	const half = 5
	cells := int(polarity * half)
	var sb strings.Builder
	for i := -half; i < 0; i++ {
		if cells < 0 && i >= cells {
			sb.WriteString("█")
		} else {
			sb.WriteString("·")
		}
	}
	sb.WriteString("|")
	for i := 1; i <= half; i++ {
		if cells > 0 && i <= cells {
			sb.WriteString("█")
		} else {
			sb.WriteString("·")
		}
	}
	return sb.String()
}

func (m Model) fetchVerdict(refresh bool) tea.Cmd {
	symbol := m.symbols[m.selected]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		verdict, err := m.client.GetVerdict(ctx, symbol, refresh)
		if err != nil {
			return errMsg{err}
		}
		return verdictMsg{verdict}
	}
}

func (m Model) fetchPrices() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		prices, err := m.client.GetPrices(ctx)
		if err != nil {
			return errMsg{err}
		}
		return pricesMsg{prices}
	}
}

func (m Model) fetchFearGreed() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		point, err := m.client.GetFearGreed(ctx)
		if err != nil {
			// Fear & greed is decoration; keep the dashboard usable without it.
			return fearGreedMsg{nil}
		}
		return fearGreedMsg{point}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
