package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	cl "fizzworks/internal/cli"
	"fizzworks/internal/game"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newPlayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Live dashboard that refreshes every second",
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newPlayModel(newClient(apiBase))
			_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	paneStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

type pollMsg struct {
	state  game.StateView
	market game.MarketView
	err    error
}

type tickMsg time.Time

type playModel struct {
	client  *cl.Client
	spin    spinner.Model
	state   game.StateView
	market  game.MarketView
	loaded  bool
	lastErr string
	w, h    int
}

func newPlayModel(client *cl.Client) playModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	return playModel{client: client, spin: sp}
}

func (m playModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, pollCmd(m.client), scheduleTick())
}

func pollCmd(client *cl.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		state, err := client.State(ctx)
		if err != nil {
			return pollMsg{err: err}
		}
		market, err := client.Market(ctx)
		if err != nil {
			return pollMsg{err: err}
		}
		return pollMsg{state: state, market: market}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, pollCmd(m.client)
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	case tickMsg:
		return m, tea.Batch(pollCmd(m.client), scheduleTick())
	case pollMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		m.market = msg.market
		m.loaded = true
		m.lastErr = ""
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m playModel) View() string {
	if !m.loaded {
		line := fmt.Sprintf("%s connecting to %s...", m.spin.View(), m.client.BaseURL)
		if m.lastErr != "" {
			line += "\n" + badStyle.Render(m.lastErr)
		}
		return line + "\n"
	}

	s := m.state
	header := titleStyle.Render("FIZZWORKS") + labelStyle.Render(
		fmt.Sprintf("  day %d  %02d:00  month %d  relaunches %d", s.Day, s.Hour, s.Month, s.Resets))

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.plantPane(), m.marketPane())
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.flavorPane(), m.eventPane())

	footer := labelStyle.Render("q quit  r refresh")
	if m.lastErr != "" {
		footer = badStyle.Render("poll failed: "+m.lastErr) + "  " + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, top, bottom, footer) + "\n"
}

func (m playModel) plantPane() string {
	s := m.state
	cash := goodStyle
	if s.CashMicros < 0 {
		cash = badStyle
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("PLANT") + "\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("cash"), cash.Render(money(s.CashMicros))))
	b.WriteString(fmt.Sprintf("%s %s/h (eff %s)\n", labelStyle.Render("capacity"), comma(s.CapacityPerHour), comma(s.EffectiveCapacity)))
	b.WriteString(fmt.Sprintf("%s %s/h\n", labelStyle.Render("fixed"), money(s.FixedCostMicrosPerHour)))
	b.WriteString(fmt.Sprintf("%s pf=%s lb=%s pk=%s bt=%s\n", labelStyle.Render("inv"),
		comma(s.Inventory.Preforms), comma(s.Inventory.Labels), comma(s.Inventory.Packaging), comma(s.Inventory.Bottles)))
	b.WriteString(fmt.Sprintf("%s +%s/-%s last hour\n", labelStyle.Render("flow"),
		comma(s.LastProduced), comma(s.LastSold)))
	b.WriteString(fmt.Sprintf("%s %s lifetime\n", labelStyle.Render("revenue"), money(s.Stats.RevenueMicros)))
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m playModel) marketPane() string {
	mk := m.market
	var b strings.Builder
	b.WriteString(titleStyle.Render("MARKET") + "\n")
	b.WriteString(fmt.Sprintf("%s %.0f  %s %.1f%%\n", labelStyle.Render("demand"), mk.DemandLevel,
		labelStyle.Render("share"), mk.MarketShare*100))
	for _, ch := range mk.Channels {
		b.WriteString(fmt.Sprintf("%-12s %6.0f %5.1f%%\n", ch.ChannelID, ch.Demand, ch.PlayerShare*100))
	}
	if mk.RivalsActive {
		b.WriteString(warnStyle.Render("rivals active") + "\n")
	} else {
		b.WriteString(labelStyle.Render("rivals dormant") + "\n")
	}
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m playModel) flavorPane() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FLAVORS") + "\n")
	for _, f := range m.state.Flavors {
		marker := " "
		if f.Active {
			marker = "*"
		}
		if !f.Unlocked {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%s %-10s locked", marker, f.ID)) + "\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%s %-10s %8s sold %s\n", marker, f.ID, money(f.PriceMicros), comma(f.SoldLifetime)))
	}
	b.WriteString(fmt.Sprintf("%s %s  %s %.2f\n", labelStyle.Render("format"), m.state.ActiveFormatID,
		labelStyle.Render("legacy"), m.state.LegacyPoints))
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m playModel) eventPane() string {
	s := m.state
	var b strings.Builder
	b.WriteString(titleStyle.Render("EVENTS") + "\n")
	if s.Event != nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%s (%dh)", s.Event.Name, s.Event.RemainingHours)) + "\n")
	} else {
		b.WriteString(labelStyle.Render("no active event") + "\n")
	}
	switch {
	case s.Mission.Pending != nil:
		b.WriteString(goodStyle.Render("mission reward ready") + "\n")
	case s.Mission.ActiveID != "":
		b.WriteString(fmt.Sprintf("mission %s (%dh)\n", s.Mission.ActiveID, s.Mission.RemainingHours))
	default:
		b.WriteString(labelStyle.Render("no mission running") + "\n")
	}
	if s.PrestigeEligible {
		b.WriteString(goodStyle.Render("relaunch available") + "\n")
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("achievements %d", len(s.UnlockedAchievements))) + "\n")
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}
