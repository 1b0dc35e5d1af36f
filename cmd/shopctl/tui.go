package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Skotchmaster/storefront/pkg/console"
	"github.com/Skotchmaster/storefront/pkg/contracts"
)

var periodKeys = map[string]string{
	"a": "",
	"t": "today",
	"y": "yesterday",
	"w": "week",
	"m": "month",
}

var statusKeys = map[string]contracts.OrderStatus{
	"p": contracts.StatusPending,
	"s": contracts.StatusShipped,
	"c": contracts.StatusCancelled,
}

type loadedMsg struct{ err error }

type statusMsg struct {
	orderID string
	status  contracts.OrderStatus
	err     error
}

// consoleModel is the interactive admin order view.
type consoleModel struct {
	ctx    context.Context
	con    *console.Console
	period string
	cursor int
	status string
	busy   bool
}

func newConsoleModel(ctx context.Context, con *console.Console, period string) consoleModel {
	return consoleModel{ctx: ctx, con: con, period: period, status: "Loading...", busy: true}
}

func (m consoleModel) load() tea.Cmd {
	ctx, con, period := m.ctx, m.con, m.period
	return func() tea.Msg {
		return loadedMsg{err: con.Load(ctx, period)}
	}
}

func (m consoleModel) setStatus(orderID string, status contracts.OrderStatus) tea.Cmd {
	ctx, con := m.ctx, m.con
	return func() tea.Msg {
		return statusMsg{orderID: orderID, status: status, err: con.SetStatus(ctx, orderID, status)}
	}
}

func (m consoleModel) Init() tea.Cmd { return m.load() }

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Load failed: " + msg.err.Error()
			return m, nil
		}
		if n := len(m.con.Orders()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		m.status = "Ready"
		return m, nil
	case statusMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Update failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Order %s is now %s", short(msg.orderID), msg.status)
		}
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.con.Orders())-1 {
				m.cursor++
			}
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		if key == "r" {
			m.busy, m.status = true, "Loading..."
			return m, m.load()
		}
		if p, ok := periodKeys[key]; ok {
			m.period, m.cursor = p, 0
			m.busy, m.status = true, "Loading..."
			return m, m.load()
		}
		if st, ok := statusKeys[key]; ok {
			orders := m.con.Orders()
			if len(orders) == 0 {
				return m, nil
			}
			m.busy, m.status = true, "Saving..."
			return m, m.setStatus(orders[m.cursor].ID, st)
		}
	}
	return m, nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m consoleModel) View() string {
	b := &strings.Builder{}
	period := m.period
	if period == "" {
		period = "all"
	}
	fmt.Fprintf(b, "Orders (%s)\n\n", period)

	orders := m.con.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(b, "  no orders")
	}
	for i, o := range orders {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %s  %s  %-9s  %10.2f\n", marker, short(o.ID), o.CreatedAt.Local().Format(time.DateTime), o.Status, o.TotalPrice)
	}
	sales, n := m.con.Totals()
	fmt.Fprintf(b, "\nTotal orders: %d   Total sales: %.2f\n", n, sales)
	fmt.Fprintf(b, "Status: %s\n", m.status)
	fmt.Fprintln(b, "\nup/down select, p/s/c set pending/shipped/cancelled, a/t/y/w/m period, r reload, q quit")
	return b.String()
}

func runConsole(ctx context.Context, con *console.Console, period string) error {
	p := tea.NewProgram(newConsoleModel(ctx, con, period), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
