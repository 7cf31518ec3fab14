package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/services"
)

const maxTradeRows = 50

// UserInterface renders a live session on the terminal. Update may be called from
// any goroutine.
type UserInterface struct {
	manager *services.PositionManager

	mu     sync.Mutex
	status services.SessionStatus
}

func NewUserInterface(manager *services.PositionManager) *UserInterface {
	return &UserInterface{manager: manager}
}

// Update stores the latest session status, it is drawn on the next tick
func (ui *UserInterface) Update(status services.SessionStatus) {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	ui.status = status
}

func (ui *UserInterface) snapshot() services.SessionStatus {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.status
}

// Run draws until ctx is done or the user presses q. cancel is called on q so the
// session stops with the UI.
func (ui *UserInterface) Run(ctx context.Context, cancel context.CancelFunc) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer termui.Close()

	uiEvents := termui.PollEvents()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				helpers.Logger.Infoln("Exited by keyboard interrupt")
				cancel()
				return nil
			}
		case <-ticker.C:
			ui.UpdateUI()
		}
	}
}

func (ui *UserInterface) UpdateUI() {
	status := ui.snapshot()

	marketParagraph := widgets.NewParagraph()
	marketParagraph.BorderStyle.Fg = termui.ColorYellow
	marketParagraph.TitleStyle.Fg = termui.ColorYellow
	marketParagraph.Block.Title = "Market " + status.Symbol
	marketParagraph.Text = MarketText(status)
	marketParagraph.SetRect(0, 0, 44, 12)

	signalParagraph := widgets.NewParagraph()
	signalParagraph.Block.Title = "Signal"
	signalParagraph.Text = SignalText(status.Signal)
	signalParagraph.SetRect(44, 0, 110, 12)

	positionParagraph := widgets.NewParagraph()
	positionParagraph.Block.Title = "Position"
	positionParagraph.Text = PositionText(status.Position, status.Snapshot.Close, ui.manager)
	positionParagraph.SetRect(110, 0, 150, 12)

	tradesList := widgets.NewList()
	tradesList.Block.Title = "Trades"
	tradesList.Rows = TradeRows(status.Trades)
	tradesList.SetRect(0, 12, 150, 30)
	tradesList.ScrollBottom()

	termui.Render(marketParagraph, signalParagraph, positionParagraph, tradesList)
}

func MarketText(status services.SessionStatus) string {
	s := status.Snapshot
	text := fmt.Sprintf("Last bar: %s\n", status.LastBar.Format("2006-01-02 15:04"))
	text += fmt.Sprintf("[Price: %.2f](fg:blue)\n", s.Close)
	text += fmt.Sprintf("Trend: %s\n", status.Trend)
	text += fmt.Sprintf("MA %.2f / %.2f / %.2f\n", s.MAShort, s.MAMedium, s.MALong)
	text += fmt.Sprintf("OBV: %s", s.OBVTrend)
	if s.OBVDivergence {
		text += " (divergence)"
	}
	text += "\n"
	text += fmt.Sprintf("Volume ratio: %.2f\n", s.VolumeRatio)
	text += fmt.Sprintf("Range: %.2f - %.2f\n", s.RecentLow, s.RecentHigh)
	text += fmt.Sprintf("Polls: %d, fetch errors: %d\n", status.Polls, status.FetchErrors)
	if status.LastError != "" {
		text += fmt.Sprintf("[%s](fg:red)\n", status.LastError)
	}
	return text
}

func SignalText(signal models.Signal) string {
	if signal.Direction == "" {
		return "Waiting for the first closed bar\n"
	}
	color := "white"
	switch signal.Direction {
	case models.SignalBuy:
		color = "green"
	case models.SignalSell:
		color = "red"
	}
	text := fmt.Sprintf("[%s](fg:%s) confidence %d%%\n", signal.Direction, color, signal.Confidence)
	text += fmt.Sprintf("BUY units %d, SELL units %d\n", signal.BuyUnits, signal.SellUnits)
	for _, reason := range signal.Reasons {
		text += "- " + reason + "\n"
	}
	return text
}

// PositionText shows the position state and its exit levels at price
func PositionText(position models.Position, price float64, manager *services.PositionManager) string {
	text := fmt.Sprintf("State: %s\n", position.State())
	if !position.IsOpen() {
		return text
	}
	text += fmt.Sprintf("Size: %.6f\n", position.TotalSize)
	text += fmt.Sprintf("Avg entry: %.2f\n", position.AverageEntryPrice)
	pnl := position.PnlPercent(price)
	color := "green"
	if pnl < 0 {
		color = "red"
	}
	text += fmt.Sprintf("[P&L: %.2f%%](fg:%s)\n", pnl, color)
	if manager != nil {
		text += fmt.Sprintf("Pyramid: %d/%d\n", position.PyramidLevel, manager.Config().MaxPyramidLevels)
		text += fmt.Sprintf("SL: %.2f\n", manager.StopLossPrice(&position))
		text += fmt.Sprintf("TP: %.2f\n", manager.TakeProfitPrice(&position))
	}
	if position.TrailingStopPrice != nil {
		text += fmt.Sprintf("Trailing: %.2f\n", *position.TrailingStopPrice)
	}
	return text
}

// TradeRows formats the most recent trades, oldest first
func TradeRows(trades []models.Trade) []string {
	if len(trades) > maxTradeRows {
		trades = trades[len(trades)-maxTradeRows:]
	}
	rows := make([]string, 0, len(trades))
	for _, t := range trades {
		row := fmt.Sprintf("%s %-5s %10.2f -> %10.2f %7.2f%% %s", t.ClosedAt.Format("01-02 15:04"), t.Direction,
			t.EntryPrice, t.ExitPrice, t.PnlPercent, strings.ToLower(string(t.CloseReason)))
		if t.IsWin() {
			row = "[" + row + "](fg:green)"
		} else {
			row = "[" + row + "](fg:red)"
		}
		rows = append(rows, row)
	}
	return rows
}
