package models

type CloseReason string

const (
	CloseReasonSignal       CloseReason = "SIGNAL"
	CloseReasonStopLoss     CloseReason = "STOP_LOSS"
	CloseReasonTakeProfit   CloseReason = "TAKE_PROFIT"
	CloseReasonTrailingStop CloseReason = "TRAILING_STOP"
	CloseReasonNone         CloseReason = ""
)
