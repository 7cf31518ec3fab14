package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	database "github.com/luksonlj/takie-tam/database/models"
	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
)

const defaultSqliteDSN = "takie-tam.db"

// DBService journals signals, trades and candles. It is write-mostly, nothing in
// the trading loop reads it back.
type DBService struct {
	DB *gorm.DB
}

// NewDBService opens driver ("sqlite" or "mysql") at dsn and migrates the schema
func NewDBService(driver string, dsn string) (*DBService, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = defaultSqliteDSN
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", models.ErrInvalidConfiguration, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if driver != "mysql" {
		// a single connection keeps in-memory databases alive and serializes writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Trade{}, &database.Signal{}, &database.Candle{})
	if err != nil {
		return nil, err
	}

	helpers.Logger.WithField("driver", dialector.Name()).Info("trade journal ready")
	return dbs, nil
}

func (dbs *DBService) RecordTrade(symbol string, trade models.Trade) error {
	dbTrade := database.Trade{
		Symbol:      symbol,
		Direction:   string(trade.Direction),
		OpenedAt:    trade.OpenedAt,
		ClosedAt:    trade.ClosedAt,
		EntryPrice:  trade.EntryPrice,
		ExitPrice:   trade.ExitPrice,
		Size:        trade.Size,
		Entries:     trade.Entries,
		Profit:      trade.PnlPercent,
		Gain:        trade.PnlQuote,
		CloseReason: string(trade.CloseReason),
	}
	return dbs.DB.Create(&dbTrade).Error
}

func (dbs *DBService) RecordSignal(symbol string, signal models.Signal) error {
	dbSignal := database.Signal{
		Symbol:     symbol,
		Time:       signal.Time,
		Price:      signal.Price,
		Direction:  string(signal.Direction),
		Confidence: signal.Confidence,
		MainTrend:  string(signal.MainTrend),
		BuyUnits:   signal.BuyUnits,
		SellUnits:  signal.SellUnits,
		Reasons:    strings.Join(signal.Reasons, "; "),
	}
	return dbs.DB.Create(&dbSignal).Error
}

// SaveCandles upserts candles, keyed on symbol, timeframe and open time
func (dbs *DBService) SaveCandles(symbol string, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	dbCandles := make([]database.Candle, 0, len(candles))
	for _, c := range candles {
		dbCandles = append(dbCandles, database.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			OpenTime:  c.Timestamp,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}

	// Update columns to new value on conflict
	return dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "open_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "updated_at"}),
	}).CreateInBatches(dbCandles, 500).Error
}

// Trades returns the journaled trades of symbol, oldest first
func (dbs *DBService) Trades(symbol string) ([]database.Trade, error) {
	var trades []database.Trade
	err := dbs.DB.Where("symbol = ?", symbol).Order("closed_at, id").Find(&trades).Error
	return trades, err
}

// Signals returns the journaled signals of symbol, oldest first
func (dbs *DBService) Signals(symbol string) ([]database.Signal, error) {
	var signals []database.Signal
	err := dbs.DB.Where("symbol = ?", symbol).Order("time, id").Find(&signals).Error
	return signals, err
}

func (dbs *DBService) CandleCount(symbol string, timeframe string) (int64, error) {
	var count int64
	err := dbs.DB.Model(&database.Candle{}).Where("symbol = ? AND timeframe = ?", symbol, timeframe).Count(&count).Error
	return count, err
}

func (dbs *DBService) Close() error {
	sqlDB, err := dbs.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
