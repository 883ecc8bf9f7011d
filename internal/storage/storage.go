package storage

import "poolpulse/internal/model"

// Storage defines a sink for exported trade records.
type Storage interface {
	PutTradeBatch(trades []model.TradeRecord) error
}
