// Package ws pushes live sentiment updates to market watchers. It is the
// explicit observer contract between the vote ledger and the UI: every vote
// mutation publishes the fresh percentages to that market's subscribers.
package ws

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"predictmarket/internal/config"
)

var ErrTooManySubscribers = errors.New("too many subscribers for market")

// Update is one live data point for a market.
type Update struct {
	MarketID string    `json:"market_id"`
	YesPct   float64   `json:"yes_pct"`
	NoPct    float64   `json:"no_pct"`
	Votes    int64     `json:"votes"`
	At       time.Time `json:"at"`
}

type subscriber struct {
	ch chan Update
}

type Hub struct {
	mu           sync.RWMutex
	subs         map[string]map[*subscriber]struct{}
	maxPerMarket int
	bufLen       int
	logger       *zap.Logger
}

func NewHub(cfg config.LiveFeedConfig, logger *zap.Logger) *Hub {
	maxPerMarket := cfg.MaxPerMarket
	if maxPerMarket <= 0 {
		maxPerMarket = 200
	}
	bufLen := cfg.SendBufferLen
	if bufLen <= 0 {
		bufLen = 8
	}
	return &Hub{
		subs:         make(map[string]map[*subscriber]struct{}),
		maxPerMarket: maxPerMarket,
		bufLen:       bufLen,
		logger:       logger,
	}
}

// Subscribe registers a watcher for one market. The returned cancel func
// must be called when the watcher goes away.
func (h *Hub) Subscribe(marketID string) (<-chan Update, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs[marketID]) >= h.maxPerMarket {
		return nil, nil, ErrTooManySubscribers
	}
	sub := &subscriber{ch: make(chan Update, h.bufLen)}
	if h.subs[marketID] == nil {
		h.subs[marketID] = make(map[*subscriber]struct{})
	}
	h.subs[marketID][sub] = struct{}{}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[marketID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, marketID)
			}
		}
	}
	return sub.ch, cancel, nil
}

// MarketUpdated implements the vote ledger's observer contract. Sends are
// non-blocking: a slow consumer drops updates rather than stalling the vote
// path — the next update supersedes anything missed.
func (h *Hub) MarketUpdated(marketID string, yesPct, noPct float64, total int64) {
	update := Update{
		MarketID: marketID,
		YesPct:   yesPct,
		NoPct:    noPct,
		Votes:    total,
		At:       time.Now().UTC(),
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[marketID] {
		select {
		case sub.ch <- update:
		default:
			if h.logger != nil {
				h.logger.Debug("live feed update dropped", zap.String("market_id", marketID))
			}
		}
	}
}

// SubscriberCount reports the current watcher count for a market.
func (h *Hub) SubscriberCount(marketID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[marketID])
}
