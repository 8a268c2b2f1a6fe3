package logger

import (
	"context"
	"strconv"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// TradeInfo identifies a trade intent for log correlation and Sentry tagging
type TradeInfo struct {
	CoinID int64
	Side   string
}

// Fields returns the zap fields describing the trade
func (i TradeInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.Int64("coin_id", i.CoinID),
		zap.String("side", i.Side),
	}
}

// WithTrade returns a logger annotated with the trade intent.
// When Sentry is configured, errors logged through it carry coin_id and side tags.
func WithTrade(info TradeInfo) *zap.Logger {
	l := log.With(info.Fields()...)
	if sentryClient == nil {
		return l
	}

	hub := sentry.NewHub(sentryClient, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("coin_id", strconv.FormatInt(info.CoinID, 10))
		scope.SetTag("side", info.Side)
	})

	return l.With(zapsentry.Context(sentry.SetHubOnContext(context.Background(), hub)))
}
