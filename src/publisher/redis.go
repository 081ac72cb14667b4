package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher mirrors every round into Redis: the latest value of each
// symbol under a key and the same payload on a pub/sub channel.
//
//	price   -> stock:<SYM>          prices.<SYM>
//	logo    -> stock:<SYM>:logo     logo.<SYM>
//	highlow -> stock:<SYM>:highlow  highlow.<SYM>
type RedisPublisher struct {
	Client *redis.Client
	TTL    time.Duration // 0 keeps keys forever
	Logger *logger.Logger
}

var _ interfaces.IRoundPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(ctx context.Context, cfg models.MRedisConfig, log *logger.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return &RedisPublisher{Client: client, Logger: log}, nil
}

// -----------------------------------------------------------------------------

type pricePayload struct {
	Symbol    string    `json:"symbol"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

type logoPayload struct {
	Symbol string `json:"symbol"`
	URL    string `json:"url"`
}

type highLowPayload struct {
	Symbol string `json:"symbol"`
	High   string `json:"high"`
	Low    string `json:"low"`
}

// -----------------------------------------------------------------------------

// Publish sends the whole batch in one pipeline.
func (p *RedisPublisher) Publish(ctx context.Context, batch *models.FetchBatch) error {
	symbols := batch.Symbols()
	if len(symbols) == 0 {
		return nil
	}
	sort.Strings(symbols)

	pipe := p.Client.Pipeline()
	for _, sym := range symbols {
		key, channel, payload := p.entry(batch, sym)
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		pipe.Set(ctx, key, data, p.TTL)
		pipe.Publish(ctx, channel, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline for %s round: %w", batch.Kind, err)
	}

	p.Logger.Debug("Published %s for %d symbols to redis", batch.Kind, len(symbols))
	return nil
}

func (p *RedisPublisher) entry(batch *models.FetchBatch, sym string) (key, channel string, payload interface{}) {
	switch batch.Kind {
	case models.KindLogo:
		return "stock:" + sym + ":logo", "logo." + sym, logoPayload{Symbol: sym, URL: batch.Logos[sym]}
	case models.KindHighLow:
		hl := batch.HighLows[sym]
		return "stock:" + sym + ":highlow", "highlow." + sym,
			highLowPayload{Symbol: sym, High: hl.High.String(), Low: hl.Low.String()}
	default:
		return "stock:" + sym, "prices." + sym,
			pricePayload{Symbol: sym, Price: batch.Prices[sym].String(), Timestamp: batch.Timestamp}
	}
}

// -----------------------------------------------------------------------------

func (p *RedisPublisher) Close() error {
	return p.Client.Close()
}
