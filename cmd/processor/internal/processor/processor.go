package processor

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/pkg/config"
	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// Processor moves ticker updates from Kafka into Redis: the latest update per
// symbol is stored as a snapshot and published to the symbol's channel.
type Processor struct {
	logger      *zap.Logger
	store       SnapshotStore
	source      UpdateSource
	numWorkers  int
	snapshotTTL time.Duration
}

func NewProcessor(cfg *config.Config, logger *zap.Logger, store SnapshotStore, source UpdateSource) *Processor {
	numWorkers := cfg.Processor.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ttl := cfg.Processor.SnapshotTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Processor{
		logger:      logger,
		store:       store,
		source:      source,
		numWorkers:  numWorkers,
		snapshotTTL: ttl,
	}
}

func (p *Processor) Run(ctx context.Context) error {
	workerChans := make([]chan []byte, p.numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < p.numWorkers; i++ {
		workerChans[i] = make(chan []byte, 100)
		wg.Add(1)
		go p.worker(i, workerChans[i], &wg)
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		p.logger.Info("Processor Started", zap.Int("workers", p.numWorkers))
		for {
			m, err := p.source.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				p.logger.Error("Kafka Read Error", zap.Error(err))
				continue
			}

			// Same symbol always goes to the same worker, which keeps per-symbol order
			workerID := getWorkerID(m.Key, p.numWorkers)

			select {
			case workerChans[workerID] <- m.Value:
			case <-ctx.Done():
				return
			default:
				// Only the latest price matters, so a full worker drops rather than blocks
				p.logger.Warn("Dropping slow packet", zap.String("key", string(m.Key)), zap.Int("worker_id", workerID))
			}
		}
	}()

	<-ctx.Done()
	p.logger.Info("Shutdown signal received, stopping processor...")

	// workers' channels must not close under a pending send
	<-readerDone
	for _, ch := range workerChans {
		close(ch)
	}
	p.logger.Info("Waiting for workers to drain...")
	wg.Wait()

	return nil
}

func (p *Processor) worker(id int, msgs <-chan []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	ctx := context.Background() // not cancelled mid-write

	// Deduplication state; only valid because of deterministic sharding
	lastSeq := make(map[string]int64)

	for payload := range msgs {
		var update models.TickerUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			p.logger.Error("JSON Unmarshal Error", zap.Error(err))
			continue
		}

		if update.Symbol == "" || update.Price <= 0 {
			p.logger.Warn("Skipping invalid update", zap.String("symbol", update.Symbol), zap.Float64("price", update.Price))
			continue
		}

		if update.SeqID <= lastSeq[update.Symbol] {
			p.logger.Debug("Skipping duplicate update", zap.String("symbol", update.Symbol), zap.Int64("seq_id", update.SeqID))
			continue
		}

		pipe := p.store.Pipeline()
		pipe.Set(ctx, models.SnapshotKey(update.Symbol), payload, p.snapshotTTL)
		pipe.Publish(ctx, models.PriceChannel(update.Symbol), payload)

		if _, err := pipe.Exec(ctx); err != nil {
			p.logger.Error("Redis Pipeline Error", zap.Error(err), zap.String("symbol", update.Symbol))
			continue
		}

		p.logger.Debug("Processed", zap.String("symbol", update.Symbol), zap.Int("worker_id", id), zap.Int64("seq_id", update.SeqID))
		lastSeq[update.Symbol] = update.SeqID
	}
}

func getWorkerID(key []byte, numWorkers int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(numWorkers))
}
