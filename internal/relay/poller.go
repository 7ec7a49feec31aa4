package relay

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay/bundler"
	"github/smartkit/relay/internal/util"
)

// Poller drives submitted transactions to a terminal state by polling the
// bundler for receipts. Each watched operation runs in its own goroutine
// detached from the request that created it.
type Poller struct {
	store       Store
	metrics     *metrics.Service
	interval    time.Duration
	maxAttempts int

	wg sync.WaitGroup
}

// NewPoller creates a poller writing outcomes through the given store.
func NewPoller(store Store, m *metrics.Service, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		store:       store,
		metrics:     m,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Watch starts confirmation tracking for a submitted operation. The caller's
// request context is deliberately not inherited: the request finishing or
// failing must not stop the poll.
func (p *Poller) Watch(txID string, opHash common.Hash, b bundler.Client) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(context.Background(), txID, opHash, b)
	}()
}

// Wait blocks until all in-flight polls finished, for graceful shutdown.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) poll(ctx context.Context, txID string, opHash common.Hash, b bundler.Client) {
	log := util.LogFromContext(ctx).With().
		Str("transaction_id", txID).
		Str("op_hash", opHash.Hex()).
		Logger()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		time.Sleep(p.interval)

		receipt, err := b.GetUserOperationReceipt(ctx, opHash)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Receipt lookup failed")
			continue
		}
		if receipt == nil {
			continue
		}

		status := StatusSuccess
		if !receipt.Success {
			status = StatusFailed
		}

		gasCost := util.WeiToEtherString(receipt.ActualGasCost)

		if err := p.store.UpdateTransactionReceipt(ctx, txID, status, receipt.TransactionHash.Hex(), gasCost); err != nil {
			log.Error().Err(err).Str("status", string(status)).Msg("Failed to record transaction outcome")
			return
		}

		p.metrics.OperationsFinalized.WithLabelValues(string(status)).Inc()
		p.metrics.ReceiptPollAttempts.Observe(float64(attempt))

		log.Info().
			Str("status", string(status)).
			Str("chain_hash", receipt.TransactionHash.Hex()).
			Int("attempt", attempt).
			Msg("Transaction finalized")
		return
	}

	// No receipt within the attempt budget. The operation may still land on
	// chain later; the record is closed with the local view.
	if err := p.store.MarkTransactionFailed(ctx, txID); err != nil {
		log.Error().Err(err).Msg("Failed to mark timed out transaction failed")
		return
	}

	p.metrics.OperationsFinalized.WithLabelValues("timeout").Inc()
	p.metrics.ReceiptPollAttempts.Observe(float64(p.maxAttempts))

	log.Warn().
		Int("max_attempts", p.maxAttempts).
		Dur("interval", p.interval).
		Msg("Receipt never appeared within polling budget, marking transaction failed")
}

func chainIDLabel(chainID int64) string {
	return strconv.FormatInt(chainID, 10)
}
