package utils

import (
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one line per transaction with its path and processing
// time in microseconds. Failures are logged as errors in both phases.
// Successful deliveries are logged at info level and successful checks
// at debug level, since every mempool transaction is checked.
type Logging struct{}

var _ custody.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("", "err", err)
	} else {
		logger.Debug(res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("", "err", err)
	} else {
		logger.Info(res.Log)
	}
	return res, err
}

func txLogger(ctx custody.Context, tx custody.Tx, start time.Time) log.Logger {
	return custody.GetLogger(ctx).With(
		"path", custody.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
}
