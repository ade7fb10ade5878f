package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/common"
)

// withTimeout runs fn under a deadline of d (no deadline when d <= 0). A
// failure caused by the deadline is joined with common.ErrTimeout.
func withTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}

	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(cctx)
	if err != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return errors.Join(common.ErrTimeout, err)
	}
	return err
}
