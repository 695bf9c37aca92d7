package util

import (
	"context"
	"time"

	"github.com/tuumbleweed/xerr"
)

// WaitForSeconds sleeps unless ctx ends first, in which case the ctx error is returned.
func WaitForSeconds(ctx context.Context, seconds float64) (e *xerr.Error) {
	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return xerr.NewError(ctx.Err(), "wait interrupted", seconds)
	}
}
