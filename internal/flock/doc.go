// Package flock serializes writers of a card artifact through an exclusive
// lock on a sibling ".lock" file.
//
// Acquire retries the platform's non-blocking lock until a timeout or
// context cancellation:
//
//	lock, err := flock.Acquire(ctx, path+".lock", 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = lock.Release() }()
package flock
