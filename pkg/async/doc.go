// Package async runs a function in its own goroutine and hands back a typed
// Future for its result.
//
//	f := async.Async(ctx, userID, subscriber.Subscribe)
//	if _, err := f.AwaitContext(ctx); err != nil {
//	    ...
//	}
//
// The goroutine always runs to completion; awaiting with a context only
// limits how long the caller waits.
package async
