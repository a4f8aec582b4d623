/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package link

import (
	"sync"

	"github.com/botobag/artemis/concurrent/future"
)

// goFuture is completed by a goroutine started in Go.
type goFuture struct {
	mutex  sync.Mutex
	done   bool
	result *Result
	err    error
	waker  future.Waker
}

// Go calls fn in a new goroutine and returns a future that completes with its return values.
// Transports use it to turn blocking calls into futures.
func Go(fn func() (*Result, error)) future.Future {
	f := &goFuture{}
	go func() {
		result, err := fn()

		f.mutex.Lock()
		f.done, f.result, f.err = true, result, err
		waker := f.waker
		f.mutex.Unlock()

		if waker != nil {
			waker.Wake()
		}
	}()
	return f
}

// Poll implements future.Future.
func (f *goFuture) Poll(waker future.Waker) (future.PollResult, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if !f.done {
		f.waker = waker
		return future.PollResultPending, nil
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
