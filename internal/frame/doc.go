// Package frame provides display-sync frame scheduling and clocks.
//
// A [Scheduler] hands out one-shot frame callbacks in the manner of a
// browser's requestAnimationFrame:
//
//   - [Queue]: callbacks run when the host calls [Queue.Fire]; used by the
//     terminal and window views, which already own an event loop, and by tests
//   - [Ticker]: a goroutine firing the queue at a fixed rate
//
// Callbacks never overlap. A callback requested while the queue is firing
// runs on the next fire, not the current one.
package frame
