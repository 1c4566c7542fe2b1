// Package scheduler drives real-time play.
//
// A Ticker calls a function at a fixed cadence until it is stopped, its
// context ends or the function asks it to stop. A Driver owns one Ticker per
// session: holding a direction starts ticking, releasing it stops. Reset and
// quit requests are queued on the engine and land on the next tick. Every
// tick's snapshot goes to a Broadcaster, normally the websocket hub.
package scheduler
