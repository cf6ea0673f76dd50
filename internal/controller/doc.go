// Package controller owns the client's session and view state and keeps it in step with the server.
//
// # Model
//
// [State] is a plain value. [Update] is a pure transition: it takes the current state and an [Event] and returns the
// next state plus the [Effect]s to run. Effects perform I/O (HTTP calls, camera, playback) off the event loop and
// report back with a completion event.
//
// # Sections
//
// Exactly one top-level section is visible: the auth section while there is no session, otherwise one of the
// dashboard, detection or favorites sections. [State.Visible] derives it.
//
// # Request Ordering
//
// Most effects are tracked by [Intent]. Issuing a request for an intent that already has one in flight supersedes
// it: the older request's context is canceled and its completion, if it still arrives, is dropped. Favorite
// add/remove, play tracking, playback, journal writes, the admin panel and notification expiry are untracked and
// apply in arrival order.
//
// # Runtime
//
// [Controller] runs the loop: one goroutine applies events in order, renders every new state to the [Surface] and
// starts effects on their own goroutines. [Controller.Dispatch] never blocks. [Controller.Settle] waits until the
// queue is empty and no effect is running.
package controller
