// Package game holds the pieces shared by the Blackjack and Baccarat tables:
// round phases, the read-only snapshot handed to presentation layers, the
// events published on every state transition and the bus that delivers them.
//
// # Basic Usage
//
// A presentation layer subscribes to a table's bus and renders whatever
// snapshot arrives:
//
//	table.Bus().Subscribe(game.SubscriberFunc(func(ev game.Event) {
//	    render(ev.State())
//	}))
//
// Tables publish synchronously on the caller's goroutine. Pacing the events
// for animation is the subscriber's business (see package pacing); the rules
// never wait on a clock.
package game
