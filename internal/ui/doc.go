// Package ui implements the interactive terminal surface using bubbletea's Elm architecture.
//
// The controller owns all client state; the [Model] only mirrors it. Every controller transition pings a [Bridge],
// and the model's pending wait command turns that ping into a [MsgStateChanged] message, after which the model
// re-reads [controller.Controller.State] and rebuilds its lists. Key presses become controller events
// dispatched without blocking.
//
// Views follow the controller's sections:
//  1. Auth: login and register forms ([textinput] fields, ctrl+r toggles)
//  2. Dashboard: preferences, emotion history and stats, listening history and most played lists
//  3. Detection: camera controls, capture result, recommendations, song upload
//  4. Favorites: the favorites list
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab) with contextual help from charmbracelet/bubbles/help.
package ui
