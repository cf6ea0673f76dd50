// Package models defines the entities moodtune exchanges with the recommendation server and keeps in its local cache.
//
// The package contains two categories of types:
//
// 1. Server projections: transient, UI-scoped copies of server data
//   - [User] : the session identity reported by /user_info
//   - [Song] : a catalog entry as returned by recommendation, favorites and history endpoints
//   - [CaptureResult] : one emotion inference
//   - [NowPlaying] : the single song bound to the audio output
//   - [Preferences], [EmotionRecord], [ListeningRecord], [PlayedSong], [EmotionStats]
//
// 2. Cached entities: rows in the local sqlite cache
//   - [CachedSong] : songs seen in any list, keyed by server song ID
//   - [CaptureRecord] : journal entry for a capture
//
// Cached entities implement [Model]; repositories implement [Repository] for them.
package models
