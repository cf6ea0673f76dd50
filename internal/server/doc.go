// Package server provides HTTP routing, middleware and an in-memory stub of the recommendation server.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the two middlewares `moodtune serve` installs.
//
// The [BasicRouter] implementation uses gorilla/mux internally with method filtering, so routes may
// carry path variables such as /admin/delete_song/{id}.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Stub Backend
//
// [StubBackend] is a [Handler] serving the whole JSON contract the client speaks: login, register,
// logout and user info; favorites and preferences; /analyze, /recommend and /track_play; emotion and
// listening history, most played and emotion stats; multipart /upload_song; and the admin endpoints.
//
// Every response is a JSON object with a success flag. Failures carry a message (or, for /analyze
// and /recommend, an error) that the client shows to the user verbatim.
//
// Users are stored with bcrypt hashes. A session is a gorilla/sessions cookie holding a random token
// that maps to a user in memory, so logging out revokes the token even if the cookie is replayed.
//
// /analyze does not run a model. [DetectEmotion] labels a frame by its average luminance so that
// the same frame always yields the same result.
package server
