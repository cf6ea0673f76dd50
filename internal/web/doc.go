// Package web maps controller state to HTML.
//
// Markup is built as a tree of [Node] values and serialized with [Render], which escapes every text node and
// attribute value. [Page] is the whole client view for a [controller.State]: the auth forms when there is no
// session, otherwise the navbar and exactly one of the dashboard, detection or favorites sections. Hidden
// sections are rendered with the d-none class so the document keeps a stable shape across states.
//
// [Snapshot] is a controller surface that rewrites an HTML file after every transition; `moodtune render` uses
// it to produce a static page for a given session.
package web
