// package repositories provides the sqlite persistence layer for the local cache.
//
// Each repository implements models.Repository[T] for one cached entity:
//   - [SongRepository] remembers every server song the client has displayed, upserting by server song id
//   - [CaptureRepository] journals capture results
//
// [Journal] adapts both to the controller's journal capability.
package repositories
