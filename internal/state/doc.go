// Package state holds the dashboard's view model: bookmarked networks
// merged with what the node and Central report, member lists, and the
// notice queue.
//
// The Store is owned by the dashboard's update loop. Background fetches
// produce snapshots by value; only the owner merges them, so the store
// needs no locks. The one exception is the member index, which is
// published through an atomic pointer so that a reader on another
// goroutine always sees a complete member set.
//
// Bookmarks are never removed by a merge. A bookmarked network the node
// stops reporting keeps its last known values, marked stale and
// disconnected, until the operator forgets it.
package state
