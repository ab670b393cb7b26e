// Package console holds the session state behind the single-page
// management console: one cache per backend collection, the
// sale-in-progress builder, and the viewing/editing mode of detail
// panels.
//
// Every store follows the same contract: a mutation persists through the
// service layer and then reconciles the cache through its RefreshPolicy.
// The default FullRefetch policy refetches the whole collection, so the
// cache always reflects the backend rather than an optimistic local
// patch. Overlapping refreshes are not serialized; the last one to finish
// wins, which is acceptable for a single operator session.
//
// Store operations report failure through a sticky user-facing message
// (Err) instead of returning errors; the sale path additionally returns
// the error because the caller has to know whether submission succeeded.
package console
