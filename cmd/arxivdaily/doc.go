// Package main hosts the arxivdaily entrypoint.
//
// Architecture overview:
//   - Fetch pipeline: internal/feed resolves a calendar day into the UTC
//     retrieval window anchored at the publisher's announcement hour, pulls
//     paged category feeds through the internal/arxiv client (retry with
//     jittered backoff, fixed pacing between pages), normalizes and windows
//     the entries, and deduplicates across categories first-seen-wins.
//   - Persistence: internal/snapshot writes one JSON file per announcement
//     day plus a count index, both via temp-file-and-rename, prunes old
//     snapshots past the retention horizon, and can mirror snapshots to GCS
//     through the storage.Provider abstraction.
//   - Bookmark API: internal/api serves the reader's saved/starred state
//     (internal/tags) over chi with request-ID, logging, recover, CORS, and
//     Prometheus middleware.
//   - Configuration & plumbing: Viper populates config from file/env
//     (ARXIVD_* variables); zap provides structured logging; Prometheus
//     metrics are exported at /metrics on the bookmark server.
//
// Operational notes:
//   - A fetch run is sequential by design: one category at a time, one page
//     at a time, with a pacing delay between requests per arXiv's rate
//     guidance. A hard failure in one category degrades it to zero entries
//     without aborting the run.
//   - Re-running fetch for the same day replaces that day's snapshot and
//     index entry; given identical upstream data the output is byte
//     identical.
//   - Run locally: go run ./cmd/arxivdaily fetch --date 2026-08-29, or
//     go run ./cmd/arxivdaily serve for the bookmark API.
package main
