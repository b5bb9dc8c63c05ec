// Package models defines the records that flow through a tracklift run and the
// persistence interfaces for run history.
//
// The package contains two categories of types:
//
// 1. Pipeline values: immutable records passed between stages
//   - [TrackRecord] : one extracted track, in source page order
//   - [ValidationResult] : expected vs observed track totals for an extraction
//   - [MatchRecord] : a track and the catalog identifier it resolved to, if any
//   - [ReconciliationSummary] : counts and ratio driving the commit decision
//
// 2. Persistent entities: database-backed run history
//   - [Run] : one extract or import stage invocation
//   - [RunTrack] : per-track outcome of a run
//
// Persistent entities implement [Model]; [Repository] defines CRUD access.
package models
