// Package hierarchy models the company → clients → projects tree the map
// layout engine consumes, and the filter applied to it before layout.
//
// # Input
//
// The data-fetch collaborator delivers a flat, already-joined [Tree]: one
// company, a list of clients and a list of projects that reference their
// client by id. [Build] validates the snapshot and groups it into a
// [Hierarchy] of [Branch] values (one per client, in input order).
//
// A project with an empty ClientID is an orphan. Orphans are carried in
// [Hierarchy.Orphans]; they are rendered separately by the UI and never take
// part in spoke or ring placement. A project whose ClientID names a client
// that does not exist is malformed and rejected with [ErrUnknownClient].
//
// # Filtering
//
// [Filter] applies a [FilterSpec] (search, status, owner, active-only). Each
// predicate is evaluated against the unfiltered hierarchy, so the result does
// not depend on the order the predicates are listed in:
//
//	h, err := hierarchy.Build(tree)
//	if err != nil {
//	    return err
//	}
//	visible := hierarchy.Filter(h, hierarchy.FilterSpec{Search: "acme", ActiveOnly: true})
//
// [Filter] never mutates its input.
//
// # Serialization
//
// Trees are read from JSON or TOML with [ReadTreeFile] / [ReadTree] and
// written as JSON with [WriteTree].
package hierarchy
