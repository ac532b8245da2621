// Package nav computes paths through layered voxel grids for agents bound
// by gravity: a cell is standable only when it is empty and rests on a
// solid voxel (or sits at the ground layer). The core finder is a
// three-layer jump point search; A* and bidirectional A* variants run over
// the same grid, and path utilities turn the sparse jump-point output into
// dense, smoothed or compressed waypoint lists.
//
// Finders are configuration only and safe for concurrent use; all search
// state lives in a per-call run keyed by coordinate.
package nav
