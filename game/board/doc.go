// Package board models the 11x11 Bloqueio grid: cells, goal sides,
// canonical undirected edges, and barrier-to-edge expansion.
//
// The grid has an interior 9x9 playable region (rows and columns 1..9).
// Rows/columns 0 and 10 are border cells, enterable only as the winning
// move of the player whose goal side matches that border.
//
// Pawn movement is blocked by edges, not cells: a barrier anchored at a
// 2x2 intersection contributes two parallel blocked edges. Edges are
// stored canonically (smaller endpoint first) so both orderings of the
// same pair map to one key, and an EdgeSet is a plain hash set over that
// key — at 81 interior cells nothing heavier is warranted.
//
// The package also provides the reachability queries used by the rules
// engine and the bots: HasPathToGoal and ShortestPath, both breadth-first
// searches over the edge-blocked grid.
package board
