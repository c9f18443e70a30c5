// Package dag implements a generic directed graph with BFS,
// reverse-BFS, and DFS traversal, used by the scheduler
// (internal/engine) to open/close operators in reverse-BFS/BFS order.
// The physical builder (internal/querysql) does not use it.
//
// Visited-set discipline: each traversal allocates its own
// mutex-guarded marker and marks nodes as it visits them; markers are
// not shared or reused between calls.
package dag
