// Package queue provides a fixed-capacity blocking queue.
//
// Bounded deliberately inverts the usual "insert fails when full" contract:
// Put blocks the caller until space frees up and never drops an item. The
// only way a blocked Put or Take returns early is context cancellation.
// Every insertion route built on it (work submission, buffer return) is
// therefore guaranteed-delivery rather than best-effort.
package queue
