// Package query answers read-only lookups and ranking queries over a
// cache document.
//
// A View is a point-in-time snapshot of one store's document, so
// analysis never contends with the tuning session that owns the store.
// Lookup and FilterByKeys find lines by configuration; Best and TopK
// rank measured lines by a metric Selector. Failed lines are visible to
// lookups and filters but never rank.
package query
