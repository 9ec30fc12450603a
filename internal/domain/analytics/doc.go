// Package analytics contains the engagement analytics bounded context.
// Storefront visitors generate view and click events that are tallied in
// per-day and per-media counters; reads roll the daily counters up into
// windowed totals and week-over-week changes.
package analytics
