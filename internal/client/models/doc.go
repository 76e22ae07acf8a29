// Package models defines the data shapes the console exchanges with the
// admin API: the signed-in identity, paginated pages of opaque records,
// list queries and statistics.
package models
