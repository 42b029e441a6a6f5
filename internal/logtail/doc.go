// Package logtail reads the tail of the rentme log file.
//
// Read keeps only the last N lines in a ring buffer, so memory stays
// bounded by N no matter how large the file grows. Filter narrows the
// result to a minimum level and understands both output formats the
// logging package writes:
//
//	12:04:05 WRN poll failed component=chat error="connection refused"
//	{"level":"warn","component":"chat","message":"poll failed"}
//
// Read returns nil, nil for a missing file.
package logtail
