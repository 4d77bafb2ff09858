// internal/app/system/csvutil/limits.go
package csvutil

// MaxExportRows caps a single CSV export.
const MaxExportRows = 10000
