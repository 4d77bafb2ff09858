// internal/app/system/csvutil/export.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Filename builds "<entity>-YYYY-MM-DD.csv".
func Filename(entity string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", entity, now.UTC().Format("2006-01-02"))
}

// SafeCell neutralizes cells a spreadsheet would evaluate as a formula.
func SafeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteHTTP streams header and rows as a CSV attachment. Rows beyond
// MaxExportRows are not written; the number written is returned.
func WriteHTTP(w http.ResponseWriter, filename string, header []string, rows [][]string) (int, error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		if n >= MaxExportRows {
			break
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = SafeCell(strings.TrimSpace(c))
		}
		if err := cw.Write(cells); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}
