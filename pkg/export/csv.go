package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"taskdata/pkg/merge"
	"taskdata/pkg/tlg"
)

// SafeName keeps letters, digits, space, '-' and '_', replacing the rest.
func SafeName(s string) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	return strings.TrimSpace(out)
}

// Header lists the CSV columns of a decoded log.
func Header(l merge.TaskLog) []string {
	h := []string{"CompositeTLGID", "time_stamp", "latitude", "longitude"}
	h = append(h, l.Static...)
	if l.GPSTime {
		h = append(h, "gps_time")
	}
	for _, c := range l.Columns {
		h = append(h, c.Name)
	}
	return h
}

// Row renders one record under Header(l). Values absent from the record are
// left empty.
func Row(compositeID string, l merge.TaskLog, r tlg.Record) []string {
	row := []string{
		compositeID,
		r.Timestamp(),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
	}
	for _, s := range l.Static {
		row = append(row, strconv.FormatInt(int64(r.Static[s]), 10))
	}
	if l.GPSTime {
		gps := ""
		if r.GPSTime != nil {
			gps = r.GPSTime.Format(tlg.TimeLayout)
		}
		row = append(row, gps)
	}
	for _, c := range l.Columns {
		if v, ok := r.Values[c.Name]; ok {
			row = append(row, v.String())
		} else {
			row = append(row, "")
		}
	}
	return row
}

// WriteTaskCSV writes one log to <dir>/<tag>-<logID>.csv. An existing file is
// appended to without repeating the header.
func WriteTaskCSV(dir, sourceTag string, e merge.LogEntry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, SafeName(sourceTag+"-"+e.LogID)+".csv")
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return "", statErr
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(Header(e.TaskLog)); err != nil {
			return "", err
		}
	}
	for _, r := range e.Records {
		if err := w.Write(Row(e.CompositeID, e.TaskLog, r)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// WriteIndexCSV exports every decoded log of ix that has records.
func WriteIndexCSV(ix *merge.Index, dir string) ([]string, error) {
	var written []string
	seen := map[string]bool{}
	for _, t := range ix.Tasks() {
		for _, l := range t.Logs {
			if len(l.Records) == 0 || seen[l.CompositeID] {
				continue
			}
			seen[l.CompositeID] = true
			p, err := WriteTaskCSV(dir, t.SourceTag, l)
			if err != nil {
				return written, err
			}
			written = append(written, p)
		}
	}
	return written, nil
}
