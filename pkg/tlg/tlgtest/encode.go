// Package tlgtest builds binary logs and their XML headers for tests.
package tlgtest

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type Entry struct {
	Index uint8
	Value int32
}

// Record mirrors the binary layout. Static must match the header's logged
// C..G flags; GPS is written only when non-nil.
type Record struct {
	Ms      uint32
	Days    uint32
	Lat     int32
	Lon     int32
	Static  []int32
	GPS     *[2]uint32
	Entries []Entry
}

type DLV struct {
	DDI     string
	Element string
}

func Encode(recs ...Record) []byte {
	var out []byte
	le := binary.LittleEndian
	for _, r := range recs {
		out = le.AppendUint32(out, r.Ms)
		out = le.AppendUint32(out, r.Days)
		out = le.AppendUint32(out, uint32(r.Lat))
		out = le.AppendUint32(out, uint32(r.Lon))
		for _, s := range r.Static {
			out = le.AppendUint32(out, uint32(s))
		}
		if r.GPS != nil {
			out = le.AppendUint32(out, r.GPS[0])
			out = le.AppendUint32(out, r.GPS[1])
		}
		out = append(out, byte(len(r.Entries)))
		for _, e := range r.Entries {
			out = append(out, e.Index)
			out = le.AppendUint32(out, uint32(e.Value))
		}
	}
	return out
}

// Header renders a log header. flags lists the logged PTN attribute letters,
// e.g. "ABCD".
func Header(flags string, dlvs ...DLV) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<TIM A=\"\" D=\"4\">\n  <PTN")
	for _, f := range flags {
		fmt.Fprintf(&b, ` %c=""`, f)
	}
	b.WriteString("/>\n")
	for _, d := range dlvs {
		fmt.Fprintf(&b, "  <DLV A=%q B=\"\" C=%q/>\n", d.DDI, d.Element)
	}
	b.WriteString("</TIM>\n")
	return b.String()
}

// WriteLog writes <logID>.xml and <logID>.bin into dir.
func WriteLog(t testing.TB, dir, logID, header string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, logID+".xml"), []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, logID+".bin"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}
