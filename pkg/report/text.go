package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText prints the report in its indented console form.
func WriteText(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "--- Agricultural Task Report ---")
	fmt.Fprintln(bw)
	for _, farm := range r.Farms {
		fmt.Fprintf(bw, "FARM: %s\n", farm.Name)
		for _, y := range farm.Years {
			fmt.Fprintf(bw, "\n  YEAR: %s\n", y.Year)
			for _, f := range y.Fields {
				fmt.Fprintf(bw, "    FIELD: %s\n", f.Name)
				for _, t := range f.Tasks {
					fmt.Fprintf(bw, "      TASK: %s\n", t.TaskID)
					fmt.Fprintf(bw, "        Time: %s\n", t.TimeRange())
					fmt.Fprintf(bw, "        Crop: %s\n", t.Crop)
					fmt.Fprintf(bw, "        Machine: %s\n", t.Machine)
					tlgs := "None"
					if len(t.TLGs) > 0 {
						tlgs = strings.Join(t.TLGs, ", ")
					}
					fmt.Fprintf(bw, "        TLG Files: %s\n", tlgs)
					if len(t.Properties) > 0 {
						fmt.Fprintln(bw, "        Registered Properties (Totals):")
						for _, p := range t.Properties {
							fmt.Fprintf(bw, "          - %s\n", p)
						}
					}
					fmt.Fprintln(bw)
				}
			}
		}
	}
	return bw.Flush()
}
