package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a printable view of one translation table.
type Table struct {
	Name string
	Rows [][2]string
}

// Tables lists every native-to-shared translation the adapters apply.
func Tables() []Table {
	var textRows [][2]string
	for _, r := range SlitherTextRules {
		textRows = append(textRows, [2]string{
			strings.Join(r.Needles, " + "),
			fmt.Sprintf("%s / %s / %.2f", r.Type, r.Severity, r.Confidence),
		})
	}
	return []Table{
		{Name: "slither check -> type", Rows: sortedRows(SlitherCheckTypes)},
		{Name: "slither impact -> severity", Rows: sortedRows(SlitherImpacts)},
		{Name: "slither confidence -> confidence", Rows: sortedRows(SlitherConfidences)},
		{Name: "slither text line -> type / severity / confidence", Rows: textRows},
		{Name: "mythril swc -> type", Rows: sortedRows(MythrilSWCTypes)},
		{Name: "mythril severity -> severity", Rows: sortedRows(MythrilSeverities)},
	}
}

func sortedRows[V any](m map[string]V) [][2]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(m[k])})
	}
	return rows
}
