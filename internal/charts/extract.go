package charts

import (
	"regexp"
	"strconv"
	"strings"
)

type datasetKind int

const (
	datasetTable datasetKind = iota
	datasetList
)

type dataset struct {
	kind    datasetKind
	headers []string
	rows    [][]string
	items   []listItem
}

type listItem struct {
	label   string
	value   float64
	percent bool
}

var (
	tableSeparator = regexp.MustCompile(`^\|[\s\-:|]+\|$`)
	listItemLine   = regexp.MustCompile(`^[-*]\s+(.+?):\s*R?\$?\s*([\d.,]+)\s*(%)?`)
	numericCell    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// extractDatasets walks the markdown line by line and collects pipe tables
// with at least one numeric column plus bullet lists of "Label: value" pairs.
func extractDatasets(markdown string) []dataset {
	var datasets []dataset
	lines := strings.Split(markdown, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "|") && strings.Contains(line[1:], "|") {
			if i+1 < len(lines) && tableSeparator.MatchString(strings.TrimSpace(lines[i+1])) {
				headers := splitCells(line)
				i += 2
				var rows [][]string
				for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
					rows = append(rows, splitCells(strings.TrimSpace(lines[i])))
					i++
				}
				if len(headers) >= 2 && len(rows) > 0 && tableHasNumbers(rows) {
					datasets = append(datasets, dataset{kind: datasetTable, headers: headers, rows: rows})
				}
				continue
			}
		}

		if listItemLine.MatchString(line) {
			var items []listItem
			for i < len(lines) {
				m := listItemLine.FindStringSubmatch(strings.TrimSpace(lines[i]))
				if m == nil {
					break
				}
				if v, ok := parseNumber(m[2]); ok {
					items = append(items, listItem{
						label:   strings.TrimSpace(m[1]),
						value:   v,
						percent: m[3] == "%",
					})
				}
				i++
			}
			if len(items) >= 2 {
				datasets = append(datasets, dataset{kind: datasetList, items: items})
			}
			continue
		}

		i++
	}

	return datasets
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		c = strings.TrimSpace(c)
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func tableHasNumbers(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row[1:] {
			if _, ok := parseNumber(cell); ok {
				return true
			}
		}
	}
	return false
}

// parseNumber reads a cell value allowing currency prefixes, percent signs
// and Brazilian decimal commas ("R$ 1.234,5" -> 1234.5).
func parseNumber(s string) (float64, bool) {
	s = strings.NewReplacer("R$", "", "$", "", "%", "", " ", "", " ", "").Replace(s)
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; dots are thousand separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	if !numericCell.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
