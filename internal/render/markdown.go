package render

import (
	"regexp"
	"strings"
)

type blockKind int

const (
	blockBlank blockKind = iota
	blockHeading
	blockRule
	blockQuote
	blockBullet
	blockNumber
	blockTable
	blockParagraph
)

type block struct {
	kind  blockKind
	level int        // heading level 1..4
	text  string     // heading, bullet, number, paragraph
	lines []string   // quote lines
	rows  [][]string // table rows, separator removed
}

var (
	numberedLine   = regexp.MustCompile(`^\d+\.\s+(.+)`)
	tableSepCell   = regexp.MustCompile(`^[-:]+$`)
	boldItalicPat  = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	boldPat        = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italicPat      = regexp.MustCompile(`\*(.+?)\*|_(.+?)_`)
	linkPat        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	codePat        = regexp.MustCompile("`(.+?)`")
	inlineSpanPat  = regexp.MustCompile("\\*\\*\\*(.+?)\\*\\*\\*|\\*\\*(.+?)\\*\\*|__(.+?)__|\\*(.+?)\\*|_(.+?)_|\\[([^\\]]+)\\]\\(([^)]+)\\)|`(.+?)`")
	bareURLPattern = regexp.MustCompile(`https?://[^\s)>\]]+`)
)

// parseBlocks classifies the markdown line by line into renderable blocks.
func parseBlocks(markdown string) []block {
	var blocks []block
	lines := strings.Split(markdown, "\n")

	var tableRows [][]string
	var quoteLines []string
	flushTable := func() {
		if len(tableRows) > 0 {
			blocks = append(blocks, block{kind: blockTable, rows: tableRows})
			tableRows = nil
		}
	}
	flushQuote := func() {
		if len(quoteLines) > 0 {
			blocks = append(blocks, block{kind: blockQuote, lines: quoteLines})
			quoteLines = nil
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" {
			flushTable()
			flushQuote()
			blocks = append(blocks, block{kind: blockBlank})
			continue
		}

		if strings.HasPrefix(line, ">") {
			flushTable()
			quoteLines = append(quoteLines, strings.TrimSpace(strings.TrimLeft(line, "> ")))
			continue
		}
		flushQuote()

		if strings.HasPrefix(line, "|") && strings.Contains(line[1:], "|") {
			cells := splitTableCells(line)
			if !isSeparatorRow(cells) {
				tableRows = append(tableRows, cells)
			}
			continue
		}
		flushTable()

		switch {
		case strings.HasPrefix(line, "#### "):
			blocks = append(blocks, block{kind: blockHeading, level: 4, text: cleanInline(line[5:])})
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, block{kind: blockHeading, level: 3, text: cleanInline(line[4:])})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, block{kind: blockHeading, level: 2, text: cleanInline(line[3:])})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, block{kind: blockHeading, level: 1, text: cleanInline(line[2:])})
		case line == "---" || line == "***" || line == "___":
			blocks = append(blocks, block{kind: blockRule})
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			blocks = append(blocks, block{kind: blockBullet, text: line[2:]})
		default:
			if m := numberedLine.FindStringSubmatch(line); m != nil {
				blocks = append(blocks, block{kind: blockNumber, text: m[1]})
			} else {
				blocks = append(blocks, block{kind: blockParagraph, text: line})
			}
		}
	}
	flushTable()
	flushQuote()

	return blocks
}

func splitTableCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		c = strings.TrimSpace(c)
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !tableSepCell.MatchString(c) {
			return false
		}
	}
	return true
}

type tocEntry struct {
	level int
	text  string
}

// tocEntries collects the second and third level headings for the summary.
func tocEntries(markdown string) []tocEntry {
	var entries []tocEntry
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "### "):
			entries = append(entries, tocEntry{level: 3, text: cleanInline(line[4:])})
		case strings.HasPrefix(line, "## "):
			entries = append(entries, tocEntry{level: 2, text: cleanInline(line[3:])})
		}
	}
	return entries
}

// cleanInline strips the markdown emphasis and link syntax, leaving text.
func cleanInline(text string) string {
	text = boldItalicPat.ReplaceAllString(text, "$1")
	text = boldPat.ReplaceAllString(text, "$1$2")
	text = italicPat.ReplaceAllString(text, "$1$2")
	text = linkPat.ReplaceAllString(text, "$1")
	text = codePat.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

type span struct {
	text   string
	bold   bool
	italic bool
	code   bool
	href   string
}

// parseSpans splits a line into styled runs for formats that support
// inline styling.
func parseSpans(text string) []span {
	var spans []span
	last := 0
	for _, loc := range inlineSpanPat.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, span{text: text[last:loc[0]]})
		}
		matched := func(i int) bool { return loc[2*i] >= 0 }
		group := func(i int) string { return text[loc[2*i]:loc[2*i+1]] }
		switch {
		case matched(1):
			spans = append(spans, span{text: group(1), bold: true, italic: true})
		case matched(2):
			spans = append(spans, span{text: group(2), bold: true})
		case matched(3):
			spans = append(spans, span{text: group(3), bold: true})
		case matched(4):
			spans = append(spans, span{text: group(4), italic: true})
		case matched(5):
			spans = append(spans, span{text: group(5), italic: true})
		case matched(6):
			spans = append(spans, span{text: group(6), href: group(7)})
		case matched(8):
			spans = append(spans, span{text: group(8), code: true})
		}
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, span{text: text[last:]})
	}
	return spans
}

// extractReferences pulls markdown links and bare URLs out of the report
// for the references sheet.
func extractReferences(markdown string) []Reference {
	var refs []Reference
	seen := map[string]bool{}
	for _, m := range linkPat.FindAllStringSubmatch(markdown, -1) {
		if !seen[m[2]] {
			seen[m[2]] = true
			refs = append(refs, Reference{Title: m[1], URL: m[2]})
		}
	}
	for _, url := range bareURLPattern.FindAllString(markdown, -1) {
		url = strings.TrimRight(url, ".,;")
		if !seen[url] {
			seen[url] = true
			refs = append(refs, Reference{Title: url, URL: url})
		}
	}
	return refs
}
