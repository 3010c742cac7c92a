package queryplan

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxFocusTopics  = 5
	maxWebQueries   = 6
	maxPaperQueries = 2
	maxQuoteQueries = 5
)

var (
	// Multi-word capitalized phrases: proper nouns, techniques, brands.
	keyPhrasePattern = regexp.MustCompile(`[A-ZÁÀÂÃÉÈÊÍÏÓÔÕÚÜÇ][a-záàâãéèêíïóôõúüç]+(?:\s+[A-ZÁÀÂÃÉÈÊÍÏÓÔÕÚÜÇ][a-záàâãéèêíïóôõúüç]+){1,4}`)

	usTickerPattern = regexp.MustCompile(`\$([A-Z]{2,5})\b`)
	brTickerPattern = regexp.MustCompile(`\b([A-Z]{4}[0-9]{1,2})\b`)
)

// Optimize turns the raw user intent into focus topics, per-tool query
// strategies, tool-activation overrides, and a markdown action plan.
// Pure string processing: no I/O, no randomness, same input same plan.
func Optimize(req Request) Plan {
	plan := Plan{ToolOverrides: map[string]bool{}}

	plan.FocusTopics = extractFocusTopics(req.Objective, req.DocumentText, req.Area)
	plan.Log = append(plan.Log, fmt.Sprintf("topics: %s", strings.Join(truncateAll(plan.FocusTopics, 60), "; ")))

	combined := req.Objective + " " + truncateRunes(req.DocumentText, 3000)

	financeHits := detectTriggers(combined, financeTriggers)
	medicalHits := detectTriggers(combined, medicalTriggers)
	academicHits := detectTriggers(combined, academicTriggers)

	// Content activates a tool even when the declared area would not.
	if len(financeHits) > 0 {
		plan.ToolOverrides[ToolFinance] = true
		plan.Log = append(plan.Log, "finance tool activated: "+strings.Join(head(financeHits, 3), ", "))
	}
	if len(medicalHits) > 0 {
		plan.ToolOverrides[ToolPubMed] = true
		plan.Log = append(plan.Log, "pubmed activated: "+strings.Join(head(medicalHits, 3), ", "))
	}
	if len(academicHits) > 0 {
		plan.ToolOverrides[ToolArxiv] = true
		plan.Log = append(plan.Log, "arxiv activated: "+strings.Join(head(academicHits, 3), ", "))
	}

	// No hits and an unrelated area: disable to save time and tokens.
	if len(financeHits) == 0 && req.Area != "financeiro" {
		setDefault(plan.ToolOverrides, ToolFinance, false)
	}
	if len(medicalHits) == 0 && !medicalAreas[req.Area] {
		setDefault(plan.ToolOverrides, ToolPubMed, false)
	}
	if len(academicHits) == 0 && !academicAreas[req.Area] {
		setDefault(plan.ToolOverrides, ToolArxiv, false)
	}

	priority := 1
	needsSearch := req.IncludeSearch || req.Mode == "free_form"

	if needsSearch {
		plan.Strategies = append(plan.Strategies, Strategy{
			Tool:      ToolWebSearch,
			Priority:  priority,
			Queries:   buildWebQueries(plan.FocusTopics, req.Area, req.Geolocation),
			Rationale: "Dados atuais, referências de mercado, tendências",
		})
		priority++
	}
	if plan.ToolOverrides[ToolPubMed] {
		plan.Strategies = append(plan.Strategies, Strategy{
			Tool:      ToolPubMed,
			Priority:  priority,
			Queries:   buildPaperQueries(plan.FocusTopics, req.Area, "clinical study"),
			Rationale: "Artigos científicos médicos para embasamento clínico",
		})
		priority++
	}
	if plan.ToolOverrides[ToolArxiv] {
		plan.Strategies = append(plan.Strategies, Strategy{
			Tool:      ToolArxiv,
			Priority:  priority,
			Queries:   buildPaperQueries(plan.FocusTopics, req.Area, "research"),
			Rationale: "Papers acadêmicos para fundamentação técnica",
		})
		priority++
	}
	if plan.ToolOverrides[ToolFinance] {
		plan.Strategies = append(plan.Strategies, Strategy{
			Tool:      ToolFinance,
			Priority:  priority,
			Queries:   buildFinanceQueries(plan.FocusTopics, req.DocumentText),
			Rationale: "Dados financeiros em tempo real (cotações, balanços)",
		})
		priority++
	}

	plan.ActionPlanMD = formatActionPlan(plan, req.SourceCount)
	return plan
}

// detectTriggers returns the triggers present in the text, longest first so
// compound terms win over their substrings.
func detectTriggers(text string, triggers []string) []string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	ordered := make([]string, len(triggers))
	copy(ordered, triggers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})

	var hits []string
	for _, t := range ordered {
		if strings.Contains(lowered, t) {
			hits = append(hits, t)
		}
	}
	return hits
}

// extractKeyPhrases pulls capitalized multi-word phrases from the first
// 3000 characters of the text.
func extractKeyPhrases(text string, maxPhrases int) []string {
	if text == "" {
		return nil
	}

	var phrases []string
	seen := map[string]bool{}
	window := truncateRunes(text, 3000)
	for _, loc := range keyPhrasePattern.FindAllStringIndex(window, -1) {
		// Reject mid-word matches like "Phone Pro Max" inside
		// "iPhone Pro Max". RE2's \b is ASCII-only, so the boundary
		// check has to be rune-aware to keep accented initials.
		if !atWordBoundary(window, loc[0], loc[1]) {
			continue
		}
		match := window[loc[0]:loc[1]]
		key := strings.ToLower(match)
		if seen[key] || len(match) <= 5 {
			continue
		}
		seen[key] = true
		phrases = append(phrases, match)
		if len(phrases) >= maxPhrases {
			break
		}
	}
	return phrases
}

// atWordBoundary reports whether s[start:end] is delimited by non-letter,
// non-digit runes (or the ends of s).
func atWordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractFocusTopics combines the user objective, key phrases from the
// document, and an area-context fallback into at most five topics.
func extractFocusTopics(objective, documentText, area string) []string {
	var topics []string

	objClean := strings.TrimSpace(objective)
	if objClean != "" {
		topics = append(topics, truncateRunes(objClean, 150))
	}

	if documentText != "" {
		for _, kp := range extractKeyPhrases(documentText, maxFocusTopics) {
			if !strings.Contains(strings.ToLower(objClean), strings.ToLower(kp)) {
				topics = append(topics, kp)
			}
			if len(topics) >= 4 {
				break
			}
		}
	}

	if len(topics) < 2 && area != "" {
		if ctx := areaPortugueseContext[area]; ctx != "" {
			topics = append(topics, strings.TrimSpace(truncateRunes(objClean, 60)+" "+ctx))
		}
	}

	if len(topics) > maxFocusTopics {
		topics = topics[:maxFocusTopics]
	}
	return topics
}

func buildWebQueries(topics []string, area, geolocation string) []string {
	areaCtx := areaPortugueseContext[area]
	geo := geolocation
	if geo == "" {
		geo = "Brasil"
	}
	year := strconv.Itoa(time.Now().UTC().Year())

	var queries []string
	for _, topic := range head(topics, 3) {
		queries = append(queries, truncateRunes(strings.TrimSpace(topic+" "+areaCtx+" "+year), 200))
		queries = append(queries, truncateRunes(topic+" "+geo+" tendências dados atuais", 200))
	}
	if len(queries) > maxWebQueries {
		queries = queries[:maxWebQueries]
	}
	return queries
}

// buildPaperQueries targets PubMed/ArXiv, preferring English context terms.
func buildPaperQueries(topics []string, area, suffix string) []string {
	enCtx := areaEnglishTerms[area]
	var queries []string
	for _, topic := range head(topics, maxPaperQueries) {
		queries = append(queries, truncateRunes(strings.TrimSpace(topic+" "+enCtx+" "+suffix), 150))
	}
	return queries
}

// buildFinanceQueries extracts US ($AAPL) and B3 (PETR4) tickers, falling
// back to generic stock-market queries when none are present.
func buildFinanceQueries(topics []string, documentText string) []string {
	allText := strings.Join(topics, " ") + " " + truncateRunes(documentText, 2000)

	var queries []string
	for _, m := range usTickerPattern.FindAllStringSubmatch(allText, -1) {
		queries = append(queries, m[1])
	}
	for _, m := range brTickerPattern.FindAllStringSubmatch(allText, -1) {
		queries = append(queries, m[1])
	}

	if len(queries) == 0 {
		for _, topic := range head(topics, 2) {
			queries = append(queries, topic+" stock market")
		}
	}

	if len(queries) > maxQuoteQueries {
		queries = queries[:maxQuoteQueries]
	}
	return queries
}

func formatActionPlan(plan Plan, sourceCount int) string {
	if len(plan.Strategies) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## PLANO DE AÇÃO (otimizado automaticamente)\n\n")
	fmt.Fprintf(&b, "**Meta:** %d fontes/referências distintas\n", sourceCount)
	fmt.Fprintf(&b, "**Tópicos-foco:** %s\n\n", strings.Join(truncateAll(head(plan.FocusTopics, 3), 60), ", "))

	ordered := make([]Strategy, len(plan.Strategies))
	copy(ordered, plan.Strategies)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	for _, strat := range ordered {
		label := toolLabels[strat.Tool]
		if label == "" {
			label = strat.Tool
		}
		fmt.Fprintf(&b, "### PRIORIDADE %d: %s\n", strat.Priority, label)
		fmt.Fprintf(&b, "*%s*\n", strat.Rationale)
		if len(strat.Queries) > 0 {
			b.WriteString("**Queries otimizadas:**\n")
			for i, q := range strat.Queries {
				fmt.Fprintf(&b, "%d. %q\n", i+1, truncateRunes(q, 120))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("**INSTRUÇÕES DE EXECUÇÃO:**\n" +
		"- Execute buscas na ORDEM DE PRIORIDADE acima\n" +
		"- Use as queries otimizadas como ponto de partida\n" +
		"- Refine conforme resultados — se uma query não trouxer bons resultados, reformule\n" +
		"- Pare de buscar quando atingir a meta de fontes\n" +
		"- Cite a fonte de cada dado externo usado no relatório")

	return b.String()
}

func setDefault(m map[string]bool, key string, val bool) {
	if _, ok := m[key]; !ok {
		m[key] = val
	}
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func truncateAll(list []string, n int) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = truncateRunes(s, n)
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
