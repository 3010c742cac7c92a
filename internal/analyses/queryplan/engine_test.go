package queryplan

import (
	"reflect"
	"strings"
	"testing"
)

func TestOptimizeFinanceTriggerActivatesQuoteTool(t *testing.T) {
	req := Request{
		Objective:     "avaliar risco deste contrato",
		Area:          "financeiro",
		Mode:          "document",
		DocumentText:  "O contrato prevê reajuste pela cotação do dólar.",
		SourceCount:   5,
		IncludeSearch: true,
	}

	plan := Optimize(req)

	if !plan.ToolOverrides[ToolFinance] {
		t.Fatal("expected finance tool override to be true")
	}
	if len(plan.FocusTopics) == 0 || plan.FocusTopics[0] != "avaliar risco deste contrato" {
		t.Fatalf("expected objective as first focus topic, got %v", plan.FocusTopics)
	}
}

func TestOptimizeFinanceTriggerOverridesUnrelatedArea(t *testing.T) {
	req := Request{
		Objective:     "plano de aula sobre roi de campanhas",
		Area:          "educacao",
		Mode:          "document",
		SourceCount:   3,
		IncludeSearch: true,
	}

	plan := Optimize(req)

	if !plan.ToolOverrides[ToolFinance] {
		t.Fatal("finance trigger in text must activate the tool regardless of area")
	}
}

func TestOptimizeDisablesToolsWithoutHitsOrMatchingArea(t *testing.T) {
	req := Request{
		Objective:     "melhorar atendimento ao cliente",
		Area:          "marketing",
		Mode:          "document",
		SourceCount:   5,
		IncludeSearch: true,
	}

	plan := Optimize(req)

	for _, tool := range []string{ToolFinance, ToolPubMed, ToolArxiv} {
		if plan.ToolOverrides[tool] {
			t.Fatalf("expected %s disabled, overrides=%v", tool, plan.ToolOverrides)
		}
	}
}

func TestOptimizeMedicalAreaKeepsPubMedUndecided(t *testing.T) {
	req := Request{
		Objective:     "protocolo de microagulhamento facial",
		Area:          "estetica",
		Mode:          "document",
		SourceCount:   5,
		IncludeSearch: true,
	}

	plan := Optimize(req)

	if !plan.ToolOverrides[ToolPubMed] {
		t.Fatal("medical trigger should activate pubmed")
	}
	var found bool
	for _, s := range plan.Strategies {
		if s.Tool == ToolPubMed && len(s.Queries) > 0 {
			found = true
			if len(s.Queries) > 2 {
				t.Fatalf("pubmed queries capped at 2, got %d", len(s.Queries))
			}
		}
	}
	if !found {
		t.Fatal("expected a pubmed strategy with queries")
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	req := Request{
		Objective:     "expandir clínica de estética para São Paulo",
		Area:          "estetica",
		Mode:          "document",
		DocumentText:  "A Clínica Bela Vida oferece tratamento com Ácido Hialurônico e avaliação de custo por paciente.",
		Geolocation:   "São Paulo",
		Language:      "pt-BR",
		SourceCount:   5,
		IncludeSearch: true,
	}

	first := Optimize(req)
	second := Optimize(req)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("optimizer must be deterministic for identical input")
	}
}

func TestOptimizeTickerExtraction(t *testing.T) {
	req := Request{
		Objective:     "analisar carteira com $AAPL e PETR4 considerando cotação atual",
		Area:          "financeiro",
		Mode:          "free_form",
		SourceCount:   5,
		IncludeSearch: false,
	}

	plan := Optimize(req)

	var quotes []string
	for _, s := range plan.Strategies {
		if s.Tool == ToolFinance {
			quotes = s.Queries
		}
	}
	if len(quotes) == 0 {
		t.Fatal("expected finance strategy")
	}
	joined := strings.Join(quotes, " ")
	if !strings.Contains(joined, "AAPL") || !strings.Contains(joined, "PETR4") {
		t.Fatalf("expected tickers in queries, got %v", quotes)
	}
}

func TestOptimizeFreeFormAlwaysSearches(t *testing.T) {
	plan := Optimize(Request{
		Objective:   "tendências de mercado para barbearias",
		Area:        "outro",
		Mode:        "free_form",
		SourceCount: 4,
	})

	if len(plan.Strategies) == 0 || plan.Strategies[0].Tool != ToolWebSearch {
		t.Fatalf("free_form must include web search, got %+v", plan.Strategies)
	}
	if plan.ActionPlanMD == "" {
		t.Fatal("expected action plan markdown")
	}
	if !strings.Contains(plan.ActionPlanMD, "PRIORIDADE 1") {
		t.Fatalf("action plan missing priority header:\n%s", plan.ActionPlanMD)
	}
}

func TestOptimizeEmptyInputYieldsEmptyPlan(t *testing.T) {
	plan := Optimize(Request{Mode: "document"})

	if len(plan.FocusTopics) != 0 {
		t.Fatalf("expected no topics, got %v", plan.FocusTopics)
	}
	if len(plan.Strategies) != 0 {
		t.Fatalf("expected no strategies, got %v", plan.Strategies)
	}
	if plan.ActionPlanMD != "" {
		t.Fatal("expected empty action plan")
	}
}

func TestOptimizeAreaContextFallbackTopic(t *testing.T) {
	plan := Optimize(Request{
		Objective:     "crescer",
		Area:          "tecnologia",
		Mode:          "document",
		SourceCount:   5,
		IncludeSearch: true,
	})

	if len(plan.FocusTopics) < 2 {
		t.Fatalf("expected area-context fallback topic, got %v", plan.FocusTopics)
	}
	if !strings.Contains(plan.FocusTopics[1], "tecnologia software sistemas") {
		t.Fatalf("fallback topic missing area context: %v", plan.FocusTopics)
	}
}

func TestDetectTriggersLongestFirst(t *testing.T) {
	hits := detectTriggers("análise de fluxo de caixa e custo", financeTriggers)
	if len(hits) < 2 {
		t.Fatalf("expected multiple hits, got %v", hits)
	}
	if hits[0] != "fluxo de caixa" {
		t.Fatalf("longest trigger should come first, got %v", hits)
	}
}

func TestExtractKeyPhrasesDedupAndLimit(t *testing.T) {
	text := strings.Repeat("Clínica Bela Vida atende em São Paulo com a técnica Fio Russo. ", 4) +
		"Também Harmonização Facial e Limpeza Profunda e Peeling Quimico Avançado."
	phrases := extractKeyPhrases(text, 5)
	if len(phrases) == 0 || len(phrases) > 5 {
		t.Fatalf("expected 1..5 phrases, got %v", phrases)
	}
	seen := map[string]bool{}
	for _, p := range phrases {
		key := strings.ToLower(p)
		if seen[key] {
			t.Fatalf("duplicate phrase %q in %v", p, phrases)
		}
		seen[key] = true
	}
}

func TestExtractKeyPhrasesRespectsWordBoundaries(t *testing.T) {
	phrases := extractKeyPhrases("O lançamento do iPhone Pro Max dominou o mercado.", 5)
	for _, p := range phrases {
		if strings.HasPrefix(p, "Phone") {
			t.Fatalf("mid-word match %q extracted from camelCase token", p)
		}
	}

	phrases = extractKeyPhrases("Curso de Ética Profissional para gestores.", 5)
	found := false
	for _, p := range phrases {
		if p == "Ética Profissional" {
			found = true
		}
	}
	if !found {
		t.Fatalf("accent-initial phrase not extracted, got %v", phrases)
	}
}
