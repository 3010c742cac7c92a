package llm

import (
	"fmt"
	"strings"
)

const (
	documentPreviewLimit    = 8000
	enhancementPreviewLimit = 10000
	maxEffectiveSources     = 5
)

// UserPromptInput carries the analysis context assembled into the user prompt.
type UserPromptInput struct {
	Mode         string
	Objective    string
	Area         string
	ReportType   string
	Geolocation  string
	SearchScope  string
	SourceCount  int
	Text         string
	ActionPlanMD string
}

// BuildUserPrompt renders the focused user prompt for the agent. The document
// text is truncated so the prompt stays inside the model context budget; the
// truncation is flagged so the agent can mention it.
func BuildUserPrompt(in UserPromptInput) string {
	effectiveSources := in.SourceCount
	if effectiveSources > maxEffectiveSources {
		effectiveSources = maxEffectiveSources
	}
	geo := in.Geolocation
	if geo == "" {
		geo = "Global"
	}
	area := in.Area
	if area == "" {
		area = "Geral"
	}

	var b strings.Builder

	switch in.Mode {
	case "free_form":
		b.WriteString("## ANÁLISE LIVRE\n\n")
		fmt.Fprintf(&b, "**Objetivo:** %s\n\n", in.Objective)
		fmt.Fprintf(&b, "**Área:** %s\n", area)
		fmt.Fprintf(&b, "**Relatório:** %s\n", in.ReportType)
		fmt.Fprintf(&b, "**Região:** %s\n", geo)
		fmt.Fprintf(&b, "**Fontes:** %d\n\n", effectiveSources)
		writeScope(&b, in.SearchScope)
		writeActionPlan(&b, in.ActionPlanMD)
		b.WriteString("Sem documento. Execute o plano acima de forma RÁPIDA e OBJETIVA. " +
			"Faça no máximo 3-4 buscas focadas, leia apenas os resultados mais " +
			"relevantes e produza o relatório completo.")

	case "enhancement":
		preview, truncated := truncateWithMarker(in.Text, enhancementPreviewLimit)
		b.WriteString("## DOCUMENTO PARA APRIMORAMENTO\n\n")
		b.WriteString(preview + truncated + "\n\n---\n\n")
		fmt.Fprintf(&b, "**Instruções:** %s\n", in.Objective)
		fmt.Fprintf(&b, "**Área:** %s\n", area)
		fmt.Fprintf(&b, "**Fontes:** %d\n\n", effectiveSources)
		writeActionPlan(&b, in.ActionPlanMD)
		b.WriteString("Aprimore o documento: faça 2-3 buscas focadas para enriquecer, " +
			"melhore estrutura e produza versão premium. Seja RÁPIDO e OBJETIVO.")

	default: // document / multi_document
		preview, truncated := truncateWithMarker(in.Text, documentPreviewLimit)
		isMulti := in.Mode == "multi_document"
		if isMulti {
			b.WriteString("## DOCUMENTOS\n\n")
		} else {
			b.WriteString("## DOCUMENTO\n\n")
		}
		b.WriteString(preview + truncated + "\n\n---\n\n")
		fmt.Fprintf(&b, "**Objetivo:** %s\n", in.Objective)
		fmt.Fprintf(&b, "**Área:** %s\n", area)
		fmt.Fprintf(&b, "**Relatório:** %s\n", in.ReportType)
		fmt.Fprintf(&b, "**Região:** %s\n", geo)
		fmt.Fprintf(&b, "**Fontes:** %d\n\n", effectiveSources)
		writeScope(&b, in.SearchScope)
		writeActionPlan(&b, in.ActionPlanMD)
		if isMulti {
			b.WriteString("Múltiplos documentos: faça uma análise cruzada integrada.\n\n")
		}
		b.WriteString("Execute o plano de forma RÁPIDA: faça 2-4 buscas focadas " +
			"(se busca habilitada), analise o documento e gere o relatório completo. " +
			"Priorize QUALIDADE sobre QUANTIDADE de buscas.")
	}

	return b.String()
}

func writeScope(b *strings.Builder, scope string) {
	if scope != "" {
		fmt.Fprintf(b, "**Escopo:** %s\n\n", scope)
	}
}

func writeActionPlan(b *strings.Builder, plan string) {
	if plan != "" {
		fmt.Fprintf(b, "---\n\n%s\n\n---\n\n", plan)
	}
}

func truncateWithMarker(text string, limit int) (string, string) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, ""
	}
	return string(runes[:limit]), "\n[... truncado ...]"
}
