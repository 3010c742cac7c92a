package llm

import (
	"embed"
	"strconv"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// DefaultReportType is used when the requested type has no template.
const DefaultReportType = "analitico"

// DefaultLanguage is used when the requested language has no template.
const DefaultLanguage = "pt-BR"

var languageInstructions = map[string]string{
	"pt-BR": "Responda INTEIRAMENTE em Português do Brasil. Use terminologia profissional brasileira.",
	"en":    "Respond ENTIRELY in English. Use professional business terminology.",
	"es":    "Responda COMPLETAMENTE en Español. Use terminología profesional.",
}

// reportTemplates maps report type to per-language template files. A type
// missing a language falls back to pt-BR; an unknown type falls back to the
// analytical template.
var reportTemplates = map[string]map[string]string{
	"analitico": {
		"pt-BR": "prompts/report_analitico_ptbr.txt",
		"en":    "prompts/report_analitico_en.txt",
		"es":    "prompts/report_analitico_es.txt",
	},
	"comparativo": {
		"pt-BR": "prompts/report_comparativo_ptbr.txt",
	},
	"resumo_executivo": {
		"pt-BR": "prompts/report_resumo_executivo_ptbr.txt",
	},
	"tecnico": {
		"pt-BR": "prompts/report_tecnico_ptbr.txt",
	},
	"parecer": {
		"pt-BR": "prompts/report_parecer_ptbr.txt",
	},
	"enhancement": {
		"pt-BR": "prompts/report_enhancement_ptbr.txt",
		"en":    "prompts/report_enhancement_en.txt",
	},
}

// PromptOptions selects the system prompt content.
type PromptOptions struct {
	Language         string
	Area             string
	ReportType       string
	Mode             string
	Geolocation      string
	MarketReferences bool
	SourceCount      int
	IncludeImages    bool
}

// BuildSystemPrompt assembles the agent system prompt from the embedded
// template blocks. Unknown report types and languages fall back to defaults
// rather than failing.
func BuildSystemPrompt(opts PromptOptions) string {
	lang := opts.Language
	if _, ok := languageInstructions[lang]; !ok {
		lang = DefaultLanguage
	}

	area := opts.Area
	if area == "" {
		area = "Geral"
	}

	marketRef := ""
	if opts.MarketReferences || opts.Mode == "free_form" {
		geoLine := "- Buscar referências globais"
		if opts.Geolocation != "" {
			geoLine = "- Foco em referências da região: " + opts.Geolocation
		}
		marketRef = strings.NewReplacer(
			"{{AREA}}", area,
			"{{GEO_LINE}}", geoLine,
			"{{SOURCE_COUNT}}", strconv.Itoa(opts.SourceCount),
		).Replace(mustPrompt("prompts/market_references.txt"))
	}

	modeInstruction := ""
	switch opts.Mode {
	case "multi_document":
		modeInstruction = mustPrompt("prompts/mode_multi_document.txt")
	case "free_form":
		modeInstruction = mustPrompt("prompts/mode_free_form.txt")
	case "enhancement":
		modeInstruction = mustPrompt("prompts/mode_enhancement.txt")
	}

	imageInstruction := ""
	if opts.IncludeImages {
		imageInstruction = mustPrompt("prompts/images.txt")
	}

	prompt := strings.NewReplacer(
		"{{LANG_INSTRUCTION}}", languageInstructions[lang],
		"{{AREA}}", area,
		"{{MODE_INSTRUCTION}}", modeInstruction,
		"{{REPORT_INSTRUCTION}}", reportTemplate(opts.ReportType, lang),
		"{{MARKET_REF_INSTRUCTION}}", marketRef,
		"{{IMAGE_INSTRUCTION}}", imageInstruction,
		"{{SOURCE_COUNT}}", strconv.Itoa(opts.SourceCount),
	).Replace(mustPrompt("prompts/system_base.txt"))

	return strings.TrimSpace(prompt)
}

func reportTemplate(reportType, lang string) string {
	perLang, ok := reportTemplates[reportType]
	if !ok {
		perLang = reportTemplates[DefaultReportType]
	}
	path, ok := perLang[lang]
	if !ok {
		path = perLang[DefaultLanguage]
	}
	return mustPrompt(path)
}

func mustPrompt(path string) string {
	data, err := promptFS.ReadFile(path)
	if err != nil {
		// Embedded files are part of the build; a miss is a programming error.
		panic("missing prompt template: " + path)
	}
	return strings.TrimSpace(string(data))
}
