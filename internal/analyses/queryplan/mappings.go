package queryplan

// Trigger keywords detect the need for a tool from the CONTENT of the
// objective and document, independent of the declared professional area.
// Terms are Portuguese-first since that is the primary user base.

var financeTriggers = []string{
	"custo", "investimento", "roi", "receita", "lucro", "ação", "ações",
	"bolsa", "faturamento", "preço", "cotação", "capital", "dividendo",
	"balanço", "dre", "valuation", "budget", "orçamento",
	"margem", "ebitda", "fluxo de caixa", "câmbio", "dólar", "selic",
	"inflação", "juros", "rendimento", "rentabilidade", "payback",
	"fundo imobiliário", "cdi", "ipca", "pib", "nasdaq", "ibovespa",
	"ticker", "ativo", "passivo", "patrimônio",
}

var medicalTriggers = []string{
	"estudo clínico", "protocolo clínico", "tratamento", "procedimento",
	"paciente", "eficácia", "efeito colateral", "terapia", "diagnóstico",
	"suplemento", "nutriente", "colágeno", "ácido hialurônico", "botox",
	"laser", "microagulhamento", "micropigmentação", "microblading",
	"sobrancelha", "dermato", "biomedicina", "fisiologia", "anatomia",
	"pele", "capilar", "tricologia", "peeling", "bioestimulador",
	"preenchimento", "lifting", "rejuvenescimento", "antienvelhecimento",
	"cicatrização", "regeneração", "stem cell", "vitamina", "hormônio",
	"metabolismo", "inflamação", "imunologia", "oncologia", "cardiologia",
}

var academicTriggers = []string{
	"artigo", "paper", "pesquisa", "estudo acadêmico", "tese",
	"metodologia", "algoritmo", "machine learning", "inteligência artificial",
	"framework", "benchmark", "revisão bibliográfica", "estado da arte",
	"inovação", "patent", "sistema", "arquitetura", "rede neural",
	"deep learning", "nlp", "computer vision", "iot", "blockchain",
	"robótica", "automação", "simulação", "modelagem", "otimização",
}

// English context terms per area, used for PubMed/ArXiv queries where
// English coverage is far better.
var areaEnglishTerms = map[string]string{
	"financeiro":  "finance investment market analysis",
	"juridico":    "legal law regulation compliance",
	"saude":       "healthcare medicine clinical protocol",
	"estetica":    "aesthetics beauty cosmetic dermatology",
	"educacao":    "education learning pedagogy methodology",
	"tecnologia":  "technology software engineering digital",
	"treinamento": "fitness training performance exercise",
	"protocolo":   "clinical protocol procedure treatment",
	"marketing":   "marketing strategy digital advertising",
	"engenharia":  "engineering design construction systems",
	"outro":       "professional analysis report",
}

// Portuguese context terms per area, mixed into web queries and used as a
// fallback focus topic.
var areaPortugueseContext = map[string]string{
	"financeiro":  "mercado financeiro investimentos",
	"juridico":    "legislação direito normas",
	"saude":       "saúde medicina protocolos",
	"estetica":    "estética beleza procedimentos",
	"educacao":    "educação ensino aprendizagem",
	"tecnologia":  "tecnologia software sistemas",
	"treinamento": "fitness treinamento performance",
	"protocolo":   "protocolo clínico método",
	"marketing":   "marketing digital vendas",
	"engenharia":  "engenharia projetos construção",
	"outro":       "",
}

// Areas whose base toolset already includes the respective tool, so a lack
// of trigger hits does not force-disable it.
var medicalAreas = map[string]bool{
	"saude":       true,
	"estetica":    true,
	"treinamento": true,
	"protocolo":   true,
}

var academicAreas = map[string]bool{
	"tecnologia": true,
	"engenharia": true,
	"educacao":   true,
}

var toolLabels = map[string]string{
	ToolWebSearch: "Busca Web (Tavily)",
	ToolPubMed:    "PubMed (artigos médicos/científicos)",
	ToolArxiv:     "ArXiv (papers acadêmicos)",
	ToolFinance:   "Cotações (dados financeiros em tempo real)",
}
