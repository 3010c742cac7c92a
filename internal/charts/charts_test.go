package charts

import (
	"bytes"
	"strings"
	"testing"
)

const financeTable = `## Receita por segmento

| Segmento | Receita |
|----------|---------|
| Varejo   | R$ 120,5 |
| Atacado  | R$ 80   |
| Digital  | R$ 45,2 |
`

func TestGenerateDonutFromSmallTable(t *testing.T) {
	charts := Generate(financeTable)
	if len(charts) != 1 {
		t.Fatalf("charts = %d, want 1", len(charts))
	}
	c := charts[0]
	if c.Kind != "donut" {
		t.Fatalf("kind = %q, want donut", c.Kind)
	}
	if c.Title != "Receita" {
		t.Errorf("title = %q, want Receita", c.Title)
	}
	if len(c.Labels) != 3 || c.Labels[0] != "Varejo" {
		t.Errorf("labels = %v", c.Labels)
	}
	if c.Values[0] != 120.5 || c.Values[1] != 80 || c.Values[2] != 45.2 {
		t.Errorf("values = %v", c.Values)
	}
	if len(c.PNG) == 0 || !bytes.HasPrefix(c.PNG, []byte("\x89PNG")) {
		t.Error("chart did not render a PNG")
	}
}

func TestGenerateBarForNegativeValues(t *testing.T) {
	md := `| Trimestre | Resultado |
|---|---|
| T1 | 10 |
| T2 | -5 |
| T3 | 8 |
`
	charts := Generate(md)
	if len(charts) != 1 {
		t.Fatalf("charts = %d, want 1", len(charts))
	}
	if charts[0].Kind != "bar" {
		t.Errorf("kind = %q, want bar (negative value present)", charts[0].Kind)
	}
}

func TestGenerateBarForLargeTable(t *testing.T) {
	var b strings.Builder
	b.WriteString("| Item | Valor |\n|---|---|\n")
	for i := 0; i < 9; i++ {
		b.WriteString("| Item")
		b.WriteByte(byte('A' + i))
		b.WriteString(" | 10 |\n")
	}
	charts := Generate(b.String())
	if len(charts) != 1 {
		t.Fatalf("charts = %d, want 1", len(charts))
	}
	if charts[0].Kind != "bar" {
		t.Errorf("kind = %q, want bar (more than 6 rows)", charts[0].Kind)
	}
}

func TestGenerateDonutFromPercentList(t *testing.T) {
	md := `Distribuição atual:
- Renda fixa: 60%
- Ações: 30%
- Caixa: 10%
`
	charts := Generate(md)
	if len(charts) != 1 {
		t.Fatalf("charts = %d, want 1", len(charts))
	}
	c := charts[0]
	if c.Kind != "donut" {
		t.Errorf("kind = %q, want donut", c.Kind)
	}
	if c.Title != "Distribuição" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Values[0] != 60 || c.Values[2] != 10 {
		t.Errorf("values = %v", c.Values)
	}
}

func TestGenerateBarFromPlainList(t *testing.T) {
	md := `- Filial Norte: 120
- Filial Sul: 95
`
	charts := Generate(md)
	if len(charts) != 1 {
		t.Fatalf("charts = %d, want 1", len(charts))
	}
	if charts[0].Kind != "bar" {
		t.Errorf("kind = %q, want bar (no percent values)", charts[0].Kind)
	}
	if charts[0].Title != "Comparativo" {
		t.Errorf("title = %q", charts[0].Title)
	}
}

func TestGenerateCapsAtFourCharts(t *testing.T) {
	one := "- A: 10%\n- B: 20%\n\n"
	charts := Generate(strings.Repeat(one, 6))
	if len(charts) != 4 {
		t.Fatalf("charts = %d, want 4", len(charts))
	}
}

func TestGenerateIgnoresTextTables(t *testing.T) {
	md := `| Nome | Cargo |
|---|---|
| Ana | Diretora |
| Bia | Analista |
`
	if charts := Generate(md); len(charts) != 0 {
		t.Fatalf("charts = %d, want 0 for non-numeric table", len(charts))
	}
}

func TestGenerateEmptyMarkdown(t *testing.T) {
	if charts := Generate(""); len(charts) != 0 {
		t.Fatalf("charts = %d, want 0", len(charts))
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"120", 120, true},
		{"R$ 1.234,5", 1234.5, true},
		{"45,2", 45.2, true},
		{"87%", 87, true},
		{"-3.5", -3.5, true},
		{"n/a", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDrawDeterministic(t *testing.T) {
	a := Generate(financeTable)
	b := Generate(financeTable)
	if !bytes.Equal(a[0].PNG, b[0].PNG) {
		t.Error("same input produced different PNG bytes")
	}
}
