package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain/text"
)

const contextTopK = 10

// catalogContext summarizes the live catalog for the generator's system
// prompt: the most frequent categories and tags, no fixed reply phrases.
func catalogContext(snap *catalog.Snapshot) string {
	if snap == nil {
		return ""
	}
	counts := make(map[string]int)
	for _, row := range snap.Rows {
		for _, c := range row.Product.Categories() {
			if n := text.Normalize(c); n != "" {
				counts[n]++
			}
		}
		for _, t := range row.Product.Tags() {
			if n := text.Normalize(t); n != "" {
				counts[n]++
			}
		}
	}
	if len(counts) == 0 {
		return ""
	}

	type freq struct {
		name string
		n    int
	}
	ranked := make([]freq, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, freq{name, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > contextTopK {
		ranked = ranked[:contextTopK]
	}

	names := make([]string, len(ranked))
	for i, f := range ranked {
		names[i] = f.name
	}
	return "CATEGORIAS_RELEVANTES=" + strings.Join(names, ", ")
}

// buildSystemPrompt assembles the generator instructions for one reply kind:
// faq, inscope, offtopic or smalltalk.
func buildSystemPrompt(kind, ctx, style, tone string) string {
	if style == "" {
		style = "Asesor de iluminación, respuestas breves y claras."
	}
	if tone == "" {
		tone = "cercano y profesional"
	}
	base := fmt.Sprintf("%s Tono: %s. No inventes especificaciones. Si faltan datos, pide 1 dato concreto.", style, tone)

	var rules []string
	switch kind {
	case "faq":
		rules = append(rules,
			"Modo FAQ: responde a la duda en 2-4 líneas, sin listar productos ni enlaces.",
			"Termina con 1 pregunta corta para avanzar (ej. uso, espacio, presupuesto).")
	case "offtopic":
		rules = append(rules,
			"Tema fuera de iluminación: redirige en 1 frase y termina con 1 pregunta para retomar iluminación.")
	case "inscope":
		rules = append(rules,
			"En tema de productos: da una micro-orientación (1 frase) y ofrece 1 pregunta de seguimiento (espacio de uso o presupuesto).")
	default:
		rules = append(rules,
			"Charla breve (1 frase) y conduce a la asesoría de iluminación con 1 pregunta simple.")
	}

	parts := []string{base}
	if ctx != "" {
		parts = append(parts, ctx)
	}
	parts = append(parts, "REGLAS:")
	for _, r := range rules {
		parts = append(parts, "- "+r)
	}
	return strings.Join(parts, "\n")
}
