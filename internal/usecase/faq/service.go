// Package faq answers company questions from a static table before the
// language generator is consulted.
package faq

import (
	"regexp"

	"github.com/faroled/faro/internal/domain/text"
)

// CompanyCard is the static company profile served on GET /faq.
type CompanyCard struct {
	Empresa   string `json:"empresa"`
	Mision    string `json:"mision"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
	Garantia  string `json:"garantia"`
}

// Service matches user questions against keyword rules.
type Service struct {
	card    CompanyCard
	answers map[string]string
	rules   []rule
}

type rule struct {
	answer   string
	patterns []*regexp.Regexp
}

// New creates the FAQ service with the built-in answer table.
func New(card CompanyCard) *Service {
	s := &Service{card: card, answers: faqAnswers}
	for _, r := range faqRules {
		compiled := rule{answer: r.key}
		for _, kw := range r.keywords {
			compiled.patterns = append(compiled.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		s.rules = append(s.rules, compiled)
	}
	return s
}

// Card returns the company profile.
func (s *Service) Card() CompanyCard { return s.card }

// TryAnswer returns a canned answer when the message matches a FAQ keyword
// rule. Second return is false when no rule matches and the generator should
// answer instead. Rules are checked in declaration order, first match wins.
func (s *Service) TryAnswer(message string) (string, bool) {
	norm := text.Normalize(message)
	if norm == "" {
		return "", false
	}
	for _, r := range s.rules {
		for _, p := range r.patterns {
			if p.MatchString(norm) {
				return s.answers[r.answer], true
			}
		}
	}
	return "", false
}

var faqAnswers = map[string]string{
	"garantia": "🛡️ Todos nuestros productos cuentan con 24 meses de garantía por defectos de fabricación. " +
		"Para hacerla válida debes presentar la factura original, el producto en su empaque con accesorios y catálogos. " +
		"El diagnóstico se realiza en máximo 15 días hábiles tras la reclamación. " +
		"Si el daño es de fábrica, se reemplaza por uno igual o similar (no se devuelve dinero).",
	"casos_sin_garantia": "❌ La garantía no aplica en casos de accidente, mal uso, instalación inadecuada, " +
		"condiciones anormales de operación, alteraciones, intentos de reparación, " +
		"desgaste normal o daños ocurridos en envío.",
	"cambio_producto": "🔄 Puedes solicitar cambio por otro producto diferente en máximo 5 días calendario después de la compra. " +
		"Debe estar sin usar, con empaque original, accesorios y catálogos, presentando la factura.",
	"plazo_reclamo": "📅 El plazo máximo de respuesta para una solicitud de garantía es de 15 días hábiles desde su recepción.",
	"politica_envios": "🚚 Realizamos envíos a todo el país. El tiempo estimado de entrega es de 2 a 5 días hábiles, " +
		"dependiendo de la ciudad y la transportadora.",
	"politica_devoluciones": "↩️ No realizamos devolución de dinero por garantía. " +
		"En caso de daño de fábrica comprobado, se cambia el producto por otro del mismo modelo o similar de igual valor.",
	"quienes_somos": "💡 Somos una empresa colombiana dedicada a soluciones de iluminación LED eficientes, " +
		"modernas y sostenibles, para hogares, oficinas, industria y alumbrado público.",
	"contacto": "📞 Puedes comunicarte con nosotros a través de nuestra página web " +
		"o en nuestras líneas de atención para soporte y garantías.",
}

// Order matters: the specific no-coverage rule must fire before the general
// warranty rule, and product exchange before refunds.
var faqRules = []struct {
	key      string
	keywords []string
}{
	{"casos_sin_garantia", []string{"no cubre", "cuando no", "casos sin garantia"}},
	{"garantia", []string{"garantia"}},
	{"plazo_reclamo", []string{"plazo", "cuanto tarda"}},
	{"politica_envios", []string{"envio", "envios", "enviar", "domicilio", "llega"}},
	{"politica_devoluciones", []string{"devolucion", "reembolso", "reembolsar"}},
	{"cambio_producto", []string{"cambiar", "cambio", "devolver"}},
	{"quienes_somos", []string{"quienes son", "empresa"}},
	{"contacto", []string{"contacto", "telefono", "correo", "atencion"}},
}
