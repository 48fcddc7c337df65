package middleware

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// SanitizeConfig controla a limpeza de texto livre vindo do cliente
type SanitizeConfig struct {
	MaxStringLength int // em runes; 0 não limita
	AllowHTML       bool
}

func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{MaxStringLength: 10000}
}

// TaskFieldConfig é usado nos campos de tarefa e evento. O texto é
// devolvido como JSON e a extensão o escapa ao exibir.
func TaskFieldConfig() SanitizeConfig {
	return SanitizeConfig{MaxStringLength: 500, AllowHTML: true}
}

const maxIDLength = 128

var invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.@-]`)

// SanitizeString remove caracteres de controle (inclusive \x00), apara
// espaços, escapa HTML quando não permitido e trunca em MaxStringLength.
func SanitizeString(input string, cfg SanitizeConfig) string {
	s := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input))

	if !cfg.AllowHTML {
		s = html.EscapeString(s)
	}
	if cfg.MaxStringLength > 0 {
		if runes := []rune(s); len(runes) > cfg.MaxStringLength {
			s = string(runes[:cfg.MaxStringLength])
		}
	}
	return s
}

// SanitizeFields aplica SanitizeString em cada campo, no lugar
func SanitizeFields(cfg SanitizeConfig, fields ...*string) {
	for _, f := range fields {
		*f = SanitizeString(*f, cfg)
	}
}

// SanitizeID remove tudo que não pode aparecer em um ID de usuário ou tarefa
func SanitizeID(id string) string {
	id = invalidIDChars.ReplaceAllString(strings.TrimSpace(id), "")
	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}
	return id
}
