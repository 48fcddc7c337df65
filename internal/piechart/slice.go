// Package piechart desenha o gráfico de rosca (donut) de alocação de tempo
// por categoria e mantém o estado de seleção das fatias.
package piechart

import (
	"math"
	"strconv"
)

// FallbackColor é a cor neutra usada para categorias fora da tabela
const FallbackColor = "#999999"

// categoryColors é a tabela fixa de cores por categoria
var categoryColors = map[string]string{
	"School":  "#3CAE63",
	"Clubs":   "#FF9800",
	"Friends": "#2196F3",
	"Hobbies": "#9C27B0",
	"Other":   "#607D8B",
}

// Slice representa uma fatia do gráfico
type Slice struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
}

// Goals mapeia categoria -> percentual alvo. Apenas informativo.
type Goals map[string]float64

// ColorFor retorna a cor da categoria ou a cor neutra
func ColorFor(label string) string {
	if c, ok := categoryColors[label]; ok {
		return c
	}
	return FallbackColor
}

// NewSlice cria uma fatia com a cor da tabela
func NewSlice(label string, percent float64) Slice {
	return Slice{Label: label, Percent: percent, Color: ColorFor(label)}
}

// drawable reports whether the slice produces a wedge. NaN counts as zero.
func (s Slice) drawable() bool {
	return s.Percent > 0
}

// Goal retorna o percentual alvo da categoria, se existir
func (g Goals) Goal(label string) (float64, bool) {
	if g == nil {
		return 0, false
	}
	v, ok := g[label]
	return v, ok
}

func (g Goals) clone() Goals {
	if g == nil {
		return nil
	}
	out := make(Goals, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// FormatPercent formata um percentual sem zeros à direita (40 -> "40", 33.3 -> "33.3")
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
