package piechart

import "fmt"

// Escalas aplicadas às fatias
const (
	RestScale     = 1.0
	HoverScale    = 1.05
	SelectedScale = 1.08

	// HoverBrightness multiplica os canais RGB da fatia sob o ponteiro
	HoverBrightness = 1.2
)

// WedgeStyle é o estado visual de uma fatia
type WedgeStyle struct {
	Scale    float64 `json:"scale"`
	Brighten bool    `json:"brighten"`
}

// Overlay é o rótulo central exibido para a fatia selecionada
type Overlay struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
	Goal    float64 `json:"goal,omitempty"`
	HasGoal bool    `json:"has_goal"`
}

// PercentText retorna o texto principal ("40%")
func (o Overlay) PercentText() string {
	return FormatPercent(o.Percent) + "%"
}

// GoalText retorna o texto da meta ou "" quando não há meta
func (o Overlay) GoalText() string {
	if !o.HasGoal {
		return ""
	}
	return fmt.Sprintf("Goal: %s%%", FormatPercent(o.Goal))
}

// Surface é onde o gráfico é desenhado. A implementação pertence a quem
// hospeda o gráfico; o Chart é o único que a modifica.
type Surface interface {
	// Clear remove todos os elementos desenhados, inclusive o overlay
	Clear()
	// DrawWedge adiciona uma fatia preenchida com a cor da Slice
	DrawWedge(w Wedge)
	// DrawHole desenha o círculo que transforma a pizza em rosca
	DrawHole(center Point, radius float64, fill string)
	// SetWedgeStyle altera escala/brilho da fatia de índice index
	SetWedgeStyle(index int, style WedgeStyle)
	// ShowOverlay substitui o overlay central
	ShowOverlay(o Overlay)
	// HideOverlay remove o overlay central, se houver
	HideOverlay()
}
