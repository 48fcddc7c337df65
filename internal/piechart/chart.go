package piechart

import "sync"

// NoWedge indica clique fora de qualquer fatia (furo central, fundo)
const NoWedge = -1

// State é o estado de seleção do gráfico
type State int

const (
	// Idle: nenhuma fatia selecionada
	Idle State = iota
	// Selected: uma fatia selecionada com overlay central visível
	Selected
)

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "idle"
}

// Chart é uma instância interativa do gráfico ligada a uma Surface.
// Render descarta todo o estado anterior; a última chamada vence.
type Chart struct {
	mu       sync.Mutex
	surface  Surface
	wedges   []Wedge
	goals    Goals
	selected int
	hovered  map[int]bool
}

// NewChart cria um gráfico em Idle sobre a superfície
func NewChart(surface Surface) *Chart {
	return &Chart{
		surface:  surface,
		selected: NoWedge,
		hovered:  make(map[int]bool),
	}
}

// Render redesenha o gráfico por completo e volta para Idle
func (c *Chart) Render(slices []Slice, goals Goals) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.surface.Clear()

	c.wedges = Layout(slices)
	c.goals = goals.clone()
	c.selected = NoWedge
	c.hovered = make(map[int]bool)

	for _, w := range c.wedges {
		c.surface.DrawWedge(w)
	}

	// Furo depois das fatias para cobrir a parte interna de todas
	c.surface.DrawHole(Center, InnerRadius, BackgroundColor)
}

// Click aplica um clique na fatia index. Índices que não correspondem a
// uma fatia desenhada contam como clique fora.
func (c *Chart) Click(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.click(index)
}

// ClickAt aplica um clique na coordenada p da superfície
func (c *Chart) ClickAt(p Point) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, _ := HitTestScaled(c.wedges, p, func(i int) float64 {
		return c.styleFor(i).Scale
	})
	c.click(index)
	return index
}

// PointerEnter destaca a fatia enquanto o ponteiro estiver sobre ela
func (c *Chart) PointerEnter(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isWedge(index) {
		return
	}
	c.hovered[index] = true
	c.applyStyle(index)
}

// PointerLeave desfaz o destaque de hover
func (c *Chart) PointerLeave(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isWedge(index) || !c.hovered[index] {
		return
	}
	delete(c.hovered, index)
	c.applyStyle(index)
}

// State retorna o estado atual
func (c *Chart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == NoWedge {
		return Idle
	}
	return Selected
}

// Selected retorna a fatia selecionada, se houver
func (c *Chart) Selected() (Wedge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == NoWedge {
		return Wedge{}, false
	}
	return c.wedges[c.selected], true
}

// Wedges retorna uma cópia das fatias desenhadas
func (c *Chart) Wedges() []Wedge {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Wedge, len(c.wedges))
	copy(out, c.wedges)
	return out
}

func (c *Chart) click(index int) {
	c.clearSelection()
	if !c.isWedge(index) {
		return
	}

	c.selected = index
	c.applyStyle(index)
	c.surface.ShowOverlay(c.overlayFor(c.wedges[index]))
}

func (c *Chart) clearSelection() {
	if c.selected == NoWedge {
		return
	}
	prev := c.selected
	c.selected = NoWedge
	c.applyStyle(prev)
	c.surface.HideOverlay()
}

func (c *Chart) isWedge(index int) bool {
	return index >= 0 && index < len(c.wedges)
}

func (c *Chart) applyStyle(index int) {
	c.surface.SetWedgeStyle(index, c.styleFor(index))
}

// styleFor combina seleção e hover: hover nunca reduz a escala de seleção
func (c *Chart) styleFor(index int) WedgeStyle {
	style := WedgeStyle{Scale: RestScale}
	if c.selected == index {
		style.Scale = SelectedScale
	}
	if c.hovered[index] {
		if style.Scale < HoverScale {
			style.Scale = HoverScale
		}
		style.Brighten = true
	}
	return style
}

func (c *Chart) overlayFor(w Wedge) Overlay {
	o := Overlay{
		Label:   w.Slice.Label,
		Percent: w.Slice.Percent,
		Color:   w.Slice.Color,
	}
	if goal, ok := c.goals.Goal(w.Slice.Label); ok {
		o.Goal = goal
		o.HasGoal = true
	}
	return o
}
