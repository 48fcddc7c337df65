package piechart

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// OverlayGroupID é o id do grupo do rótulo central
const OverlayGroupID = "center-info-group"

type svgWedge struct {
	wedge Wedge
	style WedgeStyle
}

type svgHole struct {
	center Point
	radius float64
	fill   string
}

// SVGSurface guarda os elementos desenhados e os serializa como SVG
type SVGSurface struct {
	mu      sync.RWMutex
	wedges  []svgWedge
	hole    *svgHole
	overlay *Overlay
}

// NewSVGSurface cria uma superfície vazia
func NewSVGSurface() *SVGSurface {
	return &SVGSurface{}
}

// Clear implementa Surface
func (s *SVGSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wedges = nil
	s.hole = nil
	s.overlay = nil
}

// DrawWedge implementa Surface
func (s *SVGSurface) DrawWedge(w Wedge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wedges = append(s.wedges, svgWedge{wedge: w, style: WedgeStyle{Scale: RestScale}})
}

// DrawHole implementa Surface
func (s *SVGSurface) DrawHole(center Point, radius float64, fill string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hole = &svgHole{center: center, radius: radius, fill: fill}
}

// SetWedgeStyle implementa Surface
func (s *SVGSurface) SetWedgeStyle(index int, style WedgeStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.wedges) {
		return
	}
	s.wedges[index].style = style
}

// ShowOverlay implementa Surface
func (s *SVGSurface) ShowOverlay(o Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay = &o
}

// HideOverlay implementa Surface
func (s *SVGSurface) HideOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay = nil
}

// WedgeCount retorna o número de fatias desenhadas
func (s *SVGSurface) WedgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wedges)
}

// WedgeStyle retorna o estilo atual da fatia
func (s *SVGSurface) WedgeStyle(index int) (WedgeStyle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.wedges) {
		return WedgeStyle{}, false
	}
	return s.wedges[index].style, true
}

// Overlay retorna o overlay visível, se houver
func (s *SVGSurface) Overlay() (Overlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.overlay == nil {
		return Overlay{}, false
	}
	return *s.overlay, true
}

// HasHole indica se o furo central foi desenhado
func (s *SVGSurface) HasHole() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hole != nil
}

// String serializa a superfície
func (s *SVGSurface) String() string {
	var sb strings.Builder
	s.WriteTo(&sb)
	return sb.String()
}

// WriteTo escreve o documento SVG completo em w
func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		Width, Height, Width, Height))
	sb.WriteString("\n")

	for _, sw := range s.wedges {
		writeWedge(&sb, sw)
	}

	if s.hole != nil {
		sb.WriteString(fmt.Sprintf(`<circle id="donut-hole" cx="%s" cy="%s" r="%s" fill="%s"/>`,
			coord(s.hole.center.X), coord(s.hole.center.Y), coord(s.hole.radius), attr(s.hole.fill)))
		sb.WriteString("\n")
	}

	if s.overlay != nil {
		writeOverlay(&sb, *s.overlay)
	}

	sb.WriteString("</svg>\n")

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func writeWedge(sb *strings.Builder, sw svgWedge) {
	fill := sw.wedge.Slice.Color
	if sw.style.Brighten {
		fill = brighten(fill, HoverBrightness)
	}

	sb.WriteString(fmt.Sprintf(`<path id="wedge-%d" class="wedge" data-index="%d" data-label="%s" data-percent="%s" d="%s" fill="%s"`,
		sw.wedge.Index, sw.wedge.Index,
		attr(sw.wedge.Slice.Label), FormatPercent(sw.wedge.Slice.Percent),
		sw.wedge.Path(), attr(fill)))

	if sw.style.Scale != 0 && sw.style.Scale != RestScale {
		// Escala em torno do centro do gráfico
		sb.WriteString(fmt.Sprintf(` transform="translate(%s %s) scale(%s) translate(%s %s)"`,
			coord(Center.X), coord(Center.Y), coord(sw.style.Scale), coord(-Center.X), coord(-Center.Y)))
	}
	sb.WriteString("/>\n")
}

func writeOverlay(sb *strings.Builder, o Overlay) {
	color := attr(o.Color)
	sb.WriteString(fmt.Sprintf(`<g id="%s">`, OverlayGroupID))
	sb.WriteString(fmt.Sprintf(`<text x="150" y="140" text-anchor="middle" font-size="34" font-weight="bold" fill="%s">%s</text>`,
		color, html.EscapeString(o.PercentText())))
	sb.WriteString(fmt.Sprintf(`<text x="150" y="170" text-anchor="middle" font-size="18" font-weight="600" fill="%s">%s</text>`,
		color, html.EscapeString(o.Label)))
	if o.HasGoal {
		sb.WriteString(fmt.Sprintf(`<text x="150" y="190" text-anchor="middle" font-size="14" fill="#555">%s</text>`,
			html.EscapeString(o.GoalText())))
	}
	sb.WriteString("</g>\n")
}

// brighten equivale ao filtro CSS brightness(factor)
func brighten(hex string, factor float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}.Clamped().Hex()
}

func attr(v string) string {
	return html.EscapeString(v)
}
