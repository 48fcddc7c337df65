package piechart

import "math"

// Wedge é uma fatia já posicionada no círculo
type Wedge struct {
	Index int     `json:"index"`
	Slice Slice   `json:"slice"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span retorna a abertura angular da fatia em graus
func (w Wedge) Span() float64 {
	return w.End - w.Start
}

// Path retorna o caminho SVG da fatia no raio externo
func (w Wedge) Path() string {
	return WedgePath(Center, OuterRadius, w.Start, w.End)
}

// Contains indica se o ângulo (a partir do topo) cai dentro da fatia
func (w Wedge) Contains(angle float64) bool {
	return angle >= w.Start && angle < w.End
}

// Layout posiciona as fatias na ordem recebida, começando às 12 horas e
// seguindo no sentido horário. Fatias com percentual <= 0 são ignoradas e
// não avançam o ângulo. Percentuais >= 100 ocupam FullCircleSpan (acima de
// 100 é entrada inválida e não dá mais de uma volta).
func Layout(slices []Slice) []Wedge {
	wedges := make([]Wedge, 0, len(slices))
	start := 0.0

	for _, s := range slices {
		if !s.drawable() {
			continue
		}

		span := s.Percent / 100 * 360
		if s.Percent >= 100 {
			span = FullCircleSpan
		}

		wedges = append(wedges, Wedge{
			Index: len(wedges),
			Slice: s,
			Start: start,
			End:   start + span,
		})
		start += span
	}

	return wedges
}

// HitTest retorna a fatia sob o ponto com todas as fatias em repouso. O furo
// central e a área fora do anel não pertencem a nenhuma fatia.
func HitTest(wedges []Wedge, p Point) (int, bool) {
	return HitTestScaled(wedges, p, nil)
}

// HitTestScaled considera a escala atual de cada fatia: uma fatia ampliada
// (selecionada ou em hover) recebe cliques até OuterRadius*escala. A escala
// é aplicada a partir do centro, então o ângulo não muda e o furo continua
// cobrindo o raio interno. scale nil equivale a RestScale para todas.
func HitTestScaled(wedges []Wedge, p Point, scale func(index int) float64) (int, bool) {
	dist := math.Hypot(p.X-Center.X, p.Y-Center.Y)
	if dist < InnerRadius {
		return NoWedge, false
	}

	angle := AngleFromTop(Center, p)
	for _, w := range wedges {
		if !w.Contains(angle) {
			continue
		}
		outer := OuterRadius
		if scale != nil {
			outer *= scale(w.Index)
		}
		if dist > outer {
			return NoWedge, false
		}
		return w.Index, true
	}
	return NoWedge, false
}
