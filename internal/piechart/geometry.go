package piechart

import (
	"fmt"
	"math"
	"strconv"
)

// Superfície lógica do gráfico
const (
	Width           = 300
	Height          = 300
	OuterRadius     = 140.0
	InnerRadius     = 70.0
	BackgroundColor = "#ffffff"

	// FullCircleSpan substitui 360° numa fatia de 100%: com 360° o ponto
	// inicial e final do arco coincidem e o caminho não é desenhado.
	FullCircleSpan = 359.999
)

// Center é o centro do gráfico
var Center = Point{X: 150, Y: 150}

// Point é uma coordenada retangular na superfície
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PolarToCartesian converte (raio, ângulo em graus no sentido horário a partir
// do topo) em coordenada retangular
func PolarToCartesian(center Point, radius, angleDeg float64) Point {
	rad := (angleDeg - 90) * math.Pi / 180
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y + radius*math.Sin(rad),
	}
}

// AngleFromTop é o inverso de PolarToCartesian para o ângulo, em [0, 360)
func AngleFromTop(center, p Point) float64 {
	deg := math.Atan2(p.Y-center.Y, p.X-center.X)*180/math.Pi + 90
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// WedgePath monta o atributo "d" de uma fatia: centro -> início do arco ->
// arco até o fim -> centro
func WedgePath(center Point, radius, startAngle, endAngle float64) string {
	start := PolarToCartesian(center, radius, startAngle)
	end := PolarToCartesian(center, radius, endAngle)

	largeArc := 0
	if endAngle-startAngle > 180 {
		largeArc = 1
	}

	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		coord(center.X), coord(center.Y),
		coord(start.X), coord(start.Y),
		coord(radius), coord(radius),
		largeArc,
		coord(end.X), coord(end.Y))
}

// coord arredonda para 4 casas e evita "-0" na saída
func coord(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
