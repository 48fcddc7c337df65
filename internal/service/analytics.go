package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/cache"
	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/piechart"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/google/uuid"
)

// CategoryTotal é a soma de horas de uma categoria
type CategoryTotal struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Percent  float64 `json:"percent"`
}

// SelectedWedge descreve a fatia selecionada no gráfico
type SelectedWedge struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	Percent float64  `json:"percent"`
	Goal    *float64 `json:"goal,omitempty"`
}

// ChartState é o estado de interação devolvido após clique/hover
type ChartState struct {
	State    string         `json:"state"`
	Wedges   int            `json:"wedges"`
	Selected *SelectedWedge `json:"selected,omitempty"`
}

// chartView é o gráfico de um usuário e a superfície SVG onde ele desenha
type chartView struct {
	chart   *piechart.Chart
	surface *piechart.SVGSurface
	loaded  atomic.Bool
}

// AnalyticsService agrega durações por categoria e mantém um gráfico por usuário
type AnalyticsService struct {
	tasks    TaskStore
	goals    GoalStore
	notifier Notifier
	charts   *cache.Cache[*chartView]
}

// NewAnalyticsService cria o serviço. Gráficos sem acesso por ttl são descartados.
func NewAnalyticsService(tasks TaskStore, goals GoalStore, notifier Notifier, ttl time.Duration) *AnalyticsService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AnalyticsService{
		tasks:    tasks,
		goals:    goals,
		notifier: notifier,
		charts:   cache.NewCache[*chartView](ttl),
	}
}

// Close para a limpeza do cache de gráficos
func (s *AnalyticsService) Close() {
	s.charts.Stop()
}

// ParseHours interpreta a duração como horas. "TBD" e textos não numéricos
// não contam.
func ParseHours(duration string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(duration), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// Totals soma as horas por categoria. Categorias conhecidas vêm primeiro na
// ordem fixa; as desconhecidas em seguida, em ordem alfabética. Categorias
// sem horas numéricas não aparecem.
func Totals(tasks []model.Task) []CategoryTotal {
	sums := make(map[string]float64)
	var total float64

	for _, t := range tasks {
		hours, ok := ParseHours(t.Duration)
		if !ok || hours == 0 {
			continue
		}
		category := t.Category
		if category == "" {
			category = model.DefaultCategory
		}
		sums[category] += hours
		total += hours
	}

	known := make(map[string]bool, len(model.Categories))
	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range model.Categories {
		known[c] = true
		if h, ok := sums[c]; ok {
			out = append(out, CategoryTotal{Category: c, Hours: h})
		}
	}

	var extra []string
	for c := range sums {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	for _, c := range extra {
		out = append(out, CategoryTotal{Category: c, Hours: sums[c]})
	}

	for i := range out {
		out[i].Percent = round1(out[i].Hours / total * 100)
	}
	return out
}

// BuildSlices monta as fatias do gráfico a partir das tarefas
func BuildSlices(tasks []model.Task) []piechart.Slice {
	totals := Totals(tasks)
	slices := make([]piechart.Slice, 0, len(totals))
	for _, t := range totals {
		slices = append(slices, piechart.NewSlice(t.Category, t.Percent))
	}
	return slices
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Slices retorna as fatias e metas atuais do usuário
func (s *AnalyticsService) Slices(ctx context.Context, userID string) ([]piechart.Slice, model.Goals, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	goals, err := s.goals.GetGoals(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return BuildSlices(tasks), goals, nil
}

func (s *AnalyticsService) view(userID string) *chartView {
	return s.charts.GetOrCreate(userID, func() *chartView {
		surface := piechart.NewSVGSurface()
		return &chartView{chart: piechart.NewChart(surface), surface: surface}
	})
}

// Refresh reconstrói as fatias, redesenha o gráfico e avisa o usuário via
// WebSocket. Falha ao buscar os dados limpa o gráfico.
func (s *AnalyticsService) Refresh(ctx context.Context, userID string) {
	ctx = logger.WithOperationID(ctx, uuid.New().String()[:8])
	log := logger.Get(ctx)

	v := s.view(userID)

	slices, goals, err := s.Slices(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("Falha ao carregar dados do gráfico, desenhando vazio")
		slices, goals = nil, nil
	}

	v.chart.Render(slices, piechart.Goals(goals))
	v.loaded.Store(true)
	metrics.Get().IncrementChartRendered(err == nil)

	wedges := len(v.chart.Wedges())
	log.Debug().Int("wedges", wedges).Msg("Gráfico redesenhado")

	s.notifier.Notify(userID, websocket.TypeChartUpdated, map[string]interface{}{
		"wedges": wedges,
		"slices": slices,
	})
}

func (s *AnalyticsService) loadedView(ctx context.Context, userID string) *chartView {
	v := s.view(userID)
	if !v.loaded.Load() {
		s.Refresh(ctx, userID)
	}
	s.charts.Touch(userID)
	return v
}

// SVG retorna o gráfico atual do usuário serializado
func (s *AnalyticsService) SVG(ctx context.Context, userID string) string {
	return s.loadedView(ctx, userID).surface.String()
}

// ClickAt aplica um clique na coordenada (x, y) do gráfico
func (s *AnalyticsService) ClickAt(ctx context.Context, userID string, x, y float64) ChartState {
	v := s.loadedView(ctx, userID)
	v.chart.ClickAt(piechart.Point{X: x, Y: y})
	metrics.Get().IncrementChartClick()
	return stateOf(v)
}

// ClickWedge aplica um clique na fatia de índice index
func (s *AnalyticsService) ClickWedge(ctx context.Context, userID string, index int) ChartState {
	v := s.loadedView(ctx, userID)
	v.chart.Click(index)
	metrics.Get().IncrementChartClick()
	return stateOf(v)
}

// Hover liga ou desliga o destaque de uma fatia
func (s *AnalyticsService) Hover(ctx context.Context, userID string, index int, active bool) ChartState {
	v := s.loadedView(ctx, userID)
	if active {
		v.chart.PointerEnter(index)
	} else {
		v.chart.PointerLeave(index)
	}
	metrics.Get().IncrementChartHover()
	return stateOf(v)
}

func stateOf(v *chartView) ChartState {
	st := ChartState{
		State:  v.chart.State().String(),
		Wedges: len(v.chart.Wedges()),
	}
	if w, ok := v.chart.Selected(); ok {
		sel := &SelectedWedge{Index: w.Index, Label: w.Slice.Label, Percent: w.Slice.Percent}
		if o, ok := v.surface.Overlay(); ok && o.HasGoal {
			g := o.Goal
			sel.Goal = &g
		}
		st.Selected = sel
	}
	return st
}
