package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/piechart"
	"github.com/cleberrangel/timelyai-api/internal/repository"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func task(category, duration string) model.Task {
	return model.Task{Category: category, Duration: duration}
}

func TestBuildSlicesOrderAndRounding(t *testing.T) {
	tasks := []model.Task{
		task("Zumba", "1"),
		task("Friends", "1"),
		task("School", "2"),
		task("", "1"),
		task("Clubs", "TBD"),
		task("Art", "1"),
		task("School", "abc"),
	}

	slices := BuildSlices(tasks)

	wantLabels := []string{"School", "Friends", "Other", "Art", "Zumba"}
	if len(slices) != len(wantLabels) {
		t.Fatalf("Expected %d slices, got %+v", len(wantLabels), slices)
	}
	for i, l := range wantLabels {
		if slices[i].Label != l {
			t.Errorf("Slice %d: expected %s, got %s", i, l, slices[i].Label)
		}
	}

	if slices[0].Percent != 33.3 || slices[1].Percent != 16.7 {
		t.Errorf("Unexpected rounding: %v %v", slices[0].Percent, slices[1].Percent)
	}
	if slices[0].Color != "#3CAE63" || slices[3].Color != piechart.FallbackColor {
		t.Errorf("Unexpected colors: %s %s", slices[0].Color, slices[3].Color)
	}
}

func TestBuildSlicesEmpty(t *testing.T) {
	if s := BuildSlices(nil); len(s) != 0 {
		t.Errorf("Expected no slices, got %v", s)
	}
	if s := BuildSlices([]model.Task{task("School", "TBD"), task("Clubs", "0")}); len(s) != 0 {
		t.Errorf("Tasks without hours must not produce slices, got %v", s)
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{" 1.5 ", 1.5, true},
		{"TBD", 0, false},
		{"", 0, false},
		{"-1", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseHours(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseHours(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

// For any set of positive durations, the rounded percentages add up to 100
// within the rounding error of one decimal per slice
func TestBuildSlicesPercentSum(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("percent sum is close to 100", prop.ForAll(
		func(hours []int) bool {
			var tasks []model.Task
			for i, h := range hours {
				tasks = append(tasks, model.Task{
					Category: model.Categories[i%len(model.Categories)],
					Duration: strconv.Itoa(h),
				})
			}

			slices := BuildSlices(tasks)
			if len(slices) == 0 {
				return true
			}

			sum := 0.0
			for _, s := range slices {
				sum += s.Percent
			}
			return math.Abs(sum-100) <= 0.05*float64(len(slices))+1e-9
		},
		gen.SliceOfN(8, gen.IntRange(1, 9)),
	))

	properties.TestingRun(t)
}

func TestAnalyticsChartFollowsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "alice", model.TaskDetails{Duration: "4", Category: "School"})
	f.create(t, "alice", model.TaskDetails{Duration: "3", Category: "Clubs"})
	f.create(t, "alice", model.TaskDetails{Duration: "3", Category: "Friends"})

	svg := f.analytics.SVG(ctx, "alice")
	if n := strings.Count(svg, `class="wedge"`); n != 3 {
		t.Errorf("Expected 3 wedges, got %d\n%s", n, svg)
	}

	// Outro usuário tem o próprio gráfico
	if n := strings.Count(f.analytics.SVG(ctx, "bob"), `class="wedge"`); n != 0 {
		t.Errorf("Expected empty chart for bob, got %d wedges", n)
	}
}

func TestAnalyticsClickAndGoals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "alice", model.TaskDetails{Duration: "4", Category: "School"})
	f.create(t, "alice", model.TaskDetails{Duration: "6", Category: "Clubs"})
	if _, err := f.goals.Save(ctx, "alice", model.Goals{"School": 35}); err != nil {
		t.Fatalf("Save goals failed: %v", err)
	}

	// 40% School ocupa [0,144); 100 unidades do centro a 60 graus cai nela
	p := piechart.PolarToCartesian(piechart.Center, 100, 60)
	st := f.analytics.ClickAt(ctx, "alice", p.X, p.Y)
	if st.State != "selected" || st.Selected == nil {
		t.Fatalf("Expected selection, got %+v", st)
	}
	if st.Selected.Label != "School" || st.Selected.Percent != 40 {
		t.Errorf("Unexpected selection %+v", st.Selected)
	}
	if st.Selected.Goal == nil || *st.Selected.Goal != 35 {
		t.Errorf("Expected goal 35, got %v", st.Selected.Goal)
	}

	st = f.analytics.ClickWedge(ctx, "alice", 1)
	if st.Selected == nil || st.Selected.Label != "Clubs" || st.Selected.Goal != nil {
		t.Errorf("Unexpected selection %+v", st.Selected)
	}
	if n := strings.Count(f.analytics.SVG(ctx, "alice"), piechart.OverlayGroupID); n != 1 {
		t.Errorf("Expected exactly one overlay, got %d", n)
	}

	st = f.analytics.ClickAt(ctx, "alice", piechart.Center.X, piechart.Center.Y)
	if st.State != "idle" || st.Selected != nil {
		t.Errorf("Click in the hole must return to idle, got %+v", st)
	}
}

func TestAnalyticsRefreshResetsSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "alice", model.TaskDetails{Duration: "1", Category: "School"})
	f.analytics.ClickWedge(ctx, "alice", 0)

	f.create(t, "alice", model.TaskDetails{Duration: "1", Category: "Hobbies"})

	st := f.analytics.Hover(ctx, "alice", 0, true)
	if st.State != "idle" || st.Wedges != 2 {
		t.Errorf("Expected idle chart with 2 wedges, got %+v", st)
	}
}

func TestAnalyticsFetchFailureClearsChart(t *testing.T) {
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	a := NewAnalyticsService(failingStore{store}, store, notifier, time.Minute)
	defer a.Close()

	a.Refresh(context.Background(), "alice")

	svg := a.SVG(context.Background(), "alice")
	if strings.Contains(svg, `class="wedge"`) {
		t.Error("Chart should be empty after fetch failure")
	}
	if !strings.Contains(svg, "donut-hole") {
		t.Error("Empty chart should still draw the hole")
	}
	if len(notifier.types()) != 1 {
		t.Errorf("Expected one chart_updated, got %v", notifier.types())
	}
}
