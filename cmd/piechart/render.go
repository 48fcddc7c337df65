package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cleberrangel/timelyai-api/internal/piechart"
	"github.com/spf13/cobra"
)

var errUnknownLabel = errors.New("categoria não encontrada no gráfico")

type renderOptions struct {
	in       string
	goals    string
	out      string
	selected string
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Gera o SVG a partir de slices.json (e metas opcionais)",
		Long: `Lê uma lista de fatias [{"label","percent","color"}] e desenha o gráfico
de rosca em SVG. Cores ausentes usam a tabela de categorias. Com --select a
fatia informada já sai selecionada, com o rótulo central.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "Arquivo JSON com as fatias")
	cmd.Flags().StringVarP(&opts.goals, "goals", "g", "", "Arquivo JSON com as metas por categoria")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Arquivo SVG de saída (padrão: stdout)")
	cmd.Flags().StringVar(&opts.selected, "select", "", "Categoria a selecionar")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	slices, err := readSlices(opts.in)
	if err != nil {
		return err
	}

	var goals piechart.Goals
	if opts.goals != "" {
		if goals, err = readGoals(opts.goals); err != nil {
			return err
		}
	}

	surface := piechart.NewSVGSurface()
	chart := piechart.NewChart(surface)
	chart.Render(slices, goals)

	if opts.selected != "" {
		idx := wedgeIndex(chart.Wedges(), opts.selected)
		if idx == piechart.NoWedge {
			return fmt.Errorf("%w: %q", errUnknownLabel, opts.selected)
		}
		chart.Click(idx)
	}

	if opts.out == "" {
		_, err = surface.WriteTo(cmd.OutOrStdout())
		return err
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("criar %s: %w", opts.out, err)
	}
	if _, err := surface.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("escrever %s: %w", opts.out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "  %d fatias desenhadas em %s\n", surface.WedgeCount(), opts.out)
	return nil
}

func readSlices(path string) ([]piechart.Slice, error) {
	var slices []piechart.Slice
	if err := readJSON(path, &slices); err != nil {
		return nil, err
	}
	for i := range slices {
		if slices[i].Color == "" {
			slices[i].Color = piechart.ColorFor(slices[i].Label)
		}
	}
	return slices, nil
}

// readGoals aceita {"goals": {...}} (formato da API) ou o mapa direto
func readGoals(path string) (piechart.Goals, error) {
	var raw map[string]json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	goals := piechart.Goals{}
	if wrapped, ok := raw["goals"]; ok {
		if err := json.Unmarshal(wrapped, &goals); err != nil {
			return nil, fmt.Errorf("metas inválidas em %s: %w", path, err)
		}
		return goals, nil
	}

	for label, v := range raw {
		var pct float64
		if err := json.Unmarshal(v, &pct); err != nil {
			return nil, fmt.Errorf("meta inválida para %q: %w", label, err)
		}
		goals[label] = pct
	}
	return goals, nil
}

func readJSON(path string, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("abrir %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("JSON inválido em %s: %w", path, err)
	}
	return nil
}

func wedgeIndex(wedges []piechart.Wedge, label string) int {
	for _, w := range wedges {
		if w.Slice.Label == label {
			return w.Index
		}
	}
	return piechart.NoWedge
}
