// Command piechart desenha o gráfico de categorias a partir de arquivos JSON,
// usando o mesmo renderer da API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "piechart",
		Short:        "Renderiza o gráfico de categorias do TimelyAI",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
