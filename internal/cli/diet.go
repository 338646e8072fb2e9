package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/paveg/linframe"
)

// Diet input files, all with a header row:
//
//	foods.csv           food,cost
//	nutrients.csv       category,min,max
//	food_nutrients.csv  food,category,amount
const (
	foodsFile         = "foods.csv"
	nutrientsFile     = "nutrients.csv"
	foodNutrientsFile = "food_nutrients.csv"
)

func newDietCommand() *cobra.Command {
	var dataDir, lpFile string

	cmd := &cobra.Command{
		Use:   "diet",
		Short: "Build the diet model from CSV files",
		Long: `Build the classic diet model: buy a non-negative amount of every food
so that each nutrient stays within its bounds, at minimum cost.

The data directory holds foods.csv, nutrients.csv and food_nutrients.csv.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := getLogger(cmd.Context())
			cfg := getConfig(cmd.Context())

			m, err := BuildDiet(dataDir)
			if err != nil {
				return err
			}
			logger.Debug("built model", "model", m.Name(), "variables", m.Allocator().Issued())

			printModel(cmd.OutOrStdout(), m)

			if lpFile != "" {
				if err := writeLPFile(m, lpFile); err != nil {
					return err
				}
				logger.Info("wrote LP file", "path", lpFile)
			}

			if cfg.MetricsCollection {
				printMetrics(cmd.OutOrStdout(), linframe.GetMetrics())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "Directory holding the diet CSV files")
	cmd.Flags().StringVar(&lpFile, "lp", "", "Write the model to this LP file")
	return cmd
}

func readCSV(dir, name string) (linframe.Source, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	src, err := linframe.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return src, nil
}

// BuildDiet reads the diet data in dir and builds the model.
func BuildDiet(dir string) (*linframe.Model, error) {
	foods, err := readCSV(dir, foodsFile)
	if err != nil {
		return nil, err
	}
	nutrients, err := readCSV(dir, nutrientsFile)
	if err != nil {
		return nil, err
	}
	amounts, err := readCSV(dir, foodNutrientsFile)
	if err != nil {
		return nil, err
	}

	cost, err := linframe.Param(foods)
	if err != nil {
		return nil, err
	}
	amount, err := linframe.Param(amounts)
	if err != nil {
		return nil, err
	}
	lower, err := linframe.Param(linframe.Select(nutrients, "category", "min"))
	if err != nil {
		return nil, err
	}
	upper, err := linframe.Param(linframe.Select(nutrients, "category", "max"))
	if err != nil {
		return nil, err
	}

	m := linframe.NewModel("diet")
	buy, err := m.NewVariable("Buy", linframe.Over(linframe.Select(foods, "food")), linframe.LowerBound(0))
	if err != nil {
		return nil, err
	}

	perFood, err := buy.Mul(amount)
	if err != nil {
		return nil, err
	}
	intake, err := perFood.Sum("food")
	if err != nil {
		return nil, err
	}

	atLeast, err := intake.GreaterEqual(lower)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddConstraint("min_nutrients", atLeast); err != nil {
		return nil, err
	}
	atMost, err := intake.LessEqual(upper)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddConstraint("max_nutrients", atMost); err != nil {
		return nil, err
	}

	spend, err := buy.Mul(cost)
	if err != nil {
		return nil, err
	}
	total, err := spend.Sum()
	if err != nil {
		return nil, err
	}
	if err := m.Minimize(total); err != nil {
		return nil, err
	}
	return m, nil
}

func printModel(w io.Writer, m *linframe.Model) {
	fmt.Fprintln(w, m.String())
	for _, c := range m.Constraints() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, c.String())
	}
	if obj := m.Objective(); obj != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, obj.String())
	}
}

func writeLPFile(m *linframe.Model, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return m.WriteLP(f)
}

func printMetrics(w io.Writer, s linframe.MetricsSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Operation", "Count"})
	for _, op := range s.Operations() {
		tw.AppendRow(table.Row{op, s.OperationCounts[op]})
	}
	tw.AppendFooter(table.Row{"Total", s.TotalOperations})
	fmt.Fprintln(w)
	tw.Render()
}
