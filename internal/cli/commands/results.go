package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/ui"
)

var errNoResultStore = errors.New("история недоступна: база данных не настроена (DB_HOST)")

func NewResultsCommand(env *Env) *cobra.Command {
	var limit int
	var only bool

	cmd := &cobra.Command{
		Use:   "results",
		Short: "История лечения селекторов и визуальных проверок",
	}
	cmd.PersistentFlags().IntVar(&limit, "limit", 20, "сколько последних записей показать")

	healingCmd := &cobra.Command{
		Use:   "healing",
		Short: "Последние действия через лечение селекторов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.Results == nil {
				return errNoResultStore
			}
			events, err := env.Results.ListHealingEvents(cmd.Context(), limit, only)
			if err != nil {
				return fmt.Errorf("чтение истории лечения: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, ui.ColorBold+ui.IconList+" Лечение селекторов: %d"+ui.ColorReset+"\n", len(events))
			for _, ev := range events {
				status := "original"
				switch {
				case ev.Error != "":
					status = "failed"
				case ev.Healed:
					status = "healed"
				}
				ui.PrintStatus(out, status, fmt.Sprintf("%s %s", ev.Action, ev.OriginalSelector))
				if ev.Healed {
					ui.PrintField(out, "Селектор", ev.HealedSelector)
				}
				ui.PrintField(out, "Стратегия", ev.Strategy)
				if ev.Error != "" {
					ui.PrintField(out, "Ошибка", ev.Error)
				}
				ui.PrintField(out, "Время", ev.CreatedAt.Format("2006-01-02 15:04:05")+" ("+ev.Duration().String()+")")
			}
			return nil
		},
	}
	healingCmd.Flags().BoolVar(&only, "healed", false, "только вылеченные")

	visualCmd := &cobra.Command{
		Use:   "visual",
		Short: "Последние визуальные проверки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.Results == nil {
				return errNoResultStore
			}
			results, err := env.Results.ListVisualResults(cmd.Context(), limit, only)
			if err != nil {
				return fmt.Errorf("чтение истории визуальных проверок: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, ui.ColorBold+ui.IconList+" Визуальные проверки: %d"+ui.ColorReset+"\n", len(results))
			for _, r := range results {
				status := "passed"
				switch {
				case !r.Passed:
					status = "failed"
				case r.Tolerated:
					status = "tolerated"
				}
				ui.PrintStatus(out, status, r.TestID)
				ui.PrintField(out, "Стратегия", r.Strategy)
				if r.DiffPixels > 0 {
					ui.PrintField(out, "Отличия", strconv.Itoa(r.DiffPixels)+" px ("+strconv.FormatFloat(r.DiffRatio*100, 'f', 2, 64)+"%)")
				}
				if r.ArtifactDir != "" {
					ui.PrintField(out, "Артефакты", r.ArtifactDir)
				}
			}
			return nil
		},
	}
	visualCmd.Flags().BoolVar(&only, "failed", false, "только проваленные")

	cmd.AddCommand(healingCmd, visualCmd)
	return cmd
}
