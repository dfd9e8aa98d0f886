package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalbox/signalbox/pricing"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models and their per-token pricing",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := pricing.New()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPROVIDER\tINPUT/1K\tOUTPUT/1K\tCONTEXT\tNOTES")
			for _, model := range calc.Models() {
				p, ok := calc.Pricing(model)
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t$%.5f\t$%.5f\t%d\t%s\n",
					p.ModelID, p.Provider, p.InputCostPer1K, p.OutputCostPer1K,
					p.ContextWindow, p.Notes)
			}
			return tw.Flush()
		},
	}
}
