package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/view"
)

func newListCmd() *cobra.Command {
	var (
		query       string
		eventFilter string
		yearFilter  string
		groupBy     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		Example: `  # Everything, grouped by year
  cardfolio list --group year

  # Search within one event
  cardfolio list --event "Fan Meeting" -q "special"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, kv, err := openLocalManager(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			groups := mgr.View(view.Options{
				Query:       query,
				EventFilter: eventFilter,
				YearFilter:  yearFilter,
				GroupBy:     view.GroupBy(groupBy),
			})

			total := 0
			for _, g := range groups {
				if g.Key != view.KeyAll {
					fmt.Printf("%s\n", g.Key)
				}
				for _, r := range g.Records {
					have := " "
					if r.Have {
						have = "x"
					}
					date := r.PurchaseDate
					if date == "" {
						date = "----------"
					}
					fmt.Printf("  [%s] %s  %s", have, date, r.Title)
					if r.Event != "" {
						fmt.Printf("  (%s)", r.Event)
					}
					fmt.Printf("  %s\n", r.ID)
					total++
				}
			}
			fmt.Printf("%d record(s)\n", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Free text search")
	cmd.Flags().StringVar(&eventFilter, "event", "", "Only records from this event")
	cmd.Flags().StringVar(&yearFilter, "year", "", "Only records from this year")
	cmd.Flags().StringVarP(&groupBy, "group", "g", "none", "Group by: none, year, event, date, week, month")

	return cmd
}
