package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSpotsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spots",
		Short: "List parking spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			spots, err := get().spots.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tFREE\tTOTAL\t$/H\tRATING")
			for _, s := range spots {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.2f\t%.1f\n",
					s.ID, s.Name, s.Address, s.AvailableSpots, s.TotalSpots, s.PricePerHour, s.Rating)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "availability <spot-id>",
		Short: "Show fresh availability for one spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid spot id %q", args[0])
			}

			s, err := get().spots.Availability(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s — %s\n", s.Name, s.Address)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d spots free, %.2f/h\n", s.AvailableSpots, s.TotalSpots, s.PricePerHour)
			if s.Full() {
				fmt.Fprintln(cmd.OutOrStdout(), "Currently full.")
			}
			return nil
		},
	})

	return cmd
}
