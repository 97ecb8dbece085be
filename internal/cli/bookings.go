package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cityparkhub/parkctl/internal/booking"
)

func newBookCmd(get func() *app) *cobra.Command {
	var (
		spotID   int
		dateStr  string
		startStr string
		endStr   string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a parking spot for a time window",
		Long: `Book a parking spot on a calendar date. Give either an end time or a
duration in hours; the other is derived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := booking.NewDraft(spotID)

			date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
			}
			draft.Date = date

			start, err := booking.ParseTimeOfDay(startStr)
			if err != nil {
				return err
			}

			switch {
			case endStr != "":
				end, err := booking.ParseTimeOfDay(endStr)
				if err != nil {
					return err
				}
				draft.SetTimes(start, end)
			case duration > 0:
				draft.SetStart(start)
				draft.SetDuration(duration)
			default:
				return fmt.Errorf("either --end or --duration is required")
			}

			created, err := get().bookings.Submit(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Booking #%d confirmed: %s\n", created.ID, renderWindow(created))
			return nil
		},
	}

	cmd.Flags().IntVar(&spotID, "spot", 0, "parking spot id")
	cmd.Flags().StringVar(&dateStr, "date", "", "calendar date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&startStr, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&endStr, "end", "", "end time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in whole hours, instead of --end")
	return cmd
}

func newBookingsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List and manage your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			bookings, err := get().bookings.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSPOT\tWHEN\tHOURS\tSTATUS")
			for i := range bookings {
				b := &bookings[i]
				fmt.Fprintf(w, "%d\t%d\t%s\t%.0f\t%s\n",
					b.ID, b.ParkingSpaceID, renderWindow(b), b.DurationHours, b.Status)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := get().bookings.Cancel(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking #%d cancelled.\n", id)
			return nil
		},
	})

	var hours int
	extend := &cobra.Command{
		Use:   "extend <booking-id>",
		Short: "Extend a booking by whole hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			updated, err := get().bookings.Extend(cmd.Context(), id, hours)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking #%d now runs %s\n", updated.ID, renderWindow(updated))
			return nil
		},
	}
	extend.Flags().IntVar(&hours, "hours", 1, "additional hours")
	cmd.AddCommand(extend)

	return cmd
}

// renderWindow formats a booking's time range for display, in local time.
func renderWindow(b *booking.Booking) string {
	start := b.StartTime.Local()
	end := b.EndTime.Local()
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return fmt.Sprintf("%s %s-%s", start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid booking id %q", s)
	}
	return id, nil
}
