package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cityparkhub/parkctl/internal/auth"
	"github.com/cityparkhub/parkctl/internal/booking"
	"github.com/cityparkhub/parkctl/internal/cache"
	"github.com/cityparkhub/parkctl/internal/config"
	"github.com/cityparkhub/parkctl/internal/gateway"
	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
	"github.com/cityparkhub/parkctl/internal/session"
	"github.com/cityparkhub/parkctl/internal/spot"
)

// app wires the client services together for the commands.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *session.Store
	auth     *auth.Service
	spots    *spot.Service
	bookings *booking.Service
}

// newApp loads configuration and initializes all modules.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	store := session.NewStore(cfg.SessionFile)

	gw, err := gateway.New(gateway.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		ListRetries: cfg.ListRetries,
		Logger:      log,
	}, store)
	if err != nil {
		return nil, err
	}

	shared := cache.New(cfg.CacheTTL)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		auth:     auth.NewService(gw, store, log),
		spots:    spot.NewService(gw, shared, log),
		bookings: booking.NewService(gw, shared, log, cfg.LocalKW),
	}, nil
}

// NewRootCmd builds the parkctl command tree.
func NewRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Browse parking spots and manage bookings from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
	}

	// The closure hands commands the app wired in PersistentPreRunE.
	get := func() *app { return a }

	root.AddCommand(
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newResetPasswordCmd(get),
		newSpotsCmd(get),
		newBookCmd(get),
		newBookingsCmd(get),
	)
	return root
}

// Execute runs the CLI and maps the error taxonomy onto exit behavior.
// Ctrl+C cancels the in-flight request's context; its late result is
// discarded rather than rendered.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// renderError turns an error into the message shown to the user. An
// unauthenticated failure is a login prompt, not a generic complaint.
func renderError(err error) string {
	if apperror.IsKind(err, apperror.KindUnauthenticated) {
		return fmt.Sprintf("Error: %v\nRun `parkctl login` to sign in.", err)
	}
	return fmt.Sprintf("Error: %v", err)
}
