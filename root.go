package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	"github.com/techagentng/healthtrack/views"
)

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "healthtrack",
		Short:         "Personal health records app",
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load()
	if err != nil {
		return err
	}
	s, store, err := newServer(cmd.Context(), conf)
	if err != nil {
		return err
	}
	defer store.Close()
	return s.Start(cmd.Context())
}

// NewRenderCmd creates the render command, which prints one view.
func NewRenderCmd() *cobra.Command {
	var page bool
	cmd := &cobra.Command{
		Use:       "render <view>",
		Short:     "Render a view to stdout",
		Long:      "Render a view against the configured store. Views: " + strings.Join(views.Names(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: views.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}
			seed, err := loadSeed(conf)
			if err != nil {
				return err
			}
			store, err := db.Open(conf, seed)
			if err != nil {
				return err
			}
			defer store.Close()
			return renderView(cmd, store, args[0], page)
		},
	}
	cmd.Flags().BoolVar(&page, "page", false, "print the full document instead of the content fragment")
	return cmd
}

func renderView(cmd *cobra.Command, state views.State, name string, full bool) error {
	router, err := views.NewRouter(state)
	if err != nil {
		return err
	}
	p, err := router.Navigate(cmd.Context(), name, nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if full {
		return router.WritePage(out, p)
	}
	_, err = io.WriteString(out, string(p.Content))
	return err
}
