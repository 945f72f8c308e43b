package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fishsense/internal/app"
	"fishsense/internal/config"
	"fishsense/internal/logger"
	"fishsense/internal/model"
	"fishsense/internal/repository/sqlite"
	"fishsense/internal/service/remote"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the fishctl command tree.
func NewRootCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fishctl",
		Short: "Operate a FishSense capture station",
		Long: `fishctl runs the capture server and manages the local measurement store.

Examples:
  fishctl serve                                   # Start the capture server
  fishctl photos list --where 'fish_found'        # Records with a fish
  fishctl sync                                    # Upload every record
  fishctl register                                # Create the remote table`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newSyncCmd(cfg, log))
	rootCmd.AddCommand(newRegisterCmd(cfg, log))
	rootCmd.AddCommand(newPhotosCmd(cfg, log))
	rootCmd.AddCommand(newSchemaCmd())

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the capture server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			application, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", cfg.Port, "HTTP port")
	return cmd
}

func newSyncCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload every stored record to the collection endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := app.OpenLibrary(cfg, log)
			defer lib.Close()
			return report(cmd.OutOrStdout(), app.NewRemote(cfg, lib, log).SyncPhotos(cmd.Context()))
		},
	}
}

func newRegisterCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create the remote photos table for this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := app.OpenLibrary(cfg, log)
			defer lib.Close()
			return report(cmd.OutOrStdout(), app.NewRemote(cfg, lib, log).Register(cmd.Context()))
		},
	}
}

func report(w io.Writer, res remote.Result) error {
	fmt.Fprintln(w, res.Message)
	if !res.Success {
		return errors.New(res.Message)
	}
	return nil
}

func newPhotosCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Inspect the local measurement store",
	}

	var (
		where  string
		asJSON bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records, newest first",
		Example: `  fishctl photos list
  fishctl photos list --where 'fish_found && estimated_length > 0.3'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := app.OpenLibrary(cfg, log)
			defer lib.Close()

			photos, err := lib.Filter(where)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(photos)
			}
			printPhotos(cmd.OutOrStdout(), photos)
			return nil
		},
	}
	listCmd.Flags().StringVarP(&where, "where", "w", "", "Filter expression over record fields")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := app.OpenLibrary(cfg, log)
			defer lib.Close()
			if !lib.Available() {
				return fmt.Errorf("photo database at %s is not available", cfg.DatabasePath())
			}
			fmt.Fprintln(cmd.OutOrStdout(), lib.NumPhotos())
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete records without --yes")
			}
			lib := app.OpenLibrary(cfg, log)
			defer lib.Close()
			if err := lib.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All photos deleted")
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")

	cmd.AddCommand(listCmd, countCmd, clearCmd)
	return cmd
}

func printPhotos(w io.Writer, photos []model.PhotoProjection) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAKEN (UTC)\tFISH\tLENGTH\tDEPTH\tRGB")
	for _, p := range photos {
		length := "-"
		if p.FishFound {
			length = fmt.Sprintf("%.1fcm", p.EstimatedLength*100)
		}
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%dx%d\t%s\n",
			p.ID,
			time.Unix(p.UTCUnixTimestamp, 0).UTC().Format("2006-01-02 15:04:05"),
			p.FishFound,
			length,
			p.DepthWidth, p.DepthHeight,
			p.RGBPath,
		)
	}
	tw.Flush()
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "%d photos\n", len(photos))
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the local database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), strings.TrimLeft(sqlite.Schema, "\n"))
			return nil
		},
	}
}
