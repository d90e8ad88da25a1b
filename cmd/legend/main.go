package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-legend/internal/db"
	"github.com/joeblew999/plat-legend/internal/logx"
	"github.com/joeblew999/plat-legend/internal/server"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/tui"
)

// Options defines all CLI flags and env vars for the legend server.
// Flags: --host, --port, --data-dir, --web-dir
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir string `doc:"Directory for layer catalog and data files" default:".data"`
	WebDir  string `doc:"Path to web/ directory" default:"web"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
		WebDir:  opts.WebDir,
		Logger:  logx.New(os.Stderr, log.InfoLevel),
	})
}

// openCatalog builds the offline service wiring the previews subcommand
// works against. The DuckDB handle may be nil.
func openCatalog(opts *Options) (*service.LayerService, *service.SourceBuilder, *sql.DB) {
	sources := service.NewSourceService(opts.DataDir)
	layers := service.NewLayerService(opts.DataDir)
	conn, err := db.Open(db.Config{DataDir: opts.DataDir, DBName: "legend"})
	if err != nil {
		log.Warn("duckdb unavailable, table-derived legends skipped", "err", err)
		conn = nil
	}
	return layers, service.NewSourceBuilder(sources, conn), conn
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			srv.Start(ctx)

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-legend API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Viewer:  %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatal("server error", "err", err)
			}
		})

		hooks.OnStop(func() {
			cancel()
			srv.Close()
		})
	})

	cli.Root().Use = "legend"
	cli.Root().Short = "Self-updating map legend engine"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts)
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// previews subcommand: export every legend entry as a PNG icon
	previewsCmd := &cobra.Command{
		Use:   "previews",
		Short: "Render the catalog's legend previews to PNG files",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			resolution, _ := cmd.Flags().GetFloat64("resolution")
			retina, _ := cmd.Flags().GetBool("retina")

			layers, builder, conn := openCatalog(opts)
			if conn != nil {
				defer conn.Close()
			}

			ctx := cmd.Context()
			content, defects := service.CollectLegend(ctx, layers, builder, resolution)
			for _, defect := range defects {
				fmt.Fprintf(os.Stderr, "warning: %v\n", defect)
			}
			if content.Empty() {
				fmt.Println("Nothing to export: no visible layer contributes legend entries.")
				return
			}

			previews := service.NewPreviewService(opts.DataDir, nil)
			files, renderDefects, err := previews.Export(ctx, content.Blocks, retina, func(done, total int, name string) {
				fmt.Printf("  [%d/%d] %s\n", done, total, name)
			})
			for _, defect := range renderDefects {
				fmt.Fprintf(os.Stderr, "warning: %v\n", defect)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting previews: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Exported %d file(s) to %s\n", len(files), previews.PreviewsDir())
		}),
	}
	previewsCmd.Flags().Float64("resolution", 100, "View resolution to collect the legend at")
	previewsCmd.Flags().BoolP("retina", "r", false, "Also export @2x variants")
	cli.Root().AddCommand(previewsCmd)

	// tui subcommand: interactive viewport simulator in the terminal
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Drive a legend panel interactively in the terminal",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			if err := tui.Run(opts.DataDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	cli.Root().AddCommand(tuiCmd)

	cli.Run()
}
