package cmd

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"transfermap-backend/lib/configutil"
	"transfermap-backend/lib/osutil"
	"transfermap-backend/lib/scrapers/oscar"
	"transfermap-backend/lib/telemetry"
	"transfermap-backend/services/transfermap"
	transfermapdb "transfermap-backend/services/transfermap/db"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the full crawl: every school, every subject, sequentially.",
	Run: func(cobraCmd *cobra.Command, args []string) {
		ctx := osutil.SignalContext()

		config, err := configutil.ReadConfig[transfermap.Config](configPath)
		if err != nil && !os.IsNotExist(err) {
			osutil.Fatal("failed to read config", err)
		}
		config.ApplyDefaults()

		t, err := telemetry.SetupFromEnv(ctx, "transfermap")
		if err != nil {
			osutil.Fatal("failed to setup telemetry", err)
		}
		defer t.Shutdown(context.Background())

		err = os.MkdirAll(filepath.Dir(config.DatabasePath), 0777)
		if err != nil {
			osutil.Fatal("failed to create data directory", err)
		}
		database, err := sql.Open("sqlite", config.DatabasePath)
		if err != nil {
			osutil.Fatal("failed to open database", err)
		}
		defer database.Close()
		_, err = database.Exec(transfermapdb.Schema)
		if err != nil {
			osutil.Fatal("failed to apply database schema", err)
		}

		client, err := oscar.NewClient(config.ClientOptions())
		if err != nil {
			osutil.Fatal("failed to create scraper client", err)
		}

		service := transfermap.NewService(database, client, config)
		err = service.Run(ctx)
		if err != nil {
			osutil.Fatal("crawl failed", err)
		}
	},
}
