// Command orderbook-collection ingests a snapshot file followed by an
// incremental update stream and prints the resulting order-book
// collection. It is the thin CLI shell around internal/feed; all of the
// matching-adjacent logic (the two book variants, the wire decoders, the
// file drivers) lives in internal/ and is unit-tested on its own.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ekrestinin/orderbook-collection/internal/config"
	"github.com/ekrestinin/orderbook-collection/internal/feed"
	"github.com/ekrestinin/orderbook-collection/internal/logging"
)

const (
	defaultSnapshotPath    = "orderbook_collection/resources/snapshot.bin"
	defaultIncrementalPath = "orderbook_collection/resources/incremental.bin"
	defaultConfigPath      = "orderbook_collection/config/test.yaml"
)

func main() {
	// Best-effort: a missing .env is not an error, matching
	// dotenvy::dotenv().ok() in the original's logger.rs.
	_ = godotenv.Load()

	var (
		snapshotPath    string
		incrementalPath string
		configPath      string
		useArray        bool
		logLevel        string
	)

	root := &cobra.Command{
		Use:   "orderbook-collection",
		Short: "orderbook collection usage.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(logLevel)
			defer log.Sync() //nolint:errcheck

			cfg, err := config.Load(configPath)
			if err != nil {
				log.Infow("using default config", "reason", err)
				cfg = config.Default()
			}
			log.Infow("config", "config", fmt.Sprintf("%+v", cfg))

			if useArray {
				log.Infow("using array orderbook")
				books, err := feed.RunArray(snapshotPath, incrementalPath, cfg, log)
				if err != nil {
					return err
				}
				log.Infow("order books", "books", fmt.Sprintf("%v", books))
			} else {
				log.Infow("using tree orderbook")
				books, err := feed.RunTree(snapshotPath, incrementalPath, cfg, log)
				if err != nil {
					return err
				}
				log.Infow("order books", "books", fmt.Sprintf("%v", books))
			}
			return nil
		},
	}

	root.Flags().StringVar(&snapshotPath, "snapshot", defaultSnapshotPath, "path to the snapshot file")
	root.Flags().StringVar(&incrementalPath, "incremental", defaultIncrementalPath, "path to the incremental update file")
	root.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.Flags().BoolVarP(&useArray, "use_array", "a", false, "use the dense array order book instead of the sparse tree order book")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
