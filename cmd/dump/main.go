// Command dump prints the governance contract state held in a chain-state
// LevelDB directory: the genesis identity, the auditor set and every SCORE
// deployment record.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/stjordanis/icon-service/governance"
	rpcgov "github.com/stjordanis/icon-service/rpc/governance"
	"github.com/stjordanis/icon-service/state"
)

type config struct {
	// StatePath is the chain-state LevelDB directory.
	StatePath string `env:"GOV_STATE_PATH"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(fmt.Errorf("parse environment: %w", err))
	}

	rootCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump governance contract state from a chain-state directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path, _ := cmd.Flags().GetString("path"); path != "" {
				cfg.StatePath = path
			}
			if cfg.StatePath == "" {
				return fmt.Errorf("missing chain-state path (--path or GOV_STATE_PATH)")
			}
			return dump(cmd, cfg.StatePath)
		},
	}
	rootCmd.Flags().String("path", "", "Chain-state LevelDB directory")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dump(cmd *cobra.Command, path string) error {
	db, err := state.OpenLevelDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := db.Snapshot()
	if err != nil {
		return err
	}
	ctx := state.NewReadOnlyContext(snapshot, 0)

	genesis, err := governance.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("read genesis: %w", err)
	}
	cmd.Printf("genesis: %s\n", genesis)

	auditors, err := governance.Auditors(ctx)
	if err != nil {
		return fmt.Errorf("read auditor set: %w", err)
	}
	cmd.Printf("auditors (%d):\n", len(auditors))
	for _, a := range auditors {
		cmd.Printf("  %s\n", a)
	}

	cmd.Println("deployment records:")
	return db.IteratePrefix(governance.RecordKeyPrefix(), func(key, value []byte) error {
		score, err := governance.ScoreFromRecordKey(key)
		if err != nil {
			return err
		}
		record, err := governance.DecodeRecord(value)
		if err != nil {
			return fmt.Errorf("decode record of %s: %w", score, err)
		}

		status := rpcgov.StatusFromContract(&governance.ScoreStatus{
			Current: record.Current,
			Next:    record.Next,
		})
		raw, err := json.Marshal(status)
		if err != nil {
			return err
		}
		cmd.Printf("  %s owner=%s %s\n", score, record.Owner, raw)
		return nil
	})
}
