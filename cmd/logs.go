package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shanchengnb/fire-egine-dispatch/config"
	simlog "github.com/shanchengnb/fire-egine-dispatch/core/sim/logging"
)

var (
	logsStart   int64
	logsEnd     int64
	logsVehicle int
	logsRisk    string
	logsFailed  bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the dispatch log store",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().Int64Var(&logsStart, "start", 0, "earliest timestamp, seconds")
	logsCmd.Flags().Int64Var(&logsEnd, "end", 0, "latest timestamp, seconds")
	logsCmd.Flags().IntVar(&logsVehicle, "vehicle", -1, "filter by vehicle id")
	logsCmd.Flags().StringVar(&logsRisk, "risk", "", "filter by risk level")
	logsCmd.Flags().BoolVar(&logsFailed, "failed", false, "only failed dispatches")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store simlog.LogStore
	switch cfg.DispatchLog.Backend {
	case "sqlite":
		store, err = simlog.NewSQLiteStore(cfg.DispatchLog.Path)
	default:
		store, err = simlog.NewJSONLStore(cfg.DispatchLog.Path)
	}
	if err != nil {
		return fmt.Errorf("open dispatch log: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := simlog.LogQuery{
		Start:      logsStart,
		End:        logsEnd,
		RiskLevel:  logsRisk,
		FailedOnly: logsFailed,
	}
	if logsVehicle >= 0 {
		v := logsVehicle
		q.VehicleID = &v
	}

	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
