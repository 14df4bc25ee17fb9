package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/model"
)

func runCmd() *cobra.Command {
	var (
		envName    string
		reportType string
		persist    bool
	)

	cmd := &cobra.Command{
		Use:   "run <case_id>",
		Short: "Run one case's saved step tree to completion and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid case_id %q: %w", args[0], err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			runner := caserun.New(st, logger)
			res, err := runner.Run(ctx, caseID, caserun.Options{
				EnvName:    envName,
				ReportType: model.ReportType(reportType),
				Persist:    persist,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.Success {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "environment name to resolve against")
	cmd.Flags().StringVar(&reportType, "report-type", string(model.ReportTypeSync), "report type to save when --persist is set")
	cmd.Flags().BoolVar(&persist, "persist", false, "save a Report/Detail row set for this run")

	return cmd
}
