// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/anatomy-mapper/internal/learn"
	"github.com/pdiddy/anatomy-mapper/internal/match"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm [body part] [mesh]",
	Short: "Record that a body part correctly resolved to a mesh",
	Long: `Confirm teaches the matcher: the recorded association boosts that
mesh's score on future local matches for the same phrase and side.
Confirmations are additive and weight-capped; there is no retraction.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfirm,
}

func runConfirm(cmd *cobra.Command, args []string) error {
	sideFlag, _ := cmd.Flags().GetString("side")
	side := types.ParseSide(sideFlag)

	cfg := appConfig()
	base, err := loadKnowledge(cfg)
	if err != nil {
		return err
	}

	store, err := learn.Open(cfg.Learning)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := match.NewEngine(base, store, cfg)
	if err := engine.ConfirmMatch(args[0], side, args[1]); err != nil {
		return err
	}

	fmt.Printf("Confirmed %q -> %q\n", args[0], args[1])
	if cfg.Learning.DBPath == "" {
		fmt.Println("Note: no learning.db_path configured; this confirmation is not persisted.")
	}
	return nil
}

func init() {
	confirmCmd.Flags().String("side", "", "side qualifier: left or right")

	rootCmd.AddCommand(confirmCmd)
}
