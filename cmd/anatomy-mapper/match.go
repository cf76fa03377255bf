// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/anatomy-mapper/internal/learn"
	"github.com/pdiddy/anatomy-mapper/internal/match"
	"github.com/pdiddy/anatomy-mapper/internal/secrets"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

var matchCmd = &cobra.Command{
	Use:   "match [body part]",
	Short: "Find the meshes matching a body-part phrase",
	Long: `Match resolves a free-text body-part phrase against a candidate mesh
list and prints the ranked matches with confidence scores.

Candidate meshes come from --meshes-file (one mesh name per line, the
format mesh exporters emit) or --meshes (comma-separated). With an
Anthropic API key configured the AI backend is tried first; otherwise
matching is fully local.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	bodyPart := strings.Join(args, " ")
	sideFlag, _ := cmd.Flags().GetString("side")
	side := types.ParseSide(sideFlag)

	candidates, err := candidateMeshes(cmd)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidate meshes: provide --meshes-file or --meshes")
	}

	cfg := appConfig()
	if cfg.AI.APIKey != "" {
		fmt.Fprintf(os.Stderr, "AI matching enabled (key %s)\n", secrets.Mask(cfg.AI.APIKey))
	}

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
	results, err := engine.FindMatchingMeshes(context.Background(), bodyPart, candidates, side)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatMatchOutput(results, jsonOutput)
}

func candidateMeshes(cmd *cobra.Command) ([]string, error) {
	meshesFile, _ := cmd.Flags().GetString("meshes-file")
	meshesFlag, _ := cmd.Flags().GetString("meshes")

	var candidates []string
	if meshesFile != "" {
		f, err := os.Open(meshesFile)
		if err != nil {
			return nil, fmt.Errorf("reading mesh list %s: %w", meshesFile, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				candidates = append(candidates, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading mesh list %s: %w", meshesFile, err)
		}
	}
	for _, m := range strings.Split(meshesFlag, ",") {
		if m = strings.TrimSpace(m); m != "" {
			candidates = append(candidates, m)
		}
	}
	return candidates, nil
}

func formatMatchOutput(results []types.MeshMatch, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No confident mapping found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-10s  %s\n", "Rank", "Mesh", "Confidence", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 78))
	for i, r := range results {
		mesh := r.Mesh
		if len(mesh) > 50 {
			mesh = mesh[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-10.2f  %s\n", i+1, mesh, r.Confidence, r.Source)
	}
	fmt.Fprintf(os.Stdout, "\n%d matches\n", len(results))
	return nil
}

func init() {
	matchCmd.Flags().String("side", "", "side qualifier: left or right")
	matchCmd.Flags().String("meshes-file", "", "file with one candidate mesh name per line")
	matchCmd.Flags().String("meshes", "", "comma-separated candidate mesh names")
	matchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(matchCmd)
}
