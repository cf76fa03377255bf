// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/anatomy-mapper/internal/kb"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the anatomical knowledge base (validate, export, expand)",
	Long: `Kb operates on the anatomical knowledge document: the term → synonyms
and term → relationships maps the matchers run on. Use subcommands to
validate a document, export the loaded base, or merge in new terms.`,
}

// --- validate subcommand ---

var kbValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that a knowledge document is well-formed",
	Long: `Validate parses a knowledge document and enforces its invariants:
both sections are term → non-empty-sequence mappings and every term
appears in both sections or in neither.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBValidate,
}

func runKBValidate(cmd *cobra.Command, args []string) error {
	base, err := kb.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d terms\n", len(base.Terms()))
	return nil
}

// --- export subcommand ---

var kbExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the loaded knowledge base to YAML or JSON",
	RunE:  runKBExport,
	Args:  cobra.ExactArgs(1),
}

func runKBExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	base, err := loadKnowledge(appConfig())
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		if err := base.ExportYAML(args[0]); err != nil {
			return err
		}
	case "json":
		if err := base.ExportJSON(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Printf("Exported %d terms to %s\n", len(base.Terms()), args[0])
	return nil
}

// --- expand subcommand ---

var kbExpandCmd = &cobra.Command{
	Use:   "expand [path]",
	Short: "Merge another knowledge document into the configured base",
	Long: `Expand loads a second knowledge document, merges its synonyms and
relationships into the configured base without duplicates, and writes
the merged document back to the configured path.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBExpand,
}

func runKBExpand(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	if cfg.KnowledgeBase.Path == "" {
		return fmt.Errorf("knowledge_base.path must be configured to expand")
	}

	base, err := kb.Load(cfg.KnowledgeBase.Path)
	if err != nil {
		return err
	}
	incoming, err := kb.Load(args[0])
	if err != nil {
		return err
	}

	base.Expand(incoming)
	if err := base.ExportYAML(cfg.KnowledgeBase.Path); err != nil {
		return err
	}

	fmt.Printf("Merged %s into %s (%d terms)\n", args[0], cfg.KnowledgeBase.Path, len(base.Terms()))
	return nil
}

func init() {
	kbExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	kbCmd.AddCommand(kbValidateCmd)
	kbCmd.AddCommand(kbExportCmd)
	kbCmd.AddCommand(kbExpandCmd)

	rootCmd.AddCommand(kbCmd)
}
