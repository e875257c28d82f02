package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ghostqa/internal/selectorkb"
)

var (
	knowledgeFile string
)

// knowledgeCmd is the parent command for selector knowledge base maintenance.
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect and move the learned selector knowledge base",
	Long: `Examples:
  ghostqa knowledge stats
  ghostqa knowledge export --file kb.json
  ghostqa knowledge import --file kb.json`,
}

var knowledgeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base statistics",
	RunE:  runKnowledgeStats,
}

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to a JSON file",
	RunE:  runKnowledgeExport,
}

var knowledgeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a previously exported knowledge base JSON file",
	RunE:  runKnowledgeImport,
}

func init() {
	knowledgeExportCmd.Flags().StringVar(&knowledgeFile, "file", "knowledge_export.json", "Destination file")
	knowledgeImportCmd.Flags().StringVar(&knowledgeFile, "file", "knowledge_export.json", "Source file")
}

func openKB(ws string) (*selectorkb.KB, error) {
	cfg, err := loadedConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(ws, dataDir)
	}
	return selectorkb.New(cfg.KB, filepath.Join(dataDir, "selectors")), nil
}

func runKnowledgeStats(cmd *cobra.Command, args []string) error {
	kb, err := openKB(resolvedWorkspace())
	if err != nil {
		return err
	}
	defer kb.Close()

	stats := kb.GetStats()
	fmt.Printf("domains=%d elements=%d selectors=%d\n", stats.Domains, stats.Elements, stats.Selectors)
	fmt.Printf("cache hit rate=%.2f lookups=%d bloom save rate=%.2f\n", stats.CacheHitRate, stats.Lookups, stats.BloomSaveRate)
	return nil
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	kb, err := openKB(resolvedWorkspace())
	if err != nil {
		return err
	}
	defer kb.Close()

	elements := kb.Export()
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(knowledgeFile, data, 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	fmt.Printf("exported %d elements to %s\n", len(elements), knowledgeFile)
	return nil
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(knowledgeFile)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var elements []*selectorkb.ElementKnowledge
	if err := json.Unmarshal(data, &elements); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}

	kb, err := openKB(resolvedWorkspace())
	if err != nil {
		return err
	}
	defer kb.Close()

	kb.Import(elements)
	fmt.Printf("imported %d elements from %s\n", len(elements), knowledgeFile)
	return nil
}
