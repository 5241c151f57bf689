package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const initHeader = `# pagepulse configuration.
#
# api_key can also come from the PAGEPULSE_API_KEY or PAGESPEED_API_KEY
# environment variable. "context" groups related pages into a results
# sub-directory and may be omitted for a flat layout. "delay" is the wait
# between retry attempts in milliseconds.
`

// NewInitCmd creates the init command, which writes a starter
// configuration file.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter pagepulse configuration file",
		Long: `Init creates a commented starter configuration file.

Examples:
  # Create config.yaml in the current directory
  pagepulse init

  # Create the config at a specific path
  pagepulse init -o monitoring/pages.yaml

  # Overwrite an existing file
  pagepulse init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "config.yaml", "Output path for the configuration file")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")

	return cmd
}

// starterConfig is the template written by init. Built as a yaml.Node so
// the key order in the generated file is stable.
func starterConfig() *yaml.Node {
	doc := yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value interface{}) {
		var k, v yaml.Node
		_ = k.Encode(key)
		_ = v.Encode(value)
		doc.Content = append(doc.Content, &k, &v)
	}

	add("api_key", "YOUR_API_KEY")
	add("retries", 3)
	add("delay", 500)
	add("results_dir", "./results")
	add("pages", []map[string]string{
		{"context": "marketing", "title": "home", "url": "https://example.com/"},
		{"context": "marketing", "title": "pricing", "url": "https://example.com/pricing"},
		{"title": "status", "url": "https://status.example.com/"},
	})

	return &doc
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(initHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starterConfig()); err != nil {
		return fmt.Errorf("encode config template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit the page list, set your API key, then run:")
	fmt.Fprintf(cmd.OutOrStdout(), "  pagepulse run -c %s\n", outputPath)
	return nil
}
