package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/pkg/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of config.yaml",
	Long: `Print the JSON schema describing config.yaml.

Editors that understand "# yaml-language-server: $schema=..." can use it
for completion and inline validation.

Examples:
  dftp config schema
  dftp config schema -o dittoftp.schema.json`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write the schema to this file instead of stdout")
}

// generateSchema reflects config.Config using the yaml tags, so property
// names match the keys accepted in config.yaml.
func generateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}
	s := r.Reflect(&config.Config{})
	s.Version = jsonschema.Version
	s.Title = "dittoftp Configuration"
	s.Description = "Settings of the dittoftp transfer server"
	return json.MarshalIndent(s, "", "  ")
}

func runSchema(cmd *cobra.Command, _ []string) error {
	data, err := generateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	out := cmd.OutOrStdout()

	if schemaOutput == "" {
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	if err := os.WriteFile(schemaOutput, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", schemaOutput, err)
	}
	_, _ = fmt.Fprintf(out, "Schema written to %s\n", schemaOutput)
	return nil
}
