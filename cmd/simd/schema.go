package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"fly-and-charge/sim/internal/config"
)

func newSchemaCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Emit the JSON schema for scenario files",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := buildScenarioSchema()
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			data = append(data, '\n')

			if outPath == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the schema to a file instead of stdout")
	return cmd
}

func buildScenarioSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(config.Scenario))
	schema.Title = "Fly-and-Charge Scenario"
	schema.Description = "Validates scenario files passed to simd run."
	return schema
}
