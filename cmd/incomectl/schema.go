package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"incomepredict/ml"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the input fields the model expects as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(ml.Fields())
		},
	}
}
