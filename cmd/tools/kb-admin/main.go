// cmd/tools/kb-admin/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kb-admin",
		Short:         "Maintain the MIDC chatbot knowledge base",
		Long:          `Validate keyword registries and section directories, and push file-based content into Elasticsearch or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateKeywordsCmd(), newValidateDocsCmd(), newPushCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
