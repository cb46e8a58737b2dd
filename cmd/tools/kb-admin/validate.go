package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/validation"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

func newValidateKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-keywords [file]",
		Short: "Check a keyword registry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: valid (version %s)\n", args[0], reg.Version)
			fmt.Fprintf(out, "  entitySafety:     %d\n", len(reg.EntitySafety))
			fmt.Fprintf(out, "  explicitInternet: %d\n", len(reg.ExplicitInternet))
			fmt.Fprintf(out, "  highPriority:     %d\n", len(reg.HighPriority))
			fmt.Fprintf(out, "  mandatoryTopics:  %d\n", len(reg.MandatoryTopics))
			fmt.Fprintf(out, "  intents:          %d\n", len(reg.Intents))
			return nil
		},
	}
}

type sectionReport struct {
	sections int
	chunks   int
	problems []string
}

func newValidateDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-docs [root]",
		Short: "Check every <root>/<sectionId>/content.json against the document schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := validateSections(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range report.problems {
				fmt.Fprintf(out, "ERROR %s\n", p)
			}
			fmt.Fprintf(out, "sections: %d, chunks: %d, errors: %d\n", report.sections, report.chunks, len(report.problems))
			if len(report.problems) > 0 {
				return fmt.Errorf("%d section(s) failed validation", len(report.problems))
			}
			return nil
		},
	}
}

func validateSections(root string) (*sectionReport, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	report := &sectionReport{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := e.Name()
		if !knowledge.ValidSectionID(id) {
			report.problems = append(report.problems, fmt.Sprintf("%s: invalid section id", id))
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, id, "content.json"))
		if err != nil {
			report.problems = append(report.problems, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		res, err := validation.ValidateJSON(validation.DocumentFile, data)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			report.problems = append(report.problems, fmt.Sprintf("%s: %s", id, res.Summary()))
			continue
		}

		var body struct {
			Chunks []string `json:"chunks"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			report.problems = append(report.problems, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		report.sections++
		report.chunks += len(body.Chunks)
	}
	return report, nil
}
