package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/formkit"
	"github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/i18n"
	"github.com/reoring/formkit/rules"
)

type validateOpts struct {
	dataFile  string
	rulesFile string
	asJSON    bool
}

func (o *validateOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dataFile, "data", "d", "", "JSON or YAML data file")
	cmd.Flags().StringVarP(&o.rulesFile, "rules", "r", "", "JSON or YAML rule file")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print issues as JSON")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("rules")
}

func newValidateCmd() *cobra.Command {
	var o validateOpts
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a data file against a rule file",
		Long: `Rule file example (YAML):

  rules:
    - path: name
      required: true
      maxLength: 40
    - path: friends
      atLeastOne: true
      uniqueBy: name
      each:
        - path: name
          required: true
    - when: {path: kind, op: eq, value: company}
      rules:
        - path: vat
          required: true

Exits with status 1 when issues were found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i18n.SetLanguage(lang)
			iss, err := validateFiles(cmd.Context(), o.dataFile, o.rulesFile)
			if err != nil {
				return err
			}
			if err := printIssues(cmd.OutOrStdout(), iss, o.asJSON); err != nil {
				return err
			}
			if len(iss) > 0 {
				return errInvalid
			}
			return nil
		},
	}
	o.bind(cmd)
	return cmd
}

func validateFiles(ctx context.Context, dataFile, rulesFile string) (formkit.Issues, error) {
	tree, _, err := loadData(dataFile)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(rulesFile)
	if err != nil {
		return nil, err
	}
	set, err := rules.Load(b, formkit.FormatOf(rulesFile), rules.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rulesFile, err)
	}
	store := formkit.New(formkit.Config{InitialData: tree, Validator: set, Logger: logger})
	if err := store.ValidateForm(ctx); err != nil {
		return nil, err
	}
	return store.Issues(), nil
}

type issueJSON struct {
	Path    *string        `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Rule    string         `json:"rule,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

func printIssues(w io.Writer, iss formkit.Issues, asJSON bool) error {
	if asJSON {
		out := make([]issueJSON, len(iss))
		for i, it := range iss {
			out[i] = issueJSON{Code: it.Code, Message: it.Message, Rule: it.Rule, Params: it.Params}
			if it.Path != nil {
				p := fieldpath.Render(it.Path)
				out[i].Path = &p
			}
		}
		return json.NewEncoder(w).Encode(out)
	}
	if len(iss) == 0 {
		_, err := fmt.Fprintln(w, "ok")
		return err
	}
	for _, it := range iss {
		p := "(form)"
		if it.Path != nil {
			p = fieldpath.Render(it.Path)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", p, it.Code, it.Message); err != nil {
			return err
		}
	}
	return nil
}
