package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"claimsight/internal/claims/models"
	"claimsight/internal/claims/service"
	"claimsight/internal/claims/store"
)

var (
	assessPolicy      string
	assessAmount      float64
	assessDescription string
	assessDocuments   []string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score one claim against the configured model and print the result",
	Long: `Run the forgery checks and risk assessment for a single claim without
storing anything. Useful for tuning prompts against the hosted model.

Examples:
  claimsight assess --policy POL-12345 --amount 15000 --description "Car stolen overnight"
  claimsight assess -p POL-12345 -a 900 -d "Cracked windscreen" --document photo.jpg`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessPolicy, "policy", "p", "", "policy number (POL-12345)")
	assessCmd.Flags().Float64VarP(&assessAmount, "amount", "a", 0, "claimed amount")
	assessCmd.Flags().StringVarP(&assessDescription, "description", "d", "", "incident description")
	assessCmd.Flags().StringSliceVar(&assessDocuments, "document", nil, "path of a supporting document (repeatable)")
	_ = assessCmd.MarkFlagRequired("policy")
	_ = assessCmd.MarkFlagRequired("description")
}

func runAssess(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	form := models.ClaimForm{
		PolicyNo:    assessPolicy,
		Amount:      assessAmount,
		Description: assessDescription,
	}
	for _, path := range assessDocuments {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		form.Documents = append(form.Documents, models.Upload{Filename: filepath.Base(path), Content: content})
	}

	gateway, err := newGateway(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	svc := service.New(store.NewInMemory(), gateway,
		service.WithLogger(log),
		service.WithMaxConcurrentChecks(cfg.Workflow.MaxConcurrentChecks),
	)
	out, err := svc.Assess(ctx, form)
	if err != nil {
		return fmt.Errorf("assess claim: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
