package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrefillCommand(a *app) *cobra.Command {
	var kind, language string

	cmd := &cobra.Command{
		Use:   "prefill",
		Short: "为某类父实体的所有空页面自动填充某种语言",
		Example: `  tourctl prefill --kind plant --language es
  tourctl prefill --kind location --language en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parentKind, err := parseKind(kind)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			uc := a.useCases(ctx)

			lang, err := lookupLanguage(ctx, a, language)
			if err != nil {
				return err
			}

			report, err := uc.Bootstrap.Prefill(ctx, parentKind, lang.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ 已填充: %d\n", report.Filled)
			fmt.Fprintf(out, "⏭️  已有内容: %d\n", report.Skipped)
			fmt.Fprintf(out, "❌ 失败: %d %v\n", len(report.Failed), report.Failed)
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d page(s) failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "plant", "父实体类型 (location|plant)")
	cmd.Flags().StringVar(&language, "language", "", "目标语言代码，例如 es")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}
