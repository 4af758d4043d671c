package main

import (
	"context"
	"fmt"

	"museum-tour-server/bootstrap"
	"museum-tour-server/domain/entity"

	"github.com/spf13/cobra"
)

func newSpeakCommand(a *app) *cobra.Command {
	var (
		kind     string
		id       uint
		language string
	)

	cmd := &cobra.Command{
		Use:     "speak",
		Short:   "为一个页面生成朗读音频",
		Example: `  tourctl speak --kind plant --id 12 --language fr`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parentKind, err := parseKind(kind)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			lang, err := lookupLanguage(ctx, a, language)
			if err != nil {
				return err
			}

			url, err := a.useCases(ctx).Speech.SynthesizeAudio(ctx, entity.ParentRef{Kind: parentKind, ID: id}, lang.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🔊 %s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "plant", "父实体类型 (location|plant)")
	cmd.Flags().UintVar(&id, "id", 0, "父实体 ID")
	cmd.Flags().StringVar(&language, "language", "en", "语言代码")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// lookupLanguage 按代码查找语言
func lookupLanguage(ctx context.Context, a *app, code string) (*entity.Language, error) {
	lang, err := bootstrap.NewRepositories(a.db).Languages.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", code, err)
	}
	return lang, nil
}
