package main

import (
	"context"
	"fmt"

	"museum-tour-server/bootstrap"
	"museum-tour-server/domain/entity"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app 子命令共享的依赖，在 PersistentPreRunE 中按需初始化
type app struct {
	env *bootstrap.Env
	log zerolog.Logger
	db  *gorm.DB

	// caps 为 nil 时按环境变量创建 OpenAI 客户端与音频存储
	caps *bootstrap.Capabilities
}

// useCases 需要 AI / 音频存储的子命令才调用
func (a *app) useCases(ctx context.Context) *bootstrap.UseCases {
	caps := a.caps
	if caps == nil {
		ai := bootstrap.NewAssistant(a.env, a.log)
		caps = &bootstrap.Capabilities{
			Search:     ai,
			Translator: ai,
			Moderator:  ai,
			Speech:     ai,
			Blobs:      bootstrap.NewBlobStore(ctx, a.env, a.log),
		}
	}
	return bootstrap.NewUseCases(bootstrap.NewRepositories(a.db), *caps, nil, a.env.BootstrapConfig(), a.log)
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "tourctl",
		Short:         "Museum tour 管理工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.env = bootstrap.LoadEnv()
			a.log = bootstrap.NewLogger(a.env.LogLevel, "console")
			db, err := bootstrap.OpenDatabase(a.env.DBDriver, a.env.DatabaseURL, a.env.LogLevel == "debug")
			if err != nil {
				return err
			}
			a.db = db
			return nil
		},
	}

	cmd.AddCommand(newClearDBCommand(a))
	cmd.AddCommand(newSeedCommand(a))
	cmd.AddCommand(newPrefillCommand(a))
	cmd.AddCommand(newSpeakCommand(a))
	return cmd
}

// parseKind 命令行参数 → 父实体类型
func parseKind(s string) (entity.ParentKind, error) {
	kind := entity.ParentKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid kind %q: must be location or plant", s)
	}
	return kind, nil
}
