package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"museum-tour-server/domain/entity"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type clearOptions struct {
	force    bool
	truncate bool
	tables   string
}

func newClearDBCommand(a *app) *cobra.Command {
	opts := &clearOptions{}

	cmd := &cobra.Command{
		Use:   "cleardb",
		Short: "清空数据库表",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetTables, err := tableNames(a.db)
			if err != nil {
				return err
			}
			if opts.tables != "" {
				targetTables = parseTableNames(opts.tables)
			}

			// 确认提示
			if !opts.force && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), targetTables) {
				fmt.Fprintln(cmd.OutOrStdout(), "❌ 操作已取消")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n🚀 开始清库...")
			failed := clearTables(a.db, targetTables, opts.truncate, cmd.OutOrStdout())
			if failed > 0 {
				return fmt.Errorf("%d table(s) failed to clear", failed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\n🎉 清库操作完成！")
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "跳过确认提示，强制执行清库")
	cmd.Flags().BoolVar(&opts.truncate, "truncate", false, "使用 TRUNCATE（更快，会重置自增ID，仅 PostgreSQL）")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "指定要清空的表，逗号分隔（例如: blocks,contents）；留空表示清空所有表")
	return cmd
}

func confirm(in io.Reader, out io.Writer, tables []string) bool {
	fmt.Fprintln(out, "⚠️  警告：此操作将删除数据库中的所有数据！")
	fmt.Fprintln(out, "📊 受影响的表：")
	for _, t := range tables {
		fmt.Fprintf(out, "   - %s\n", t)
	}

	fmt.Fprint(out, "\n确认执行清库操作？(yes/no): ")
	input, _ := bufio.NewReader(in).ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "yes" || input == "y"
}

// clearTables 返回失败的表数量
func clearTables(db *gorm.DB, tables []string, truncate bool, out io.Writer) int {
	failed := 0
	for _, tableName := range tables {
		var err error
		if truncate {
			// CASCADE 处理外键约束
			err = db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", tableName)).Error
		} else {
			err = db.Exec(fmt.Sprintf("DELETE FROM %s", tableName)).Error
		}

		if err != nil {
			failed++
			fmt.Fprintf(out, "❌ 清空表 %s 失败: %v\n", tableName, err)
		} else {
			fmt.Fprintf(out, "✅ 已清空表: %s\n", tableName)
		}
	}
	return failed
}

// tableNames 返回所有表名
// 注意：顺序很重要！先删除有外键依赖的表（blocks），再删除被依赖的表（languages）
func tableNames(db *gorm.DB) ([]string, error) {
	models := entity.AllModels()
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(models[i]); err != nil {
			return nil, err
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}

// parseTableNames 解析命令行指定的表名
func parseTableNames(input string) []string {
	parts := strings.Split(input, ",")
	var tables []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tables = append(tables, p)
		}
	}
	return tables
}
