package main

import (
	"fmt"
	"io"

	"museum-tour-server/domain/entity"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// defaultLanguages 初始语言，英文必须存在（自动填充以英文为源语言）
var defaultLanguages = []entity.Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "写入初始语言与示例温室 / 路线（可重复执行）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(a.db, cmd.OutOrStdout())
		},
	}
}

// seed 已存在的数据不会重复写入
func seed(db *gorm.DB, out io.Writer) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, lang := range defaultLanguages {
			lang := lang
			result := tx.Where(entity.Language{Code: lang.Code}).FirstOrCreate(&lang)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				fmt.Fprintf(out, "✅ 语言: %s (%s)\n", lang.Name, lang.Code)
			}
		}

		var domes int64
		if err := tx.Model(&entity.Dome{}).Count(&domes).Error; err != nil {
			return err
		}
		if domes == 0 {
			dome := entity.Dome{Name: "Tropical Dome", ImageURL: "/images/domes/tropical.png", PathImageURL: "/images/domes/tropical-path.png"}
			if err := tx.Create(&dome).Error; err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ 温室: %s\n", dome.Name)
		}

		var tours int64
		if err := tx.Model(&entity.Tour{}).Count(&tours).Error; err != nil {
			return err
		}
		if tours == 0 {
			tour := entity.Tour{Name: "Highlights Tour", Description: "A short walk through the most popular exhibits.", PathImageURL: "/images/tours/highlights.png"}
			if err := tx.Create(&tour).Error; err != nil {
				return err
			}
			loc := entity.Location{TourID: tour.ID, Name: "Cloud Forest", Label: "A1", PositionX: 0.25, PositionY: 0.4}
			if err := tx.Create(&loc).Error; err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ 路线: %s（含地点 %s）\n", tour.Name, loc.Name)
		}
		return nil
	})
}
