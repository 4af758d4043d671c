package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Language 语言表
type Language struct {
	ID         uint      `gorm:"primaryKey" json:"language_id"`
	Code       string    `gorm:"uniqueIndex;size:3;not null" json:"language_code"`
	Name       string    `gorm:"size:100;not null" json:"language_name"`
	NativeName string    `gorm:"size:100;not null" json:"language_native_name"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Dome 温室（地图底图）
type Dome struct {
	ID           uint      `gorm:"primaryKey" json:"dome_id"`
	Name         string    `gorm:"size:255;not null" json:"dome_name"`
	ImageURL     string    `gorm:"size:500" json:"dome_image_url"`
	PathImageURL string    `gorm:"size:500" json:"dome_path_image_url"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Tour 导览路线
type Tour struct {
	ID           uint      `gorm:"primaryKey" json:"tour_id"`
	Name         string    `gorm:"size:255;not null" json:"tour_name"`
	Description  string    `gorm:"type:text" json:"tour_description"`
	PathImageURL string    `gorm:"size:500" json:"tour_path_image_url"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Location 路线上的一个点位，PositionX/Y 为地图上的相对坐标 [0,1]
type Location struct {
	ID        uint           `gorm:"primaryKey" json:"location_id"`
	TourID    uint           `gorm:"not null;index" json:"tour_id"`
	Tour      *Tour          `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"location_name"`
	Label     string         `gorm:"size:255" json:"location_label"`
	PositionX float64        `json:"position_x"`
	PositionY float64        `json:"position_y"`
	FactSheet datatypes.JSON `json:"fact_sheet,omitempty"` // 最近一次联网检索的结果缓存
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}

// Plant 植物
type Plant struct {
	ID             uint           `gorm:"primaryKey" json:"plant_id"`
	Name           string         `gorm:"size:255;not null;index" json:"plant_name"`
	ScientificName string         `gorm:"size:255;index" json:"plant_scientific_name"`
	FactSheet      datatypes.JSON `json:"fact_sheet,omitempty"` // 最近一次联网检索的结果缓存
	CreatedAt      time.Time      `json:"-"`
	UpdatedAt      time.Time      `json:"-"`
}

// AllModels 需要 AutoMigrate / 清库的全部模型
// 注意顺序：被依赖的表在前
func AllModels() []interface{} {
	return []interface{}{
		&Language{},
		&Dome{},
		&Tour{},
		&Location{},
		&Plant{},
		&Content{},
		&Block{},
	}
}
