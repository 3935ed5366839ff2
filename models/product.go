package models

import "time"

// Category groups products into a browsable tree. A nil ParentID marks a
// top-level category.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Title       string    `gorm:"type:varchar(50);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsEnable    bool      `gorm:"not null;default:true" json:"is_enable"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Product is a digital good. Price is stored in minor currency units.
type Product struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"type:varchar(50);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Price       int           `gorm:"not null" json:"price"`
	Stars       int           `gorm:"not null;default:0" json:"stars"`
	IsStock     bool          `gorm:"not null;default:true" json:"is_stock"`
	IsNew       bool          `gorm:"not null;default:false" json:"is_new"`
	IsOff       bool          `gorm:"not null;default:false" json:"is_off"`
	OffPrice    string        `gorm:"type:varchar(50)" json:"off_price,omitempty"`
	IsEnable    bool          `gorm:"not null;default:true" json:"is_enable"`
	Categories  []Category    `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Files       []ProductFile `gorm:"foreignKey:ProductID" json:"files,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductFile is a downloadable asset delivered after purchase.
type ProductFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Title     string    `gorm:"type:varchar(50);not null" json:"title"`
	FileURL   string    `gorm:"type:varchar(255);not null" json:"file_url"`
	IsEnable  bool      `gorm:"not null;default:true" json:"is_enable"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProductFilters narrows catalog listings. Nil fields are ignored.
type ProductFilters struct {
	CategoryID *uint
	IsNew      *bool
	IsOff      *bool
	InStock    *bool
}

// CreateProductRequest is the admin payload for adding a product.
type CreateProductRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=50"`
	Description string `json:"description"`
	Price       int    `json:"price" binding:"required,gte=0"`
	IsStock     *bool  `json:"is_stock"`
	IsNew       bool   `json:"is_new"`
	IsOff       bool   `json:"is_off"`
	OffPrice    string `json:"off_price"`
	CategoryIDs []uint `json:"category_ids"`
}

// UpdateProductRequest is the admin payload for editing a product. Pointer
// fields distinguish "leave unchanged" from zero values.
type UpdateProductRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	Price       *int    `json:"price" binding:"omitempty,gte=0"`
	IsStock     *bool   `json:"is_stock"`
	IsNew       *bool   `json:"is_new"`
	IsOff       *bool   `json:"is_off"`
	OffPrice    *string `json:"off_price"`
	IsEnable    *bool   `json:"is_enable"`
}
