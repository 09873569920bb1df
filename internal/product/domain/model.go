package domain

import (
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

type Product struct {
	ID                uint64        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Owner             host.Identity `json:"owner" gorm:"size:42;not null;index"`
	Name              string        `json:"name" gorm:"type:text;not null"`
	Price             money.Amount  `json:"price" gorm:"size:80;not null"`
	MetadataReference string        `json:"metadata_reference" gorm:"type:text;not null"`
	Active            bool          `json:"active" gorm:"not null"`
	TotalSold         uint64        `json:"total_sold" gorm:"not null"`
	CreatedAt         uint64        `json:"created_at" gorm:"not null;autoCreateTime:false"`
}

func (Product) TableName() string { return "products" }
