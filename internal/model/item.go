package model

import "time"

// Item is a catalogue entry.
type Item struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"size:100;not null;index"`
	Description *string    `json:"description" gorm:"type:text"`
	Price       float64    `json:"price" gorm:"not null"`
	Category    *string    `json:"category" gorm:"size:50;index"`
	IsAvailable bool       `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// ItemCreate is the payload accepted when creating an item.
type ItemCreate struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required"`
	Category    *string  `json:"category" validate:"omitempty,max=50"`
	IsAvailable *bool    `json:"is_available"`
}

// NewItem builds the record for a create request. is_available defaults to true.
func (in ItemCreate) NewItem() *Item {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	var price float64
	if in.Price != nil {
		price = *in.Price
	}
	return &Item{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Category:    in.Category,
		IsAvailable: available,
	}
}

// ItemUpdate is a partial update. Absent fields are left untouched. The
// nullable columns are cleared by an explicit null; for the others a null
// counts as absent.
type ItemUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description Nullable[string] `json:"description" swaggertype:"string"`
	Price       *float64         `json:"price"`
	Category    Nullable[string] `json:"category" validate:"omitempty,max=50" swaggertype:"string"`
	IsAvailable *bool            `json:"is_available"`
}

// Apply copies the present fields onto item.
func (u ItemUpdate) Apply(item *Item) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	u.Description.ApplyTo(&item.Description)
	if u.Price != nil {
		item.Price = *u.Price
	}
	u.Category.ApplyTo(&item.Category)
	if u.IsAvailable != nil {
		item.IsAvailable = *u.IsAvailable
	}
}
