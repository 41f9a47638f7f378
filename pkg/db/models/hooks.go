package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are generated client-side so inserts behave the same on every dialect.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error         { ensureID(&u.ID); return nil }
func (b *Business) BeforeCreate(*gorm.DB) error     { ensureID(&b.ID); return nil }
func (b *BusinessUser) BeforeCreate(*gorm.DB) error { ensureID(&b.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error     { ensureID(&c.ID); return nil }
func (s *SubCategory) BeforeCreate(*gorm.DB) error  { ensureID(&s.ID); return nil }
func (i *Item) BeforeCreate(*gorm.DB) error         { ensureID(&i.ID); return nil }
func (i *ItemImage) BeforeCreate(*gorm.DB) error    { ensureID(&i.ID); return nil }
func (s *Stock) BeforeCreate(*gorm.DB) error        { ensureID(&s.ID); return nil }
func (e *Expenditure) BeforeCreate(*gorm.DB) error  { ensureID(&e.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { ensureID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(*gorm.DB) error    { ensureID(&o.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error     { ensureID(&a.ID); return nil }
