package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// SoftwareProfile groups nodes that share an installed software stack.
type SoftwareProfile struct {
	bun.BaseModel `bun:"table:software_profiles,alias:sp"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	OSName      string    `bun:"os_name"`
	OSVersion   string    `bun:"os_version"`
	Tags        TagMap    `bun:"tags,type:jsonb,notnull,default:'{}'"`
	LockedState string    `bun:"locked_state,notnull,default:'Unlocked'"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (p *SoftwareProfile) ValidateForCreate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// HardwareProfile groups nodes that share a physical or virtual shape.
type HardwareProfile struct {
	bun.BaseModel `bun:"table:hardware_profiles,alias:hp"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name,notnull,unique"`
	Description     string    `bun:"description"`
	NameFormat      string    `bun:"name_format"`
	ResourceAdapter string    `bun:"resource_adapter"`
	Tags            TagMap    `bun:"tags,type:jsonb,notnull,default:'{}'"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (p *HardwareProfile) ValidateForCreate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
