package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Node lifecycle states. Transitions are driven by provisioning activity
// reported through the inventory API.
const (
	NodeStateCreated     = "Created"
	NodeStateProvisioned = "Provisioned"
	NodeStateInstalled   = "Installed"
	NodeStateDeleted     = "Deleted"
	NodeStateError       = "Error"
)

// Node represents one managed cluster member.
type Node struct {
	bun.BaseModel `bun:"table:nodes,alias:n"`

	ID                int64     `bun:"id,pk,autoincrement"`
	GUID              string    `bun:"guid,notnull,unique,type:uuid"`
	Name              string    `bun:"name,notnull,unique"`
	State             string    `bun:"state,notnull,default:'Created'"`
	PublicHostname    string    `bun:"public_hostname"`
	Tags              TagMap    `bun:"tags,type:jsonb,notnull,default:'{}'"`
	SoftwareProfileID *int64    `bun:"software_profile_id"`
	HardwareProfileID *int64    `bun:"hardware_profile_id"`
	LockedState       string    `bun:"locked_state,notnull,default:'Unlocked'"`
	LastUpdate        time.Time `bun:"last_update,notnull,default:current_timestamp"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp"`

	SoftwareProfile *SoftwareProfile `bun:"rel:belongs-to,join:software_profile_id=id"`
	HardwareProfile *HardwareProfile `bun:"rel:belongs-to,join:hardware_profile_id=id"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (n *Node) ValidateForCreate() error {
	if _, err := uuid.Parse(n.GUID); err != nil {
		return errors.New("guid must be a valid UUID")
	}
	if n.Name == "" {
		return errors.New("name is required")
	}
	if n.State == "" {
		return errors.New("state is required")
	}
	return nil
}
