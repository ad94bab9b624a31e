package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	dbtypes "github.com/pmcell/catalog-backend/pkg/db/types"
	"github.com/pmcell/catalog-backend/pkg/enums"
)

// ErrAppendOnly is returned by hooks on tables that only accept inserts.
var ErrAppendOnly = errors.New("table is append-only")

// JourneyEvent is one customer funnel action. Rows are never mutated.
type JourneyEvent struct {
	ID        uint                   `gorm:"column:id;primaryKey"`
	WhatsApp  string                 `gorm:"column:whatsapp;size:20;index"`
	SessionID string                 `gorm:"column:session_id;size:100;not null;index"`
	Event     enums.JourneyEventType `gorm:"column:event;size:30;not null;index"`
	Payload   dbtypes.JSON           `gorm:"column:payload"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}

func (*JourneyEvent) BeforeUpdate(*gorm.DB) error { return ErrAppendOnly }

func (*JourneyEvent) BeforeDelete(*gorm.DB) error { return ErrAppendOnly }
