// Package domain defines the persistence models for the payments ledger,
// push subscriptions, and notification templates. These types are mapped
// with GORM and form the core data layer of the payments backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction types accepted from the payment gateway.
const (
	TypeBoleto = "boleto"
	TypePix    = "pix"
	TypeCartao = "cartao"
)

// Transaction lifecycle statuses.
const (
	StatusGenerated = "generated"
	StatusPaid      = "paid"
	StatusPending   = "pending"
	StatusCanceled  = "canceled"
	StatusExpired   = "expired"
)

// MetadataDocumentURLKey is the fixed metadata key under which a
// payload-carried document URL (e.g. the boleto PDF) is stored.
const MetadataDocumentURLKey = "boleto_url"

// ValidType reports whether t is one of the accepted payment instrument kinds.
func ValidType(t string) bool {
	switch t {
	case TypeBoleto, TypePix, TypeCartao:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the accepted ledger statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusGenerated, StatusPaid, StatusPending, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// TypeLabel returns the human-readable label for a transaction type,
// used by notification templates ({tipo} placeholder).
func TypeLabel(t string) string {
	switch t {
	case TypeBoleto:
		return "Boleto"
	case TypePix:
		return "Pix"
	case TypeCartao:
		return "Cartão"
	}
	return t
}

// Transaction is a ledger row created or updated from gateway webhooks.
//
// Identity is the system-generated UUID. ExternalID is the free-text
// identifier supplied by the event source (e.g. a payment barcode); its
// formatting is inconsistent across sources, so NormalizedExternalID holds
// the canonical matching key maintained at write time. ExternalID keeps the
// original form and is never rewritten once set.
type Transaction struct {
	ID                   string            `json:"id"                    gorm:"type:char(36);primaryKey"`
	ExternalID           *string           `json:"external_id,omitempty" gorm:"type:text"`
	NormalizedExternalID string            `json:"-"                     gorm:"type:varchar(255);index:idx_tx_normalized_ext"`
	Type                 string            `json:"type"                  gorm:"type:varchar(16);not null;check:type IN ('boleto','pix','cartao')"`
	Status               string            `json:"status"                gorm:"type:varchar(16);not null;default:'generated';check:status IN ('generated','paid','pending','canceled','expired')"`
	Amount               decimal.Decimal   `json:"amount"                gorm:"type:decimal(12,2);not null"`
	CustomerName         *string           `json:"customer_name,omitempty"     gorm:"type:varchar(255)"`
	CustomerEmail        *string           `json:"customer_email,omitempty"    gorm:"type:varchar(255)"`
	CustomerPhone        *string           `json:"customer_phone,omitempty"    gorm:"type:varchar(32)"` // stored normalized (digits only)
	CustomerDocument     *string           `json:"customer_document,omitempty" gorm:"type:varchar(32)"`
	Description          *string           `json:"description,omitempty"       gorm:"type:text"`
	PaidAt               *time.Time        `json:"paid_at,omitempty"`
	Metadata             datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	DeletedAt            gorm.DeletedAt    `json:"-" gorm:"index"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string { return "transactions" }

// PushSubscription is a Web Push delivery target registered by a browser.
//
// Endpoint is the opaque push-service URL; P256dh and Auth carry the
// subscriber's public key material required to address it. Rows are removed
// by the dispatcher when a delivery attempt reports the endpoint gone.
type PushSubscription struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Endpoint  string    `json:"endpoint" gorm:"type:text;not null;uniqueIndex:ux_push_endpoint,length:255"`
	P256dh    string    `json:"p256dh"   gorm:"type:varchar(255);not null"`
	Auth      string    `json:"auth"     gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for PushSubscription.
func (PushSubscription) TableName() string { return "push_subscriptions" }

// NotificationTemplate configures the secondary relay message for one event
// key (e.g. "pix_paid"). Title and Message may contain the placeholder
// tokens {nome}, {primeiro_nome}, {valor} and {tipo}. Inactive templates are
// ignored by the dispatcher.
type NotificationTemplate struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	EventKey  string    `json:"event_key" gorm:"type:varchar(64);not null;uniqueIndex:ux_template_event"`
	Title     string    `json:"title"     gorm:"type:varchar(255);not null"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	Category  string    `json:"category"  gorm:"type:varchar(64)"`
	Active    bool      `json:"active"    gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for NotificationTemplate.
func (NotificationTemplate) TableName() string { return "notification_templates" }
