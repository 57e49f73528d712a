package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/pkg/caldate"
)

// Direction is whether money was received (credit) or paid out (debit).
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

func (d Direction) Valid() bool { return d == Credit || d == Debit }

type Category string

const (
	CategoryTreatment    Category = "treatment"
	CategoryConsultation Category = "consultation"
	CategorySupplies     Category = "supplies"
	CategoryEquipment    Category = "equipment"
	CategoryLab          Category = "lab"
	CategorySalary       Category = "salary"
	CategoryRent         Category = "rent"
	CategoryUtilities    Category = "utilities"
	CategoryInsurance    Category = "insurance"
	CategoryMarketing    Category = "marketing"
	CategoryOther        Category = "other"
)

var validCategories = map[Category]bool{
	CategoryTreatment: true, CategoryConsultation: true, CategorySupplies: true,
	CategoryEquipment: true, CategoryLab: true, CategorySalary: true, CategoryRent: true,
	CategoryUtilities: true, CategoryInsurance: true, CategoryMarketing: true, CategoryOther: true,
}

func (c Category) Valid() bool { return validCategories[c] }

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentInsurance    PaymentMethod = "insurance"
	PaymentOther        PaymentMethod = "other"
)

var validPaymentMethods = map[PaymentMethod]bool{
	PaymentCash: true, PaymentCard: true, PaymentBankTransfer: true,
	PaymentCheque: true, PaymentInsurance: true, PaymentOther: true,
}

func (p PaymentMethod) Valid() bool { return validPaymentMethods[p] }

// Entry is one recorded money movement. Amount and Date are nullable
// because rows written before validation existed may lack them.
type Entry struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	OwnerID       string              `db:"owner_id" json:"-"`
	Direction     Direction           `db:"direction" json:"direction"`
	PatientID     *uuid.UUID          `db:"patient_id" json:"patient_id,omitempty"`
	Category      Category            `db:"category" json:"category"`
	Amount        decimal.NullDecimal `db:"amount" json:"amount"`
	Date          *caldate.Date       `db:"entry_date" json:"date"`
	PaymentMethod PaymentMethod       `db:"payment_method" json:"payment_method"`
	Vendor        *string             `db:"vendor" json:"vendor,omitempty"`
	ReceiptNumber *string             `db:"receipt_number" json:"receipt_number,omitempty"`
	TransactionID *string             `db:"transaction_id" json:"transaction_id,omitempty"`
	Notes         *string             `db:"notes" json:"notes,omitempty"`
	ClosedAt      *time.Time          `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

func (e *Entry) LedgerEntry() *Entry { return e }

// EntryView is an entry joined to its patient summary.
type EntryView struct {
	Entry
	Patient *identity.PatientSummary `json:"patient,omitempty"`
}

// Record is satisfied by *Entry and *EntryView so the aggregator accepts
// either the narrow row or the joined view.
type Record interface {
	LedgerEntry() *Entry
}
