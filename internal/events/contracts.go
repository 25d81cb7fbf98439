package events

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	QuotationSubmittedName     = "quotation.submitted"
	QuotationStatusChangedName = "quotation.status_changed"
	EnquirySubmittedName       = "enquiry.submitted"
)

type QuotationSubmitted struct {
	QuotationID   uint            `json:"quotationId"`
	Number        string          `json:"number"`
	CustomerEmail string          `json:"customerEmail"`
	UserID        *uint           `json:"userId,omitempty"`
	ItemCount     int             `json:"itemCount"`
	FinalAmount   decimal.Decimal `json:"finalAmount"`
}

func (QuotationSubmitted) EventName() string      { return QuotationSubmittedName }
func (QuotationSubmitted) EventVersion() int      { return 1 }
func (e QuotationSubmitted) PartitionKey() string { return e.Number }

type QuotationStatusChanged struct {
	QuotationID uint   `json:"quotationId"`
	Number      string `json:"number"`
	From        string `json:"from"`
	To          string `json:"to"`
}

func (QuotationStatusChanged) EventName() string      { return QuotationStatusChangedName }
func (QuotationStatusChanged) EventVersion() int      { return 1 }
func (e QuotationStatusChanged) PartitionKey() string { return e.Number }

type EnquirySubmitted struct {
	EnquiryID      uint      `json:"enquiryId"`
	CarModel       string    `json:"carModel"`
	ProductType    string    `json:"productType"`
	DeliveryDate   time.Time `json:"deliveryDate"`
	DeliveryWindow string    `json:"deliveryWindow"`
}

func (EnquirySubmitted) EventName() string { return EnquirySubmittedName }
func (EnquirySubmitted) EventVersion() int { return 1 }
func (e EnquirySubmitted) PartitionKey() string {
	return "enquiry-" + strconv.FormatUint(uint64(e.EnquiryID), 10)
}
