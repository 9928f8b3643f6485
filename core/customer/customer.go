package customer

import "fmt"

// Status is the classification assigned to a record by a reconciliation pass.
type Status string

const (
	// StatusAdded marks a business key never seen by the previous pass.
	StatusAdded Status = "Added"
	// StatusMissing marks a previously reconciled key absent from the candidates.
	StatusMissing Status = "Missing"
	// StatusDifferent marks a known key whose name changed.
	StatusDifferent Status = "Different"
	// StatusUnchanged marks a known key whose name is byte-equal to the previous pass.
	StatusUnchanged Status = "Unchanged"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAdded, StatusMissing, StatusDifferent, StatusUnchanged:
		return true
	default:
		return false
	}
}

// Customer is a single customer record.
type Customer struct {
	// Name is the display name. It is opaque to the engine.
	Name string `json:"name"`

	// Fax is the secondary attribute carried alongside the name.
	Fax string `json:"fax,omitempty"`

	// CompanyID is the stable business key used to match records across passes.
	CompanyID string `json:"company_id" validate:"required"`

	// ExternalID is the identifier assigned by the external directory.
	ExternalID string `json:"external_id,omitempty"`

	// Status is set only on records emitted by the engine.
	Status Status `json:"status,omitempty"`
}

// New builds an input record. Status and ExternalID are left empty.
func New(name, fax, companyID string) Customer {
	return Customer{Name: name, Fax: fax, CompanyID: companyID}
}

func (c Customer) String() string {
	return fmt.Sprintf("Name: %s, Fax: %s, ExternalID: %s, CompanyID: %s, Status: %s",
		c.Name, c.Fax, c.ExternalID, c.CompanyID, c.Status)
}
