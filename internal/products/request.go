package products

import (
	"encoding/json"
	"github.com/ariefcatur/erp-lite/internal/validate"
	"strings"
)

// Input is a full product body. Numbers are pointers so that a missing field
// is reported instead of being read as zero.
type Input struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Type          string   `json:"type" validate:"required,oneof=raw finished semi-finished"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	Quantity      *int     `json:"quantity" validate:"required,gte=0"`
	Supplier      string   `json:"supplier" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Brand         string   `json:"brand" validate:"required"`
	BatchNumber   string   `json:"batchNumber" validate:"required"`
	ExpiryDate    *Date    `json:"expiryDate" validate:"required"`
	MinStockLevel *int     `json:"minStockLevel" validate:"required,gte=0"`
	Image         string   `json:"image"`

	bad map[string]string
}

// Patch carries only the fields a client wants to change.
type Patch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Type          *string  `json:"type"`
	Price         *float64 `json:"price"`
	Quantity      *int     `json:"quantity"`
	Supplier      *string  `json:"supplier"`
	Category      *string  `json:"category"`
	Brand         *string  `json:"brand"`
	BatchNumber   *string  `json:"batchNumber"`
	ExpiryDate    *Date    `json:"expiryDate"`
	MinStockLevel *int     `json:"minStockLevel"`
	Image         *string  `json:"image"`

	bad map[string]string
}

// UnmarshalJSON decodes field by field so that every value of the wrong type
// is reported at validation instead of failing the whole body.
func (in *Input) UnmarshalJSON(b []byte) error {
	type fields Input
	var f fields
	bad, err := decodeFields(b, &f)
	if err != nil {
		return err
	}
	*in = Input(f)
	in.bad = bad
	return nil
}

func (pt *Patch) UnmarshalJSON(b []byte) error {
	type fields Patch
	var f fields
	bad, err := decodeFields(b, &f)
	if err != nil {
		return err
	}
	*pt = Patch(f)
	pt.bad = bad
	return nil
}

func decodeFields(b []byte, dst any) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return validate.DecodeFields(raw, dst), nil
}

func (in *Input) normalize() {
	for _, f := range []*string{&in.Name, &in.Type, &in.Supplier, &in.Category, &in.Brand, &in.BatchNumber, &in.Image} {
		*f = strings.TrimSpace(*f)
	}
	in.Type = strings.ToLower(in.Type)
}

func (in Input) validate() error {
	in.normalize()
	return validate.StructWith(in, in.bad)
}

// apply copies a validated Input onto p.
func (in Input) apply(p *Product) {
	in.normalize()
	p.Name = in.Name
	p.Description = in.Description
	p.Type = in.Type
	p.Price = *in.Price
	p.Quantity = *in.Quantity
	p.Supplier = in.Supplier
	p.Category = in.Category
	p.Brand = in.Brand
	p.BatchNumber = in.BatchNumber
	p.ExpiryDate = in.ExpiryDate.Time
	p.MinStockLevel = *in.MinStockLevel
	p.Image = in.Image
}

// merge overlays the patch on the current product as a full Input.
func (pt Patch) merge(p Product) Input {
	in := Input{
		Name:          p.Name,
		Description:   p.Description,
		Type:          p.Type,
		Price:         &p.Price,
		Quantity:      &p.Quantity,
		Supplier:      p.Supplier,
		Category:      p.Category,
		Brand:         p.Brand,
		BatchNumber:   p.BatchNumber,
		ExpiryDate:    &Date{p.ExpiryDate},
		MinStockLevel: &p.MinStockLevel,
		Image:         p.Image,
		bad:           pt.bad,
	}
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&in.Name, pt.Name)
	setStr(&in.Description, pt.Description)
	setStr(&in.Type, pt.Type)
	setStr(&in.Supplier, pt.Supplier)
	setStr(&in.Category, pt.Category)
	setStr(&in.Brand, pt.Brand)
	setStr(&in.BatchNumber, pt.BatchNumber)
	setStr(&in.Image, pt.Image)
	if pt.Price != nil {
		in.Price = pt.Price
	}
	if pt.Quantity != nil {
		in.Quantity = pt.Quantity
	}
	if pt.MinStockLevel != nil {
		in.MinStockLevel = pt.MinStockLevel
	}
	if pt.ExpiryDate != nil {
		in.ExpiryDate = pt.ExpiryDate
	}
	return in
}
