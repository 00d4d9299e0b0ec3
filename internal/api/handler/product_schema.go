package handler

import (
	"bytes"
	"encoding/json"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

type createProductRequest struct {
	Name        string      `json:"nome" validate:"required,min=3,max=100"`
	Description *string     `json:"descricao" validate:"omitempty,max=500"`
	Price       json.Number `json:"preco" validate:"required,money" swaggertype:"string" example:"12.50"`
	Quantity    *int        `json:"quantidade" validate:"required,min=0"`
	Category    string      `json:"categoria" validate:"required,oneof=frutas graos laticinios"`
	Location    *string     `json:"localizacao" validate:"omitempty,max=255"`
}

// optional distinguishes an absent JSON member from an explicit null.
type optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(b, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// updateProductRequest is a sparse update: absent members are left alone.
type updateProductRequest struct {
	Name        optional[string]      `json:"nome" swaggertype:"string"`
	Description optional[string]      `json:"descricao" swaggertype:"string"`
	Price       optional[json.Number] `json:"preco" swaggertype:"string"`
	Quantity    optional[int]         `json:"quantidade" swaggertype:"integer"`
	Category    optional[string]      `json:"categoria" swaggertype:"string"`
	Location    optional[string]      `json:"localizacao" swaggertype:"string"`
}

// toPatch validates every present member. descricao and localizacao may be
// null to clear them; null elsewhere is rejected.
func (r updateProductRequest) toPatch(v *echoValidator) (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	verr := domain.NewValidationError()

	notNull := func(field string, present, null bool) bool {
		if present && null {
			verr.Add(field, "must not be null")
			return false
		}
		return present
	}
	nullable := func(field string, o optional[string], tag string) domain.Field[*string] {
		if !o.Present {
			return domain.Field[*string]{}
		}
		if o.Null {
			return domain.SetTo[*string](nil)
		}
		v.Var(verr, field, o.Value, tag)
		s := o.Value
		return domain.SetTo(&s)
	}

	if notNull("nome", r.Name.Present, r.Name.Null) {
		v.Var(verr, "nome", r.Name.Value, "min=3,max=100")
		patch.Name = domain.SetTo(r.Name.Value)
	}
	patch.Description = nullable("descricao", r.Description, "max=500")
	if notNull("preco", r.Price.Present, r.Price.Null) {
		m, err := domain.ParseMoney(r.Price.Value.String())
		if err != nil || m <= 0 {
			verr.Add("preco", "must be a positive amount with at most 8 integer digits and 2 decimal places")
		}
		patch.Price = domain.SetTo(m)
	}
	if notNull("quantidade", r.Quantity.Present, r.Quantity.Null) {
		v.Var(verr, "quantidade", r.Quantity.Value, "min=0")
		patch.Quantity = domain.SetTo(r.Quantity.Value)
	}
	if notNull("categoria", r.Category.Present, r.Category.Null) {
		v.Var(verr, "categoria", r.Category.Value, "oneof=frutas graos laticinios")
		patch.Category = domain.SetTo(domain.Category(r.Category.Value))
	}
	patch.Location = nullable("localizacao", r.Location, "max=255")

	if err := verr.OrNil(); err != nil {
		return domain.ProductPatch{}, err
	}
	return patch, nil
}
