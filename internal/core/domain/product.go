package domain

// Category is the closed set of product categories.
type Category string

const (
	CategoryFruits Category = "frutas"
	CategoryGrains Category = "graos"
	CategoryDairy  Category = "laticinios"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFruits, CategoryGrains, CategoryDairy:
		return true
	default:
		return false
	}
}

// Product is a listing owned by a single producer.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"nome"`
	Description *string  `json:"descricao"`
	Price       Money    `json:"preco"`
	Quantity    int      `json:"quantidade"`
	Category    Category `json:"categoria"`
	Location    *string  `json:"localizacao"`
	OwnerID     int64    `json:"produtor_id"`
}

// OwnedBy reports whether u is the listing's producer.
func (p *Product) OwnedBy(u *User) bool {
	return u != nil && p.OwnerID == u.ID
}

// Field is a single optional update. A zero Field leaves the target untouched.
type Field[T any] struct {
	Set   bool
	Value T
}

// SetTo returns a Field that overwrites the target with v.
func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// ProductPatch is a sparse update: only Set fields are applied. Description
// and Location accept a nil Value, which clears the stored value.
type ProductPatch struct {
	Name        Field[string]
	Description Field[*string]
	Price       Field[Money]
	Quantity    Field[int]
	Category    Field[Category]
	Location    Field[*string]
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Price.Set &&
		!p.Quantity.Set && !p.Category.Set && !p.Location.Set
}

// Apply writes every Set field onto prod.
func (p ProductPatch) Apply(prod *Product) {
	if p.Name.Set {
		prod.Name = p.Name.Value
	}
	if p.Description.Set {
		prod.Description = p.Description.Value
	}
	if p.Price.Set {
		prod.Price = p.Price.Value
	}
	if p.Quantity.Set {
		prod.Quantity = p.Quantity.Value
	}
	if p.Category.Set {
		prod.Category = p.Category.Value
	}
	if p.Location.Set {
		prod.Location = p.Location.Value
	}
}
