package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityType distinguishes income from expense entries.
type ActivityType string

const (
	TypeIncome  ActivityType = "INCOME"
	TypeExpense ActivityType = "EXPENSE"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ActivityState is the completion state of an activity. Only COMPLETED
// activities count toward monthly totals and balance.
type ActivityState string

const (
	StatePending   ActivityState = "PENDING"
	StateCompleted ActivityState = "COMPLETED"
)

// Valid reports whether s is one of the known states.
func (s ActivityState) Valid() bool {
	return s == StatePending || s == StateCompleted
}

// Category classifies an activity. Each category belongs to exactly one
// activity type.
type Category string

const (
	// Expense categories.
	CategoryAlimentacion    Category = "ALIMENTACION"
	CategoryTransporte      Category = "TRANSPORTE"
	CategoryVivienda        Category = "VIVIENDA"
	CategoryEntretenimiento Category = "ENTRETENIMIENTO"
	CategorySalud           Category = "SALUD"
	CategoryEducacion       Category = "EDUCACION"
	CategoryRopa            Category = "ROPA"
	CategoryOtrosGastos     Category = "OTROS_GASTOS"

	// Income categories.
	CategorySalario       Category = "SALARIO"
	CategoryRegalo        Category = "REGALO"
	CategoryOtrosIngresos Category = "OTROS_INGRESOS"
)

// categoryTypes is the category-to-type lookup table. The consistency
// invariant (category belongs to the activity's type) is enforced here,
// at the point both are known, not in the database schema.
var categoryTypes = map[Category]ActivityType{
	CategoryAlimentacion:    TypeExpense,
	CategoryTransporte:      TypeExpense,
	CategoryVivienda:        TypeExpense,
	CategoryEntretenimiento: TypeExpense,
	CategorySalud:           TypeExpense,
	CategoryEducacion:       TypeExpense,
	CategoryRopa:            TypeExpense,
	CategoryOtrosGastos:     TypeExpense,
	CategorySalario:         TypeIncome,
	CategoryRegalo:          TypeIncome,
	CategoryOtrosIngresos:   TypeIncome,
}

// Type returns the activity type a category belongs to. ok is false for
// unknown categories.
func (c Category) Type() (ActivityType, bool) {
	t, ok := categoryTypes[c]
	return t, ok
}

// CategoriesByType lists the categories allowed for a given type, in a
// stable order.
func CategoriesByType(t ActivityType) []Category {
	ordered := []Category{
		CategoryAlimentacion, CategoryTransporte, CategoryVivienda,
		CategoryEntretenimiento, CategorySalud, CategoryEducacion,
		CategoryRopa, CategoryOtrosGastos,
		CategorySalario, CategoryRegalo, CategoryOtrosIngresos,
	}
	var out []Category
	for _, c := range ordered {
		if categoryTypes[c] == t {
			out = append(out, c)
		}
	}
	return out
}

// Activity is one income or expense record. OwnerID is set at creation
// and never changes afterwards.
type Activity struct {
	ID          int64
	Description string
	Amount      decimal.Decimal
	Type        ActivityType
	Category    Category
	State       ActivityState
	CreatedAt   time.Time
	OwnerID     int64
}

// Validate checks the write-time invariants: a valid description, an
// amount within peso bounds, known type/category/state, the
// category-type consistency rule, and a present owner.
func (a Activity) Validate() error {
	if err := ValidateDescription(a.Description); err != nil {
		return err
	}
	if a.Amount.Sign() <= 0 {
		return ErrMalformedAmount
	}
	if a.Amount.LessThan(MinAmount) || a.Amount.GreaterThan(MaxAmount) {
		return ErrAmountOutOfRange
	}
	if !a.Type.Valid() {
		return ErrUnknownType
	}
	allowed, ok := a.Category.Type()
	if !ok {
		return ErrUnknownCategory
	}
	if allowed != a.Type {
		return ErrCategoryTypeMismatch
	}
	if !a.State.Valid() {
		return ErrUnknownState
	}
	if a.OwnerID == 0 {
		return ErrMissingOwner
	}
	return nil
}
