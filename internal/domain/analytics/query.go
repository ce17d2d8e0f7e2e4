package analytics

import (
	"fmt"
	"time"

	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Entity names a record set the analytics store can query
type Entity string

const (
	EntityUser    Entity = "user"
	EntityDevice  Entity = "device"
	EntityPayment Entity = "payment"
)

// Field is a dotted path from an entity to a filterable column
type Field string

const (
	FieldRoleName             Field = "role.name"
	FieldStoreID              Field = "store_id"
	FieldCreatedAt            Field = "created_at"
	FieldEnrolmentUserStoreID Field = "enrolment.user.store_id"
	FieldDate                 Field = "date"
	FieldPlanUserStoreID      Field = "plan.user.store_id"
)

// Op is a comparison operator
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

type valueKind int

const (
	kindString valueKind = iota
	kindUUID
	kindTime
)

// fields is the closed set of supported predicates per entity
var fields = map[Entity]map[Field]valueKind{
	EntityUser: {
		FieldRoleName:  kindString,
		FieldStoreID:   kindUUID,
		FieldCreatedAt: kindTime,
	},
	EntityDevice: {
		FieldCreatedAt:            kindTime,
		FieldEnrolmentUserStoreID: kindUUID,
	},
	EntityPayment: {
		FieldDate:            kindTime,
		FieldPlanUserStoreID: kindUUID,
	},
}

// storeFields maps each entity to the path used for store scoping
var storeFields = map[Entity]Field{
	EntityUser:    FieldStoreID,
	EntityDevice:  FieldEnrolmentUserStoreID,
	EntityPayment: FieldPlanUserStoreID,
}

// timeFields maps each entity to the timestamp its daily buckets use
var timeFields = map[Entity]Field{
	EntityUser:    FieldCreatedAt,
	EntityDevice:  FieldCreatedAt,
	EntityPayment: FieldDate,
}

// ErrUnsupportedPredicate is returned by Build for predicates outside the closed set
var ErrUnsupportedPredicate = shared.NewDomainError("INVALID_INPUT", "Unsupported query predicate")

// Predicate is a single validated comparison
type Predicate struct {
	Field Field
	Op    Op
	Value any
}

// Query is an immutable, validated filter over one entity
type Query struct {
	entity     Entity
	predicates []Predicate
}

// Entity returns the queried entity
func (q Query) Entity() Entity {
	return q.entity
}

// Predicates returns a copy of the query's predicates in insertion order
func (q Query) Predicates() []Predicate {
	out := make([]Predicate, len(q.predicates))
	copy(out, q.predicates)
	return out
}

// Builder accumulates predicates for a Query. The first invalid predicate
// is remembered and reported by Build.
type Builder struct {
	entity     Entity
	predicates []Predicate
	err        error
}

// NewQuery starts a query over entity
func NewQuery(entity Entity) *Builder {
	b := &Builder{entity: entity}
	if _, ok := fields[entity]; !ok {
		b.err = unsupported("unknown entity %q", entity)
	}
	return b
}

// Where adds a comparison
func (b *Builder) Where(field Field, op Op, value any) *Builder {
	if b.err != nil {
		return b
	}
	kind, ok := fields[b.entity][field]
	if !ok {
		b.err = unsupported("field %q is not filterable on %s", field, b.entity)
		return b
	}
	switch op {
	case OpEq:
	case OpGte, OpLte:
		if kind != kindTime {
			b.err = unsupported("operator %s requires a time field, got %q", op, field)
			return b
		}
	default:
		b.err = unsupported("unknown operator %q", op)
		return b
	}
	v, err := coerce(kind, value)
	if err != nil {
		b.err = unsupported("field %q: %v", field, err)
		return b
	}
	b.predicates = append(b.predicates, Predicate{Field: field, Op: op, Value: v})
	return b
}

// Between adds an inclusive time range on field
func (b *Builder) Between(field Field, from, to time.Time) *Builder {
	return b.Where(field, OpGte, from).Where(field, OpLte, to)
}

// InWindow restricts the entity's bucketing timestamp to [from, to]
func (b *Builder) InWindow(from, to time.Time) *Builder {
	return b.Between(timeFields[b.entity], from, to)
}

// InStore restricts the query to a store through the entity's association
// path. A nil store leaves the query unscoped.
func (b *Builder) InStore(storeID *uuid.UUID) *Builder {
	if storeID == nil {
		return b
	}
	return b.Where(storeFields[b.entity], OpEq, *storeID)
}

// Build validates and returns the query
func (b *Builder) Build() (Query, error) {
	if b.err != nil {
		return Query{}, b.err
	}
	return Query{entity: b.entity, predicates: b.Predicates()}, nil
}

// Predicates returns the predicates collected so far
func (b *Builder) Predicates() []Predicate {
	out := make([]Predicate, len(b.predicates))
	copy(out, b.predicates)
	return out
}

func coerce(kind valueKind, value any) (any, error) {
	switch kind {
	case kindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case kindUUID:
		switch v := value.(type) {
		case uuid.UUID:
			return v, nil
		case *uuid.UUID:
			if v != nil {
				return *v, nil
			}
		}
	case kindTime:
		if t, ok := value.(time.Time); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unexpected value type %T", value)
}

func unsupported(format string, args ...any) error {
	cause := fmt.Errorf(format, args...)
	return shared.WrapDomainError(ErrUnsupportedPredicate.Code, ErrUnsupportedPredicate.Message+": "+cause.Error(), cause)
}
