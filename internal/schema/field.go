package schema

// Kind is the structural type of a front matter field.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindDate
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field specifies one front matter key.
//
// Optional fields that are absent take Default; optional lists without a
// default become empty lists and optional objects stay absent.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	NonEmpty bool
	Default  any
	Fields   []Field // KindObject
	Elem     *Field  // KindList
}

// Schema is the set of field rules for one content type.
type Schema struct {
	Fields []Field
}

// Field constructors keep the per-type schema tables readable.

func str(name string) Field     { return Field{Name: name, Kind: KindString} }
func reqStr(name string) Field  { return Field{Name: name, Kind: KindString, Required: true, NonEmpty: true} }
func number(name string) Field  { return Field{Name: name, Kind: KindNumber} }
func date(name string) Field    { return Field{Name: name, Kind: KindDate} }
func strList(name string) Field { return Field{Name: name, Kind: KindList, Elem: &Field{Kind: KindString, NonEmpty: true}} }

func withDefault(f Field, v any) Field {
	f.Default = v
	return f
}

func required(f Field) Field {
	f.Required = true
	return f
}

func nonEmpty(f Field) Field {
	f.NonEmpty = true
	return f
}

func object(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, Fields: fields}
}

func objList(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindList, Elem: &Field{Kind: KindObject, Fields: fields}}
}
