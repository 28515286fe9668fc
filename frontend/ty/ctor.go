package ty

type CtorKind uint8

const (
	CtorBool CtorKind = iota
	CtorChar
	CtorInt
	CtorFloat
	CtorStr
	CtorNever
	CtorAdt
	CtorTuple
	CtorRef
	CtorSlice
	CtorArray
	CtorFnPtr
)

// TypeCtor identifies the head of an Apply type.
// Name distinguishes ADTs (Vec, Option) and numeric widths (i32, f64).
type TypeCtor struct {
	Kind CtorKind
	Name string
}

func (c TypeCtor) IsInt() bool   { return c.Kind == CtorInt }
func (c TypeCtor) IsFloat() bool { return c.Kind == CtorFloat }

var intNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
}

var floatNames = map[string]bool{"f32": true, "f64": true}

func Simple(ctor TypeCtor) Ty {
	return Apply{Ctor: ctor}
}

func Int(name string) Ty   { return Simple(TypeCtor{Kind: CtorInt, Name: name}) }
func Float(name string) Ty { return Simple(TypeCtor{Kind: CtorFloat, Name: name}) }
func Bool() Ty             { return Simple(TypeCtor{Kind: CtorBool, Name: "bool"}) }
func Char() Ty             { return Simple(TypeCtor{Kind: CtorChar, Name: "char"}) }
func Str() Ty              { return Simple(TypeCtor{Kind: CtorStr, Name: "str"}) }
func Never() Ty            { return Simple(TypeCtor{Kind: CtorNever, Name: "!"}) }

func Adt(name string, params ...Ty) Ty {
	return Apply{Ctor: TypeCtor{Kind: CtorAdt, Name: name}, Params: params}
}

func Tuple(fields ...Ty) Ty {
	return Apply{Ctor: TypeCtor{Kind: CtorTuple}, Params: fields}
}

func Ref(inner Ty) Ty {
	return Apply{Ctor: TypeCtor{Kind: CtorRef}, Params: Substs{inner}}
}

func Slice(elem Ty) Ty {
	return Apply{Ctor: TypeCtor{Kind: CtorSlice}, Params: Substs{elem}}
}

func Array(elem Ty) Ty {
	return Apply{Ctor: TypeCtor{Kind: CtorArray}, Params: Substs{elem}}
}

// FnPtr is a function pointer; the last parameter is the return type
func FnPtr(args []Ty, ret Ty) Ty {
	params := make(Substs, 0, len(args)+1)
	params = append(params, args...)
	params = append(params, ret)
	return Apply{Ctor: TypeCtor{Kind: CtorFnPtr}, Params: params}
}
