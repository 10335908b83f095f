package domain

import "strconv"

const (
	classNamePrefix  = "DeobfClass"
	fieldNamePrefix  = "field"
	methodNamePrefix = "method"
)

// NameAllocator hands out fresh replacement identifiers. Each kind has its own
// counter starting at 1. An allocator belongs to exactly one run.
type NameAllocator struct {
	classes int
	fields  int
	methods int
}

// NewNameAllocator returns an allocator with all counters at zero.
func NewNameAllocator() *NameAllocator {
	return &NameAllocator{}
}

// NextClassName returns DeobfClass1, DeobfClass2, ...
func (a *NameAllocator) NextClassName() string {
	a.classes++
	return classNamePrefix + strconv.Itoa(a.classes)
}

// NextFieldName returns field1, field2, ...
func (a *NameAllocator) NextFieldName() string {
	a.fields++
	return fieldNamePrefix + strconv.Itoa(a.fields)
}

// NextMethodName returns method1, method2, ...
func (a *NameAllocator) NextMethodName() string {
	a.methods++
	return methodNamePrefix + strconv.Itoa(a.methods)
}
