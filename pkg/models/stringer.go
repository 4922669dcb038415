package models

// String methods for custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

func (c Category) String() string { return string(c) }

func (s Severity) String() string { return string(s) }

func (k PerfKind) String() string { return string(k) }

func (k DocKind) String() string { return string(k) }
