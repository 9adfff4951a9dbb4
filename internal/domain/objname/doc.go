// Package objname implements structured resource names and the pattern matcher.
//
// This package is part of the domain layer and only imports the standard library.
//
// # Names
//
// A Name is an immutable identifier made of a domain and a set of key/value
// properties:
//
//	alphabet:letter=A
//	files:type=/etc,name=hosts
//
// The canonical property string sorts the pairs by key and joins them with
// commas. Two names in the same domain are equal iff their canonical property
// strings are equal, so insertion order never matters. A name with no
// properties canonicalizes to the empty string.
//
// # Patterns
//
// A Name is a pattern when its domain contains a wildcard ('*' or '?') or when
// it is flagged as a property-pattern. A property-pattern matches every name
// whose properties are a superset of the listed ones. Its string form ends
// with a '*' element:
//
//	alphabet:*
//	files:type=/etc,*
//
// Matches implements the relation between a concrete name and a pattern. A nil
// pattern matches everything.
package objname
