// Package shape decodes and encodes wire values described by a type
// expression instead of a compiled Go type.
//
// Grammar:
//
//	expr := "u8" | "u16" | "u32" | "u64" | "varuint" | "string"
//	      | "hash" | "addr" | "bytes" | "seq<" expr ">"
//
// Decoded values are JSON friendly: integers are uint64, hashes and bytes
// are lowercase hex strings, addresses are "ip:port" strings and sequences
// are []any.
package shape
