// Package wiregen derives wire contract methods for struct types.
//
// For each selected struct it emits EncodeTo, which encodes every field in
// declaration order, and DecodeFrom, which decodes the same fields in the same
// order into a scratch value and assigns it only when every field succeeded.
//
// Structs are selected by name or by a //wire:record line in their doc
// comment. Typical use:
//
//	//go:generate go run github.com/danmuck/ensiwire/cmd/wirectl gen --input $GOFILE
package wiregen
