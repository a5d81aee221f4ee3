// Package wire owns the ensicoin binary codec primitives.
//
// Ownership boundary:
// - VarUint prefix-byte integers
// - front-consuming Reader and append-only Writer
// - Encoder/Decoder contract for primitives, sequences and records
//
// Fixed-width integers are big-endian. Strings and sequences carry a VarUint
// length prefix. Hashes are 32 raw bytes. Addresses are the 16-byte
// IPv6(-mapped) address followed by a 2-byte port.
package wire
