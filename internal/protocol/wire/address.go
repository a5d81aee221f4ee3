package wire

import (
	"encoding/binary"
	"net/netip"
)

// AddressSize is the byte length of an Address on the wire.
const AddressSize = 16 + 2

// Address is a peer network address in its wire form. IPv4 peers use the
// IPv4-mapped IPv6 form. The zero Address is [::]:0.
type Address struct {
	IP   [16]byte
	Port uint16
}

// NewAddress converts ap to its wire form. IPv6 zones are dropped.
func NewAddress(ap netip.AddrPort) Address {
	return Address{IP: ap.Addr().As16(), Port: ap.Port()}
}

// Addr returns the IP with IPv4-mapped addresses unmapped.
func (a Address) Addr() netip.Addr {
	return netip.AddrFrom16(a.IP).Unmap()
}

// ParseAddress parses "host:port" as accepted by netip.ParseAddrPort.
func ParseAddress(s string) (Address, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(ap), nil
}

// AddrPort returns the address with IPv4-mapped addresses unmapped.
func (a Address) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.Addr(), a.Port)
}

func (a Address) String() string {
	return a.AddrPort().String()
}

// ReadAddress reads the address as two big-endian 64-bit words (high, low)
// followed by a big-endian port.
func (r *Reader) ReadAddress() (Address, error) {
	start := r.off
	a, err := r.readAddress()
	if err != nil {
		r.off = start
		return Address{}, err
	}
	return a, nil
}

func (r *Reader) readAddress() (Address, error) {
	high, err := r.ReadUint64()
	if err != nil {
		return Address{}, withContext(withType(err, "Address"), "reading address ip high")
	}
	low, err := r.ReadUint64()
	if err != nil {
		return Address{}, withContext(withType(err, "Address"), "reading address ip low")
	}
	port, err := r.ReadUint16()
	if err != nil {
		return Address{}, withContext(withType(err, "Address"), "reading address port")
	}
	var a Address
	binary.BigEndian.PutUint64(a.IP[:8], high)
	binary.BigEndian.PutUint64(a.IP[8:], low)
	a.Port = port
	return a, nil
}

func (w *Writer) WriteAddress(a Address) {
	w.WriteUint64(binary.BigEndian.Uint64(a.IP[:8]))
	w.WriteUint64(binary.BigEndian.Uint64(a.IP[8:]))
	w.WriteUint16(a.Port)
}

func (a Address) EncodeTo(w *Writer) {
	w.WriteAddress(a)
}

func (a *Address) DecodeFrom(r *Reader) error {
	v, err := r.ReadAddress()
	if err != nil {
		return err
	}
	*a = v
	return nil
}
