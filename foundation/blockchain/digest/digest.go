// Package digest implements the SHA-256 hash function used to fingerprint
// transactions, merkle nodes and blocks.
package digest

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"hash"
	"math/bits"
)

// Size is the number of bytes in a digest.
const Size = 32

// BlockSize is the size of the message block the compression function
// operates on, in bytes.
const BlockSize = 64

// Digest represents the 256 bit output of the hash function.
type Digest [Size]byte

// Empty is the digest of the empty byte sequence.
var Empty = Sum(nil)

// Sum returns the digest of the data.
func Sum(data []byte) Digest {
	var d state
	d.Reset()
	d.Write(data)
	return d.checkSum()
}

// Hash returns the hex encoded digest of the JSON representation of the value.
func Hash(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return Sum(data).Hex(), nil
}

// FromHex decodes a 64 character hex string into a digest.
func FromHex(s string) (Digest, error) {
	var d Digest

	if len(s) != 2*Size {
		return d, errors.New("invalid digest length")
	}

	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, err
	}

	return d, nil
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, d[:])
	return b
}

// =============================================================================

// Initial hash values: the first 32 bits of the fractional parts of the
// square roots of the first 8 primes.
var initial = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Round constants: the first 32 bits of the fractional parts of the cube
// roots of the first 64 primes.
var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// state is the streaming form of the hash function. It implements the
// hash.Hash interface so it can be plugged into the merkle tree.
type state struct {
	h   [8]uint32
	buf [BlockSize]byte
	nx  int
	len uint64
}

// New returns a hash.Hash computing the same digest as Sum.
func New() hash.Hash {
	var d state
	d.Reset()
	return &d
}

// Reset puts the state back to the initial hash values.
func (d *state) Reset() {
	d.h = initial
	d.nx = 0
	d.len = 0
}

// Size returns the number of bytes Sum will return.
func (d *state) Size() int {
	return Size
}

// BlockSize returns the hash's underlying block size.
func (d *state) BlockSize() int {
	return BlockSize
}

// Write adds more data to the running hash. It never returns an error.
func (d *state) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)

	if d.nx > 0 {
		c := copy(d.buf[d.nx:], p)
		d.nx += c
		if d.nx == BlockSize {
			d.compress(d.buf[:])
			d.nx = 0
		}
		p = p[c:]
	}

	for len(p) >= BlockSize {
		d.compress(p[:BlockSize])
		p = p[BlockSize:]
	}

	if len(p) > 0 {
		d.nx = copy(d.buf[:], p)
	}

	return n, nil
}

// Sum appends the current digest to b and returns the resulting slice. It
// does not change the underlying hash state.
func (d *state) Sum(b []byte) []byte {
	cpy := *d
	sum := cpy.checkSum()
	return append(b, sum[:]...)
}

// checkSum pads the message and produces the final digest.
func (d *state) checkSum() Digest {
	bitLen := d.len << 3

	// Append the 1 bit followed by zeros until the length is 56 mod 64.
	var pad [BlockSize + 8]byte
	pad[0] = 0x80
	padLen := 56 - int(d.len%BlockSize)
	if padLen <= 0 {
		padLen += BlockSize
	}
	d.Write(pad[:padLen])

	// Append the original message length in bits as 64 bit big endian.
	binary.BigEndian.PutUint64(pad[:8], bitLen)
	d.Write(pad[:8])

	if d.nx != 0 {
		panic("digest: buffer not flushed after padding")
	}

	var out Digest
	for i, v := range d.h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}

	return out
}

// compress runs the 64 rounds of the compression function over a single
// 512 bit message block.
func (d *state) compress(block []byte) {
	var w [64]uint32

	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}

	for i := 16; i < 64; i++ {
		s0 := bits.RotateLeft32(w[i-15], -7) ^ bits.RotateLeft32(w[i-15], -18) ^ (w[i-15] >> 3)
		s1 := bits.RotateLeft32(w[i-2], -17) ^ bits.RotateLeft32(w[i-2], -19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, dd, e, f, g, h := d.h[0], d.h[1], d.h[2], d.h[3], d.h[4], d.h[5], d.h[6], d.h[7]

	for i := 0; i < 64; i++ {
		s1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := h + s1 + ch + k[i] + w[i]

		s0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		h = g
		g = f
		f = e
		e = dd + t1
		dd = c
		c = b
		b = a
		a = t1 + t2
	}

	d.h[0] += a
	d.h[1] += b
	d.h[2] += c
	d.h[3] += dd
	d.h[4] += e
	d.h[5] += f
	d.h[6] += g
	d.h[7] += h
}
