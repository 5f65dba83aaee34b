package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Minimal ABI encoding/decoding for the fixed set of factory and group
// contract reads. Only the types those functions actually use are
// implemented: static words, strings, and one-dimensional dynamic arrays
// of static elements.

const wordSize = 32

// selector returns the 4-byte function selector for a canonical signature
// like "getGroupsByUser(address)".
func selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// encodeCall builds calldata from a function signature and pre-encoded
// 32-byte argument words. All arguments used here are static.
func encodeCall(signature string, args ...[wordSize]byte) string {
	data := make([]byte, 0, 4+len(args)*wordSize)
	data = append(data, selector(signature)...)
	for _, a := range args {
		data = append(data, a[:]...)
	}
	return "0x" + hex.EncodeToString(data)
}

// encodeAddress left-pads a 20-byte address into a 32-byte word
func encodeAddress(address string) ([wordSize]byte, error) {
	var word [wordSize]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(address), "0x"))
	if err != nil {
		return word, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if len(raw) != 20 {
		return word, fmt.Errorf("invalid address length %d", len(raw))
	}
	copy(word[wordSize-20:], raw)
	return word, nil
}

// encodeUint64 encodes an unsigned integer into a 32-byte word
func encodeUint64(n uint64) [wordSize]byte {
	var word [wordSize]byte
	big.NewInt(0).SetUint64(n).FillBytes(word[:])
	return word
}

// abiReader decodes a flat ABI return payload word by word
type abiReader struct {
	data []byte
}

// newABIReader parses a 0x-prefixed hex return payload
func newABIReader(result string) (*abiReader, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(result, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	if len(raw)%wordSize != 0 {
		return nil, fmt.Errorf("payload length %d is not word aligned", len(raw))
	}
	return &abiReader{data: raw}, nil
}

// word returns the 32-byte word starting at the given byte offset
func (r *abiReader) word(offset int) ([]byte, error) {
	if offset < 0 || offset+wordSize > len(r.data) {
		return nil, fmt.Errorf("word at offset %d out of bounds (payload %d bytes)", offset, len(r.data))
	}
	return r.data[offset : offset+wordSize], nil
}

// uint256 decodes the word at the given byte offset as an unsigned integer
func (r *abiReader) uint256(offset int) (*big.Int, error) {
	w, err := r.word(offset)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// int256 decodes the word at the given byte offset as a signed integer
// (two's complement)
func (r *abiReader) int256(offset int) (*big.Int, error) {
	w, err := r.word(offset)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(w)
	if w[0]&0x80 != 0 {
		// Negative: subtract 2^256
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return n, nil
}

// address decodes the word at the given byte offset as a 0x-prefixed address
func (r *abiReader) address(offset int) (string, error) {
	w, err := r.word(offset)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(w[wordSize-20:]), nil
}

// boolean decodes the word at the given byte offset as a bool
func (r *abiReader) boolean(offset int) (bool, error) {
	n, err := r.uint256(offset)
	if err != nil {
		return false, err
	}
	return n.Sign() != 0, nil
}

// offset reads a dynamic-type head word and returns it as a byte offset
// relative to the given base
func (r *abiReader) offset(headOffset, base int) (int, error) {
	n, err := r.uint256(headOffset)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("offset at %d overflows", headOffset)
	}
	return base + int(n.Int64()), nil
}

// length decodes a dynamic-type length word at the given byte offset.
// RPC replies are untrusted input: a length that cannot fit in the payload
// is rejected here, before any slicing arithmetic can wrap.
func (r *abiReader) length(offset int) (int, error) {
	n, err := r.uint256(offset)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() > int64(len(r.data)) {
		return 0, fmt.Errorf("length %s at %d exceeds payload (%d bytes)", n, offset, len(r.data))
	}
	return int(n.Int64()), nil
}

// stringAt decodes a dynamic string whose length word sits at the given
// byte offset
func (r *abiReader) stringAt(offset int) (string, error) {
	n, err := r.length(offset)
	if err != nil {
		return "", err
	}
	start := offset + wordSize
	if start+n > len(r.data) {
		return "", fmt.Errorf("string at %d overruns payload", offset)
	}
	return string(r.data[start : start+n]), nil
}

// arrayAt decodes a dynamic array of static elements at the given byte
// offset, invoking decode once per element with the element's byte offset
func (r *abiReader) arrayAt(offset int, decode func(elemOffset int) error) error {
	n, err := r.length(offset)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := decode(offset + wordSize + i*wordSize); err != nil {
			return err
		}
	}
	return nil
}

// addressArrayAt decodes address[] at the given byte offset
func (r *abiReader) addressArrayAt(offset int) ([]string, error) {
	var out []string
	err := r.arrayAt(offset, func(elem int) error {
		a, err := r.address(elem)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

// intArrayAt decodes int256[] at the given byte offset
func (r *abiReader) intArrayAt(offset int) ([]*big.Int, error) {
	var out []*big.Int
	err := r.arrayAt(offset, func(elem int) error {
		n, err := r.int256(elem)
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// stringArrayAt decodes string[] at the given byte offset. Each element's
// head word is an offset relative to the array's data area.
func (r *abiReader) stringArrayAt(offset int) ([]string, error) {
	n, err := r.length(offset)
	if err != nil {
		return nil, err
	}
	base := offset + wordSize

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		elemOffset, err := r.offset(base+i*wordSize, base)
		if err != nil {
			return nil, err
		}
		s, err := r.stringAt(elemOffset)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
