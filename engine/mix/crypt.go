package mix

import (
	"crypto/cipher"
	"math/big"

	"golang.org/x/crypto/blowfish"
)

const (
	keySourceSize = 80
	keyBlockSize  = 40
	keyBlockOut   = 39
	blowfishKey   = 56
)

// Westwood public key. The 80-byte key source is two little-endian RSA
// blocks; raising each to e mod n yields 39 key bytes per block.
var (
	rsaModulus  = hexBig("0x51bcda086d39fce4565160d651713fa2e8aa54fa6682b04aabdd0e6af8b0c1e6d1fb4f3daa437f15")
	rsaExponent = big.NewInt(0x10001)
)

func hexBig(s string) *big.Int {
	v := new(big.Int)
	v.SetString(s, 0)
	return v
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

// deriveKey turns the key source into the 56-byte Blowfish key.
func deriveKey(src []byte) []byte {
	key := make([]byte, 0, 2*keyBlockOut)
	for off := 0; off+keyBlockSize <= len(src); off += keyBlockSize {
		c := new(big.Int).SetBytes(reverse(src[off : off+keyBlockSize]))
		m := new(big.Int).Exp(c, rsaExponent, rsaModulus)

		le := make([]byte, keyBlockSize)
		be := m.Bytes()
		copy(le, reverse(be))
		key = append(key, le[:keyBlockOut]...)
	}
	return key[:blowfishKey]
}

// The game's Blowfish loads each 32-bit half of a block little-endian,
// x/crypto loads them big-endian, so halves are byte-swapped around the call.
func swapHalves(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5], b[6], b[7] = b[7], b[6], b[5], b[4]
}

type westwoodCipher struct {
	c *blowfish.Cipher
}

func newCipher(key []byte) (cipher.Block, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return westwoodCipher{c}, nil
}

func (w westwoodCipher) BlockSize() int { return blowfish.BlockSize }

func (w westwoodCipher) Encrypt(dst, src []byte) {
	copy(dst, src[:8])
	swapHalves(dst)
	w.c.Encrypt(dst, dst)
	swapHalves(dst)
}

func (w westwoodCipher) Decrypt(dst, src []byte) {
	copy(dst, src[:8])
	swapHalves(dst)
	w.c.Decrypt(dst, dst)
	swapHalves(dst)
}

func decryptECB(c cipher.Block, data []byte) {
	bs := c.BlockSize()
	for i := 0; i+bs <= len(data); i += bs {
		c.Decrypt(data[i:i+bs], data[i:i+bs])
	}
}
