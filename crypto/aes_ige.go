package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/go-faster/errors"
	"github.com/gotd/ige"
)

// IGEEncrypt encrypts plain into a freshly allocated buffer. AES-IGE chains
// each block against both the previous ciphertext and the previous
// plaintext block, which is why it needs a full 32-byte IV (two 16-byte
// halves) rather than AES-CBC's one.
//
// key and iv must each be exactly 32 bytes; plain's length must be a
// multiple of 16.
func IGEEncrypt(plain, key, iv []byte) ([]byte, error) {
	block, err := newIGEBlockCipher(key)
	if err != nil {
		return nil, err
	}
	if len(plain)%aes.BlockSize != 0 {
		return nil, errors.Errorf("crypto: plaintext length %d not a multiple of %d", len(plain), aes.BlockSize)
	}
	dst := make([]byte, len(plain))
	ige.EncryptBlocks(block, iv, dst, plain)
	return dst, nil
}

// IGEDecrypt is the inverse of IGEEncrypt.
func IGEDecrypt(cipherText, key, iv []byte) ([]byte, error) {
	block, err := newIGEBlockCipher(key)
	if err != nil {
		return nil, err
	}
	if len(cipherText)%aes.BlockSize != 0 {
		return nil, errors.Errorf("crypto: ciphertext length %d not a multiple of %d", len(cipherText), aes.BlockSize)
	}
	dst := make([]byte, len(cipherText))
	ige.DecryptBlocks(block, iv, dst, cipherText)
	return dst, nil
}

func newIGEBlockCipher(key []byte) (cipher.Block, error) {
	if len(key) != 32 {
		return nil, errors.Errorf("crypto: AES-IGE key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes.NewCipher")
	}
	return block, nil
}
