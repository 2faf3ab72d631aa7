// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"crypto/aes"
	"errors"
)

// BlockCipher encrypts src into dst with a 128-bit key in ECB mode.
// len(src) is the data size; implementations may reject sizes they cannot handle.
type BlockCipher interface {
	EncryptECB(dst, src, key []byte) error
}

// BlockDecipher is implemented by ciphers that can also reverse EncryptECB.
type BlockDecipher interface {
	DecryptECB(dst, src, key []byte) error
}

// AES128ECB is the default BlockCipher, backed by crypto/aes.
type AES128ECB struct{}

// EncryptECB implements BlockCipher
func (AES128ECB) EncryptECB(dst, src, key []byte) error {
	block, err := checkECB(dst, src, key)
	if err != nil {
		return err
	}
	for i := 0; i < len(src); i += aes.BlockSize {
		block.Encrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
	}
	return nil
}

// DecryptECB implements BlockDecipher
func (AES128ECB) DecryptECB(dst, src, key []byte) error {
	block, err := checkECB(dst, src, key)
	if err != nil {
		return err
	}
	for i := 0; i < len(src); i += aes.BlockSize {
		block.Decrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
	}
	return nil
}

type blockTransform interface {
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}

func checkECB(dst, src, key []byte) (blockTransform, error) {
	if len(key) != FormatFAKeyLen {
		return nil, StatusInvalidLength
	}
	if len(src)%aes.BlockSize != 0 || len(dst) < len(src) {
		return nil, StatusInvalidLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, StatusInternal
	}
	return block, nil
}

// Encrypter validates arguments, invokes a BlockCipher and maps its failure
// into a Status.
type Encrypter struct {
	cipher BlockCipher
}

// NewEncrypter creates an Encrypter around c. A nil c uses AES128ECB.
func NewEncrypter(c BlockCipher) *Encrypter {
	if c == nil {
		c = AES128ECB{}
	}
	return &Encrypter{cipher: c}
}

// Encrypt encrypts len(src) bytes of src into dst under key.
// A key that is not 16 bytes long yields StatusInvalidLength without calling
// the cipher. A cipher error that is a Status is returned as is, any other
// error becomes StatusInternal.
func (e *Encrypter) Encrypt(dst, src, key []byte) Status {
	if len(key) != FormatFAKeyLen {
		return StatusInvalidLength
	}
	err := e.cipher.EncryptECB(dst, src, key)
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		if s == StatusSuccess {
			return StatusInternal
		}
		return s
	}
	return StatusInternal
}

// Decrypt reverses Encrypt when the cipher supports it.
func (e *Encrypter) Decrypt(dst, src, key []byte) Status {
	if len(key) != FormatFAKeyLen {
		return StatusInvalidLength
	}
	d, ok := e.cipher.(BlockDecipher)
	if !ok {
		return StatusNotImplemented
	}
	err := d.DecryptECB(dst, src, key)
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) && s != StatusSuccess {
		return s
	}
	return StatusInternal
}
