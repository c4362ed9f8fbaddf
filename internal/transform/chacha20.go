// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package transform

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// chachaModule encrypts file contents with ChaCha20-Poly1305. The required
// "key" option is a hex-encoded 32-byte key. A fresh random nonce is drawn
// per invocation and prefixed to the ciphertext so RestoreData can invert
// the transform without any persisted state.
type chachaModule struct{}

func (chachaModule) ID() string { return "chacha20poly1305" }

func (chachaModule) TransformData(ctx *Context) ([]byte, error) {
	aead, err := newAEAD(ctx.Options)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, ctx.Data, nil), nil
}

func (chachaModule) RestoreData(ctx *Context) ([]byte, error) {
	aead, err := newAEAD(ctx.Options)
	if err != nil {
		return nil, err
	}
	if len(ctx.Data) < aead.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := ctx.Data[:aead.NonceSize()], ctx.Data[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}

func newAEAD(options map[string]any) (cipher.AEAD, error) {
	v, ok := options["key"]
	if !ok {
		return nil, errors.New(`missing required "key" option`)
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf(`"key" option must be a hex string, got %T`, v)
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return chacha20poly1305.New(key)
}

func init() {
	if err := Register(chachaModule{}); err != nil {
		panic(err)
	}
}
