// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package transform

import (
	"bytes"
	"errors"
	"testing"
)

// oneWay implements only the forward direction.
type oneWay struct{}

func (oneWay) ID() string { return "test-one-way" }
func (oneWay) TransformData(ctx *Context) ([]byte, error) {
	return append([]byte("x"), ctx.Data...), nil
}

// failing always errors in both directions.
type failing struct{}

func (failing) ID() string { return "test-failing" }
func (failing) TransformData(ctx *Context) ([]byte, error) {
	return nil, errors.New("boom")
}
func (failing) RestoreData(ctx *Context) ([]byte, error) {
	return nil, errors.New("boom")
}

func init() {
	if err := Register(oneWay{}); err != nil {
		panic(err)
	}
	if err := Register(failing{}); err != nil {
		panic(err)
	}
}

func TestApplyIdentityWithoutModule(t *testing.T) {
	in := []byte("unchanged")
	out, err := Apply(in, ModeTransform, "", nil)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("identity pipeline changed data: %q", out)
	}
}

func TestApplyUnknownModule(t *testing.T) {
	_, err := Apply([]byte("data"), ModeTransform, "no-such-module", nil)
	var tErr *TransformError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransformError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrUnknownModule) {
		t.Errorf("expected ErrUnknownModule, got %v", err)
	}
}

func TestApplyMissingDirection(t *testing.T) {
	// The forward direction works.
	out, err := Apply([]byte("abc"), ModeTransform, "test-one-way", nil)
	if err != nil {
		t.Fatalf("forward direction failed: %v", err)
	}
	if string(out) != "xabc" {
		t.Errorf("unexpected forward output: %q", out)
	}

	// The missing inverse is a hard error, not a no-op.
	_, err = Apply(out, ModeRestore, "test-one-way", nil)
	if !errors.Is(err, ErrDirectionMissing) {
		t.Errorf("expected ErrDirectionMissing, got %v", err)
	}
}

func TestApplyWrapsModuleError(t *testing.T) {
	_, err := Apply([]byte("data"), ModeTransform, "test-failing", nil)
	var tErr *TransformError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransformError, got %T: %v", err, err)
	}
	if tErr.Module != "test-failing" || tErr.Err == nil {
		t.Errorf("cause not preserved: %+v", tErr)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("hello"),
		bytes.Repeat([]byte("deploymaster "), 1024),
	}
	for _, in := range payloads {
		enc, err := Apply(in, ModeTransform, "gzip", map[string]any{"level": 6})
		if err != nil {
			t.Fatalf("gzip transform failed: %v", err)
		}
		dec, err := Apply(enc, ModeRestore, "gzip", map[string]any{"level": 6})
		if err != nil {
			t.Fatalf("gzip restore failed: %v", err)
		}
		if !bytes.Equal(dec, in) {
			t.Errorf("gzip round trip mismatch for %d bytes", len(in))
		}
	}
}

func TestChaChaRoundTrip(t *testing.T) {
	opts := map[string]any{
		"key": "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
	}
	in := []byte("secret payload")

	enc, err := Apply(in, ModeTransform, "chacha20poly1305", opts)
	if err != nil {
		t.Fatalf("chacha transform failed: %v", err)
	}
	if bytes.Contains(enc, in) {
		t.Error("ciphertext contains plaintext")
	}
	dec, err := Apply(enc, ModeRestore, "chacha20poly1305", opts)
	if err != nil {
		t.Fatalf("chacha restore failed: %v", err)
	}
	if !bytes.Equal(dec, in) {
		t.Errorf("chacha round trip mismatch: got %q", dec)
	}
}

func TestChaChaRequiresKey(t *testing.T) {
	_, err := Apply([]byte("data"), ModeTransform, "chacha20poly1305", nil)
	var tErr *TransformError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransformError for missing key, got %v", err)
	}
}
