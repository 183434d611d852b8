package reedsolomon

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestEncodeKnownBlock(t *testing.T) {
	// Version 1-M "HELLO WORLD".
	data := []byte{32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236, 17, 236, 17}
	want := []byte{196, 35, 39, 119, 235, 215, 231, 226, 93, 23}
	got := NewEncoder(QRField).Encode(data, len(want))
	if !bytes.Equal(got, want) {
		t.Errorf("ec = %v, want %v", got, want)
	}
}

func encodeBlock(dataSize, ecSize int) []byte {
	data := make([]byte, dataSize)
	for i := range data {
		data[i] = byte((i + 1) * 7)
	}
	return append(data, NewEncoder(QRField).Encode(data, ecSize)...)
}

func TestEncodeDecodeNoErrors(t *testing.T) {
	block := encodeBlock(10, 10)
	received := append([]byte(nil), block...)
	n, err := NewDecoder(QRField).Decode(received, 10)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != 0 {
		t.Errorf("corrected = %d, want 0", n)
	}
	if !bytes.Equal(received, block) {
		t.Error("clean block was modified")
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	const dataSize, ecSize = 20, 10
	block := encodeBlock(dataSize, ecSize)
	rng := rand.New(rand.NewSource(1))
	dec := NewDecoder(QRField)
	for errs := 1; errs <= ecSize/2; errs++ {
		for trial := 0; trial < 20; trial++ {
			received := append([]byte(nil), block...)
			for _, pos := range rng.Perm(len(received))[:errs] {
				received[pos] ^= byte(1 + rng.Intn(255))
			}
			n, err := dec.Decode(received, ecSize)
			if err != nil {
				t.Fatalf("%d errors, trial %d: %v", errs, trial, err)
			}
			if n != errs {
				t.Errorf("%d errors: corrected %d", errs, n)
			}
			if !bytes.Equal(received, block) {
				t.Fatalf("%d errors, trial %d: block not restored", errs, trial)
			}
		}
	}
}

func TestDecodeTooManyErrors(t *testing.T) {
	const dataSize, ecSize = 10, 4
	block := encodeBlock(dataSize, ecSize)
	received := append([]byte(nil), block...)
	received[0] ^= 0x55
	received[1] ^= 0x55
	received[2] ^= 0x55

	_, err := NewDecoder(QRField).Decode(received, ecSize)
	if err == nil && bytes.Equal(received, block) {
		t.Error("decoder claimed to restore a block beyond its capacity")
	}
}

func TestFieldBasics(t *testing.T) {
	f := QRField
	if f.Base() != 0 {
		t.Errorf("base = %d, want 0", f.Base())
	}
	for a := 1; a < 256; a++ {
		if got := f.Mul(a, f.Inv(a)); got != 1 {
			t.Errorf("a=%d: a*inv(a) = %d, want 1", a, got)
		}
		if got := f.Exp(f.Log(a)); got != a {
			t.Errorf("exp(log(%d)) = %d", a, got)
		}
	}
	if f.Mul(0, 100) != 0 || f.Mul(100, 0) != 0 {
		t.Error("multiply by 0 should be 0")
	}
	if f.Exp(-1) != f.Inv(2) {
		t.Error("alpha^-1 should be the inverse of alpha")
	}
}
