package volume

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteDeviceReadWriteRoundTrip(t *testing.T) {
	buf := make([]byte, 4*512)
	dev, err := NewByteDevice(buf, 512)
	require.NoError(t, err)

	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = byte(i)
	}
	n, err := dev.WriteBlocks(payload, 2)
	require.NoError(t, err)
	require.Equal(t, 512, n)

	got := make([]byte, 512)
	n, err = dev.ReadBlocks(got, 2)
	require.NoError(t, err)
	require.Equal(t, 512, n)
	require.Equal(t, payload, got)

	// Untouched sectors stay zero.
	other := make([]byte, 512)
	_, err = dev.ReadBlocks(other, 0)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 512), other)
}

func TestByteDeviceRejectsMisalignedBuffer(t *testing.T) {
	_, err := NewByteDevice(make([]byte, 100), 512)
	require.Error(t, err)
}

func TestByteDeviceReadPastEndFails(t *testing.T) {
	dev, err := NewByteDevice(make([]byte, 512), 512)
	require.NoError(t, err)
	_, err = dev.ReadBlocks(make([]byte, 512), 1)
	require.Error(t, err)
}

func TestByteDeviceEraseBlocks(t *testing.T) {
	buf := make([]byte, 2*512)
	for i := range buf {
		buf[i] = 0xFF
	}
	dev, err := NewByteDevice(buf, 512)
	require.NoError(t, err)

	require.NoError(t, dev.EraseBlocks(1, 1))
	got := make([]byte, 512)
	_, err = dev.ReadBlocks(got, 1)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 512), got)

	got0 := make([]byte, 512)
	_, err = dev.ReadBlocks(got0, 0)
	require.NoError(t, err)
	for _, b := range got0 {
		require.Equal(t, byte(0xFF), b)
	}
}

func TestFileDeviceReadWriteRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "volume-*.img")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(4*512))

	dev := NewFileDevice(f, 512)
	payload := []byte("hello, fat volume")
	padded := make([]byte, 512)
	copy(padded, payload)

	_, err = dev.WriteBlocks(padded, 3)
	require.NoError(t, err)

	got := make([]byte, 512)
	_, err = dev.ReadBlocks(got, 3)
	require.NoError(t, err)
	require.Equal(t, padded, got)
}
